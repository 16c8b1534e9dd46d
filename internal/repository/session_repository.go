package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository 定义了会话编码历史的操作接口。
// 编码历史是到目前为止所有轮次的 token ID 序列，关键词应答轮次不写入。
type SessionRepository interface {
	GetHistory(ctx context.Context, sessionID string) ([]int64, error)
	SetHistory(ctx context.Context, sessionID string, ids []int64) error
	// ClearHistory 无条件丢弃历史；对不存在的会话调用等价于无操作。
	ClearHistory(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewSessionRepository 创建一个基于 Redis 的 SessionRepository 实例。
// 历史在 ttl 内未被更新时由 Redis 自动过期，充当会话淘汰策略。
func NewSessionRepository(redisClient *redis.Client, ttl time.Duration) SessionRepository {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisSessionRepository{redisClient: redisClient, ttl: ttl}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("session:%s:history", sessionID)
}

// GetHistory 从 Redis 获取编码历史，不存在时返回空序列。
func (r *redisSessionRepository) GetHistory(ctx context.Context, sessionID string) ([]int64, error) {
	jsonData, err := r.redisClient.Get(ctx, historyKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil // 全新会话
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session history: %w", err)
	}
	var ids []int64
	if err := json.Unmarshal([]byte(jsonData), &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session history: %w", err)
	}
	return ids, nil
}

// SetHistory 覆盖写入编码历史并刷新 TTL。
func (r *redisSessionRepository) SetHistory(ctx context.Context, sessionID string, ids []int64) error {
	jsonData, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal session history: %w", err)
	}
	if err := r.redisClient.Set(ctx, historyKey(sessionID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session history: %w", err)
	}
	return nil
}

// ClearHistory 删除编码历史，重置后的会话与全新会话不可区分。
func (r *redisSessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session history: %w", err)
	}
	return nil
}

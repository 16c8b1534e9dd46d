package repository

import (
	"context"
	"sync"
)

// memorySessionRepository 是 SessionRepository 的进程内实现，
// 用于无 Redis 的测试与本地调试场景。
type memorySessionRepository struct {
	mu        sync.RWMutex
	histories map[string][]int64
}

// NewMemorySessionRepository 创建一个进程内的 SessionRepository 实例。
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		histories: make(map[string][]int64),
	}
}

func (r *memorySessionRepository) GetHistory(_ context.Context, sessionID string) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hist, ok := r.histories[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]int64, len(hist))
	copy(out, hist)
	return out, nil
}

func (r *memorySessionRepository) SetHistory(_ context.Context, sessionID string, ids []int64) error {
	stored := make([]int64, len(ids))
	copy(stored, ids)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[sessionID] = stored
	return nil
}

func (r *memorySessionRepository) ClearHistory(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.histories, sessionID)
	return nil
}

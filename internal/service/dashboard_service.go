package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"soul-lifter-go/internal/config"
	"soul-lifter-go/internal/model"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/pkg/es"
	"soul-lifter-go/pkg/log"
	"soul-lifter-go/pkg/storage"
)

// DashboardService 定义了仪表盘数据与日志导出的接口。
type DashboardService interface {
	// EmotionCounts 返回会话按情绪标签的轮次统计（按数量降序）。
	EmotionCounts(ctx context.Context, sessionID string) ([]model.EmotionCountDTO, error)
	// ExportChatLog 将会话日志序列化为 {role, content} 数组写入对象存储，
	// 覆盖同名对象，返回对象名与带时效的下载链接。
	ExportChatLog(ctx context.Context, sessionID string) (objectName, url string, err error)
	// ArchivedTurns 分页返回 MySQL 中的归档轮次。
	ArchivedTurns(sessionID string, page, size int) ([]model.ArchivedTurn, int64, error)
}

type dashboardService struct {
	chatService ChatService
	turnRepo    repository.TurnRepository
	esCfg       config.ElasticsearchConfig
	minioCfg    config.MinIOConfig
	dataCfg     config.DataConfig
}

// NewDashboardService 创建一个新的 DashboardService 实例。
func NewDashboardService(
	chatService ChatService,
	turnRepo repository.TurnRepository,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	dataCfg config.DataConfig,
) DashboardService {
	return &dashboardService{
		chatService: chatService,
		turnRepo:    turnRepo,
		esCfg:       esCfg,
		minioCfg:    minioCfg,
		dataCfg:     dataCfg,
	}
}

// EmotionCounts 通过 Elasticsearch terms 聚合统计情绪分布。
func (s *dashboardService) EmotionCounts(ctx context.Context, sessionID string) ([]model.EmotionCountDTO, error) {
	counts, err := es.AggregateEmotions(ctx, s.esCfg.IndexName, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate emotions: %w", err)
	}

	result := make([]model.EmotionCountDTO, 0, len(counts))
	for emotion, count := range counts {
		result = append(result, model.EmotionCountDTO{Emotion: emotion, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Emotion < result[j].Emotion
	})
	return result, nil
}

// ExportChatLog 导出会话日志到 MinIO。
// 导出内容与仪表盘客户端的本地导出保持同一数据契约：[{role, content}]。
func (s *dashboardService) ExportChatLog(ctx context.Context, sessionID string) (string, string, error) {
	messages := TurnsToMessages(s.chatService.Log(sessionID))

	data, err := json.MarshalIndent(messages, "", "    ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal chat log: %w", err)
	}

	objectName := s.dataCfg.ExportObject
	if sessionID != DefaultSessionID {
		objectName = fmt.Sprintf("%s/%s", sessionID, s.dataCfg.ExportObject)
	}

	if err := storage.PutJSONObject(ctx, s.minioCfg.BucketName, objectName, data); err != nil {
		return "", "", fmt.Errorf("failed to upload chat log: %w", err)
	}
	log.Infof("会话日志已导出: session=%s, object=%s, messages=%d", sessionID, objectName, len(messages))

	url, err := storage.GetPresignedURL(s.minioCfg.BucketName, objectName, 24*time.Hour)
	if err != nil {
		// 对象已写入成功，拿不到链接时只返回对象名
		log.Warnf("生成导出下载链接失败: %v", err)
		return objectName, "", nil
	}
	return objectName, url, nil
}

func (s *dashboardService) ArchivedTurns(sessionID string, page, size int) ([]model.ArchivedTurn, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	total, err := s.turnRepo.CountBySessionID(sessionID)
	if err != nil {
		return nil, 0, err
	}
	turns, err := s.turnRepo.FindBySessionID(sessionID, (page-1)*size, size)
	if err != nil {
		return nil, 0, err
	}
	return turns, total, nil
}

// TurnsToMessages 将轮次日志展开为 {role, content} 消息序列，
// 每轮展开为一条 user 消息和一条 assistant 消息，顺序保持不变。
func TurnsToMessages(turns []model.ChatTurn) []model.ChatMessage {
	messages := make([]model.ChatMessage, 0, len(turns)*2)
	for _, t := range turns {
		messages = append(messages, model.ChatMessage{Role: "user", Content: t.UserInput})
		messages = append(messages, model.ChatMessage{Role: "assistant", Content: t.Response})
	}
	return messages
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soul-lifter-go/internal/model"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/pkg/emotion"
	"soul-lifter-go/pkg/log"
	"soul-lifter-go/pkg/tasks"

	"github.com/google/uuid"
)

// ResetConfirmation 是 /reset 接口返回的确认文案。
const ResetConfirmation = "Conversation reset."

// TurnPublisher 将归档任务发往消息队列，发布失败不影响本轮应答。
type TurnPublisher func(task tasks.TurnArchiveTask) error

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Chat 处理一轮对话：关键词优先，未命中走生成模型；
	// 情绪分类对每条输入独立执行；轮次记入会话日志。
	Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error)
	// Reset 重置会话编码历史并清空会话日志。
	Reset(ctx context.Context, sessionID string) error
	// Log 按插入顺序返回会话日志的全部轮次。
	Log(sessionID string) []model.ChatTurn
}

type chatService struct {
	keywordRepo    repository.KeywordRepository
	chatLogRepo    repository.ChatLogRepository
	sessionService SessionService
	emotionClient  emotion.Client
	publishTask    TurnPublisher
}

// NewChatService 创建一个新的 ChatService 实例。
// publishTask 可以为 nil，此时跳过归档发布（测试场景）。
func NewChatService(
	keywordRepo repository.KeywordRepository,
	chatLogRepo repository.ChatLogRepository,
	sessionService SessionService,
	emotionClient emotion.Client,
	publishTask TurnPublisher,
) ChatService {
	return &chatService{
		keywordRepo:    keywordRepo,
		chatLogRepo:    chatLogRepo,
		sessionService: sessionService,
		emotionClient:  emotionClient,
		publishTask:    publishTask,
	}
}

// Chat 协调一轮完整的问答。
func (s *chatService) Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	// 1. 关键词应答优先：命中时完全绕过生成模型，编码历史保持不变
	var reply string
	entry, keywordHit := s.keywordRepo.Lookup(message)
	if keywordHit {
		reply = fmt.Sprintf("%s\n\n📞 Helpline: %s", entry.Response, entry.Helpline)
	} else {
		var err error
		reply, err = s.sessionService.AppendAndGenerate(ctx, sessionID, message)
		if err != nil {
			return nil, err
		}
	}

	// 2. 情绪分类独立于应答路径，对关键词轮次同样执行
	label, score, err := s.emotionClient.Classify(ctx, message)
	if err != nil {
		return nil, &DelegateError{Delegate: "emotion", Err: err}
	}

	// 3. 记入会话日志
	turn := model.ChatTurn{
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
		UserInput: message,
		Response:  reply,
		Emotion:   label,
		Score:     score,
	}
	s.chatLogRepo.Record(sessionID, turn)

	// 4. 发布归档任务；失败只记录，不影响已完成的应答
	if s.publishTask != nil {
		task := tasks.TurnArchiveTask{
			TurnID:     uuid.NewString(),
			SessionID:  sessionID,
			Timestamp:  turn.Timestamp,
			UserInput:  turn.UserInput,
			Response:   turn.Response,
			Emotion:    turn.Emotion,
			Score:      turn.Score,
			KeywordHit: keywordHit,
		}
		if err := s.publishTask(task); err != nil {
			log.Errorf("发布归档任务失败: session=%s, err=%v", sessionID, err)
		}
	}

	return &model.ChatResponse{
		Response: reply,
		Emotion:  label,
		Score:    score,
	}, nil
}

// Reset 重置编码历史并清空会话日志，重复调用与调用一次效果相同。
func (s *chatService) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessionService.Reset(ctx, sessionID); err != nil {
		return err
	}
	s.chatLogRepo.Clear(sessionID)
	log.Infof("会话已重置: %s", sessionID)
	return nil
}

func (s *chatService) Log(sessionID string) []model.ChatTurn {
	return s.chatLogRepo.List(sessionID)
}

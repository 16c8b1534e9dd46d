package service

import (
	"context"

	"soul-lifter-go/internal/config"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/pkg/generate"
	"soul-lifter-go/pkg/log"
	"soul-lifter-go/pkg/token"

	"github.com/google/uuid"
)

// DefaultSessionID 是未携带会话标识的调用方共享的会话。
// 保留它是为了兼容单会话用法：所有匿名调用方共享同一段上下文。
const DefaultSessionID = "default"

// 为生成的回复在 max_length 内预留的 token 数。
// 输入历史超出预算时从头部截断，只保留最近的上下文。
const replyReserveTokens = 128

// SessionService 定义了会话生命周期与生成式对话的接口。
type SessionService interface {
	// NewSession 创建一个新会话并签发对应的会话令牌。
	NewSession(ctx context.Context) (sessionID, tokenString string, err error)
	// AppendAndGenerate 将输入续接到会话编码历史后调用生成模型，
	// 返回解码后的新增文本。失败以 DelegateError 向上传播。
	AppendAndGenerate(ctx context.Context, sessionID, utterance string) (string, error)
	// Reset 无条件丢弃会话的编码历史，之后的调用等同于新对话的第一轮。
	Reset(ctx context.Context, sessionID string) error
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	genClient    generate.Client
	tokenManager *token.SessionTokenManager
	genCfg       config.GenerationConfig
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(
	sessionRepo repository.SessionRepository,
	genClient generate.Client,
	tokenManager *token.SessionTokenManager,
	genCfg config.GenerationConfig,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		genClient:    genClient,
		tokenManager: tokenManager,
		genCfg:       genCfg,
	}
}

// NewSession 生成新的会话 ID 并签发会话令牌。
func (s *sessionService) NewSession(_ context.Context) (string, string, error) {
	sessionID := uuid.NewString()
	tokenString, err := s.tokenManager.GenerateToken(sessionID)
	if err != nil {
		return "", "", err
	}
	log.Infof("新会话已创建: %s", sessionID)
	return sessionID, tokenString, nil
}

// AppendAndGenerate 实现生成式对话的一轮：
// 编码新输入并附加 EOS，续接既有历史，按最大长度截断后交给生成模型，
// 只解码输入长度之后的新增 token，并把模型的完整输出序列存为新历史。
func (s *sessionService) AppendAndGenerate(ctx context.Context, sessionID, utterance string) (string, error) {
	newIDs, err := s.genClient.Encode(ctx, utterance)
	if err != nil {
		return "", &DelegateError{Delegate: "generation", Err: err}
	}
	newIDs = append(newIDs, s.genCfg.EOSTokenID)

	history, err := s.sessionRepo.GetHistory(ctx, sessionID)
	if err != nil {
		return "", err
	}

	inputIDs := make([]int64, 0, len(history)+len(newIDs))
	inputIDs = append(inputIDs, history...)
	inputIDs = append(inputIDs, newIDs...)

	// 历史 + 新输入不得挤占回复空间，超出预算时丢弃最早的上下文
	if budget := s.genCfg.MaxLength - replyReserveTokens; budget > 0 && len(inputIDs) > budget {
		inputIDs = inputIDs[len(inputIDs)-budget:]
	}

	outputIDs, err := s.genClient.Generate(ctx, inputIDs)
	if err != nil {
		return "", &DelegateError{Delegate: "generation", Err: err}
	}

	reply, err := s.genClient.Decode(ctx, outputIDs[len(inputIDs):])
	if err != nil {
		return "", &DelegateError{Delegate: "generation", Err: err}
	}

	if err := s.sessionRepo.SetHistory(ctx, sessionID, outputIDs); err != nil {
		// 回复已经生成，历史写入失败只能记录，下一轮将缺失这段上下文
		log.Errorf("保存会话编码历史失败: session=%s, err=%v", sessionID, err)
	}

	return reply, nil
}

// Reset 丢弃编码历史，重复调用与调用一次效果相同。
func (s *sessionService) Reset(ctx context.Context, sessionID string) error {
	return s.sessionRepo.ClearHistory(ctx, sessionID)
}

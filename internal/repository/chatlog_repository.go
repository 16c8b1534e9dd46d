package repository

import (
	"sync"

	"soul-lifter-go/internal/model"
)

// ChatLogRepository 定义了会话日志的操作接口。
// 日志按会话隔离、只追加，除整体枚举外不提供任何查询能力。
type ChatLogRepository interface {
	Record(sessionID string, turn model.ChatTurn)
	// List 按插入顺序返回该会话的全部轮次。
	List(sessionID string) []model.ChatTurn
	// Clear 清空该会话的日志；重复调用等价于一次。
	Clear(sessionID string)
}

type memoryChatLogRepository struct {
	mu    sync.RWMutex
	turns map[string][]model.ChatTurn
}

// NewChatLogRepository 创建一个进程内的 ChatLogRepository 实例。
func NewChatLogRepository() ChatLogRepository {
	return &memoryChatLogRepository{
		turns: make(map[string][]model.ChatTurn),
	}
}

func (r *memoryChatLogRepository) Record(sessionID string, turn model.ChatTurn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[sessionID] = append(r.turns[sessionID], turn)
}

func (r *memoryChatLogRepository) List(sessionID string) []model.ChatTurn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.turns[sessionID]
	out := make([]model.ChatTurn, len(stored))
	copy(out, stored)
	return out
}

func (r *memoryChatLogRepository) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.turns, sessionID)
}

package handler

import (
	"net/http"

	"soul-lifter-go/internal/service"
	"soul-lifter-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 处理会话生命周期相关的 API 请求。
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler。
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create 分配一个新的会话，并返回会话 ID 与对应的会话令牌。
// 客户端后续请求携带 "Authorization: Bearer <token>" 即可路由到该会话。
func (h *SessionHandler) Create(c *gin.Context) {
	sessionID, tokenString, err := h.sessionService.NewSession(c.Request.Context())
	if err != nil {
		log.Errorf("创建会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "创建会话失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"session_id": sessionID,
			"token":      tokenString,
		},
	})
}

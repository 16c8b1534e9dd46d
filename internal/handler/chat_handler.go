// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"soul-lifter-go/internal/middleware"
	"soul-lifter-go/internal/model"
	"soul-lifter-go/internal/service"
	"soul-lifter-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 处理对话相关的 API 请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 处理一轮对话请求。
// 空消息返回 400；下游推理服务超时返回 504，其余推理失败返回 502。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求参数",
			"data":    nil,
		})
		return
	}

	sessionID := middleware.SessionID(c)
	resp, err := h.chatService.Chat(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    resp,
	})
}

// Reset 清空当前会话的历史与日志。
func (h *ChatHandler) Reset(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.chatService.Reset(c.Request.Context(), sessionID); err != nil {
		log.Errorf("重置会话失败: session=%s, err=%v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "重置会话失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"message": service.ResetConfirmation},
	})
}

// Log 返回当前会话的轮次日志。
func (h *ChatHandler) Log(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    h.chatService.Log(sessionID),
	})
}

// Handle 处理一个传入的 WebSocket 连接，每个文本帧视为一条用户消息，
// 回复以 JSON 帧返回；单条消息出错时回发 {"error": ...} 帧，连接保持打开。
func (h *ChatHandler) Handle(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，会话: %s", sessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		resp, err := h.chatService.Chat(c.Request.Context(), sessionID, strings.TrimSpace(string(message)))
		if err != nil {
			log.Errorf("处理 WebSocket 消息失败: %v", err)
			b, _ := json.Marshal(map[string]string{"error": chatErrorMessage(err)})
			if werr := conn.WriteMessage(websocket.TextMessage, b); werr != nil {
				break
			}
			continue
		}

		b, _ := json.Marshal(resp)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Warnf("向 WebSocket 写入消息失败: %v", err)
			break
		}
	}
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "消息不能为空",
			"data":    nil,
		})
		return
	}

	var delegateErr *service.DelegateError
	if errors.As(err, &delegateErr) {
		status := http.StatusBadGateway
		if delegateErr.IsTimeout() {
			status = http.StatusGatewayTimeout
		}
		log.Errorf("下游推理服务调用失败: %v", err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": chatErrorMessage(err),
			"data":    nil,
		})
		return
	}

	log.Errorf("处理对话请求失败: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    http.StatusInternalServerError,
		"message": "服务器内部错误",
		"data":    nil,
	})
}

func chatErrorMessage(err error) string {
	if errors.Is(err, service.ErrEmptyMessage) {
		return "消息不能为空"
	}
	var delegateErr *service.DelegateError
	if errors.As(err, &delegateErr) {
		if delegateErr.IsTimeout() {
			return "AI 服务响应超时，请稍后重试"
		}
		return "AI 服务暂时不可用，请稍后重试"
	}
	return "服务器内部错误"
}

package handler

import (
	"net/http"
	"strconv"

	"soul-lifter-go/internal/middleware"
	"soul-lifter-go/internal/service"
	"soul-lifter-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 处理仪表盘数据与日志导出相关的 API 请求。
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler 创建一个新的 DashboardHandler。
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Emotions 返回当前会话按情绪标签的轮次统计。
func (h *DashboardHandler) Emotions(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	counts, err := h.dashboardService.EmotionCounts(c.Request.Context(), sessionID)
	if err != nil {
		log.Errorf("查询情绪统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "查询情绪统计失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    counts,
	})
}

// Export 将当前会话的日志导出到对象存储，返回对象名与下载链接。
func (h *DashboardHandler) Export(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	objectName, url, err := h.dashboardService.ExportChatLog(c.Request.Context(), sessionID)
	if err != nil {
		log.Errorf("导出会话日志失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "导出会话日志失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"object": objectName,
			"url":    url,
		},
	})
}

// Turns 分页返回当前会话在数据库中的归档轮次。
func (h *DashboardHandler) Turns(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	turns, total, err := h.dashboardService.ArchivedTurns(sessionID, page, size)
	if err != nil {
		log.Errorf("查询归档轮次失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "查询归档轮次失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"total": total,
			"list":  turns,
		},
	})
}

package handler

import (
	"errors"
	"net/http"

	"filesearch-go/internal/middleware"
	"filesearch-go/internal/model"
	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QueryHandler 负责处理问答、聊天历史与统计相关的 API 请求。
type QueryHandler struct {
	queryService service.QueryService
	statsService service.StatsService
}

// NewQueryHandler 创建一个新的 QueryHandler 实例。
func NewQueryHandler(queryService service.QueryService, statsService service.StatsService) *QueryHandler {
	return &QueryHandler{queryService: queryService, statsService: statsService}
}

// AskRequest 定义了问答 API 的请求体结构。
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask 处理一次同步问答请求。
func (h *QueryHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载"})
		return
	}

	sessionID := middleware.SessionIDFromContext(c)
	result, err := h.queryService.AskQuestion(c.Request.Context(), sessionID, req.Question)
	if err != nil {
		log.Errorf("Ask: 问答失败: session=%s, err=%v", sessionID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrEmptyResponse) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": "问答失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}

// GetHistory 返回会话的聊天历史，按时间先后排列。
func (h *QueryHandler) GetHistory(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	history, err := h.queryService.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("GetHistory: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取聊天历史失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"total":   len(history),
			"history": history,
		},
	})
}

// ClearHistory 清空会话的聊天历史。
func (h *QueryHandler) ClearHistory(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	if err := h.queryService.ClearHistory(c.Request.Context(), sessionID); err != nil {
		log.Error("ClearHistory: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "清空聊天历史失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "聊天历史已清空",
	})
}

// GetStats 返回会话级的汇总统计。
func (h *QueryHandler) GetStats(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	stats, err := h.statsService.GetStats(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("GetStats: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计信息失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    stats,
	})
}

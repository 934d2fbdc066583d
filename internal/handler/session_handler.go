// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责处理匿名会话的签发。
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSession 签发一个新的匿名会话及其 JWT。
func (h *SessionHandler) CreateSession(c *gin.Context) {
	dto, err := h.sessionService.CreateSession()
	if err != nil {
		log.Error("CreateSession: failed to issue session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "会话创建成功",
		"data":    dto,
	})
}

package handler

import (
	"errors"
	"net/http"

	"filesearch-go/internal/middleware"
	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StoreHandler 负责处理文档库（store）相关的 API 请求。
type StoreHandler struct {
	storeService service.StoreService
}

// NewStoreHandler 创建一个新的 StoreHandler 实例。
func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// CreateStoreRequest 定义了创建 store API 的请求体结构。
type CreateStoreRequest struct {
	DisplayName string `json:"display_name"`
}

// CreateStore 处理创建并激活新 store 的请求。
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	// display_name 可省略，服务层会给出默认值
	_ = c.ShouldBindJSON(&req)

	sessionID := middleware.SessionIDFromContext(c)
	store, err := h.storeService.CreateStore(c.Request.Context(), sessionID, req.DisplayName)
	if err != nil {
		log.Error("CreateStore: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建 store 失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "store 创建成功",
		"data":    store,
	})
}

// GetActiveStore 返回会话当前激活的 store。
func (h *StoreHandler) GetActiveStore(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	store, err := h.storeService.GetActiveStore(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "当前会话没有激活的 store",
			})
			return
		}
		log.Error("GetActiveStore: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    store,
	})
}

// ResetStore 清空会话状态并创建新的激活 store。
func (h *StoreHandler) ResetStore(c *gin.Context) {
	var req CreateStoreRequest
	_ = c.ShouldBindJSON(&req)

	sessionID := middleware.SessionIDFromContext(c)
	store, err := h.storeService.ResetStore(c.Request.Context(), sessionID, req.DisplayName)
	if err != nil {
		log.Error("ResetStore: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重置失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "重置成功，已创建新 store",
		"data":    store,
	})
}

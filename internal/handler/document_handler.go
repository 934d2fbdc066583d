package handler

import (
	"net/http"

	"filesearch-go/internal/middleware"
	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 负责处理已上传文档的查询请求。
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// ListDocuments 按上传顺序返回当前激活 store 的文档元数据列表。
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	docs, err := h.documentService.ListDocuments(sessionID)
	if err != nil {
		log.Error("ListDocuments: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文档列表失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"total":     len(docs),
			"documents": docs,
		},
	})
}

// DownloadDocument 为归档文件生成限时下载链接。
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	fileName := c.Query("file_name")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 file_name 参数"})
		return
	}

	sessionID := middleware.SessionIDFromContext(c)
	info, err := h.documentService.GenerateDownloadURL(sessionID, fileName)
	if err != nil {
		log.Error("DownloadDocument: failed", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "生成下载链接失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    info,
	})
}

package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"filesearch-go/internal/middleware"
	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UploadHandler 负责处理所有与文件上传相关的 API 请求。
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload 处理批量文件上传的请求。表单字段 "files" 可携带多个文件，
// 逐个处理，单个文件失败不影响其余文件。
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 multipart 表单"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未携带任何文件"})
		return
	}

	sessionID := middleware.SessionIDFromContext(c)

	type fileResult struct {
		FileName string      `json:"file_name"`
		Success  bool        `json:"success"`
		Error    string      `json:"error,omitempty"`
		Metadata interface{} `json:"metadata,omitempty"`
	}

	results := make([]fileResult, 0, len(files))
	successCount := 0
	for _, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			results = append(results, fileResult{FileName: fh.Filename, Error: "读取文件失败: " + err.Error()})
			continue
		}

		meta, err := h.uploadService.RecordUpload(c.Request.Context(), sessionID, fh.Filename, data)
		if err != nil {
			log.Errorf("Upload: 文件 %s 上传失败: %v", fh.Filename, err)
			results = append(results, fileResult{FileName: fh.Filename, Error: err.Error()})
			continue
		}
		successCount++
		results = append(results, fileResult{FileName: fh.Filename, Success: true, Metadata: meta})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "上传处理完成",
		"data": gin.H{
			"success_count": successCount,
			"failure_count": len(files) - successCount,
			"results":       results,
		},
	})
}

// GetSupportedFileTypes 处理获取支持文件类型列表的请求。
func (h *UploadHandler) GetSupportedFileTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "获取支持的文件类型成功",
		"data":    h.uploadService.GetSupportedFileTypes(),
	})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

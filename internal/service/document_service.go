package service

import (
	"fmt"
	"time"

	"filesearch-go/internal/config"
	"filesearch-go/internal/model"
	"filesearch-go/internal/repository"
	"filesearch-go/pkg/storage"
)

// DownloadInfoDTO 是返回给前端的下载信息。
type DownloadInfoDTO struct {
	FileName    string  `json:"file_name"`
	DownloadURL string  `json:"download_url"`
	SizeMB      float64 `json:"size_mb"`
}

// DocumentService 接口定义了已上传文档的查询操作。
type DocumentService interface {
	// ListDocuments 按上传顺序返回会话激活 store 的全部文档元数据。
	ListDocuments(sessionID string) ([]model.DocumentMetadata, error)
	// GenerateDownloadURL 为归档的原始文件生成限时下载链接。
	GenerateDownloadURL(sessionID, fileName string) (*DownloadInfoDTO, error)
}

type documentService struct {
	storeRepo repository.StoreRepository
	docRepo   repository.DocumentRepository
	minioCfg  config.MinIOConfig
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(storeRepo repository.StoreRepository, docRepo repository.DocumentRepository, minioCfg config.MinIOConfig) DocumentService {
	return &documentService{
		storeRepo: storeRepo,
		docRepo:   docRepo,
		minioCfg:  minioCfg,
	}
}

func (s *documentService) ListDocuments(sessionID string) ([]model.DocumentMetadata, error) {
	store, err := s.storeRepo.FindActiveBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("no active store for session: %w", err)
	}
	return s.docRepo.FindByStoreID(store.ID)
}

func (s *documentService) GenerateDownloadURL(sessionID, fileName string) (*DownloadInfoDTO, error) {
	store, err := s.storeRepo.FindActiveBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("no active store for session: %w", err)
	}

	doc, err := s.docRepo.FindByStoreAndName(store.ID, fileName)
	if err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}

	objectName := fmt.Sprintf("documents/%d/%s", store.ID, doc.Name)
	url, err := storage.GetPresignedURL(s.minioCfg.BucketName, objectName, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("generate presigned url: %w", err)
	}

	return &DownloadInfoDTO{
		FileName:    doc.Name,
		DownloadURL: url,
		SizeMB:      doc.SizeMB,
	}, nil
}

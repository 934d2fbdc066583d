// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"filesearch-go/internal/config"
	"filesearch-go/internal/model"
	"filesearch-go/internal/repository"
	"filesearch-go/pkg/filesearch"
	"filesearch-go/pkg/log"
	"filesearch-go/pkg/storage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UploadService 接口定义了文件上传相关的业务操作。
type UploadService interface {
	// RecordUpload 上传一个文件到会话激活的 store 并返回其元数据记录。
	// 失败时返回 *model.UploadError，不产生部分元数据。
	RecordUpload(ctx context.Context, sessionID, fileName string, data []byte) (*model.DocumentMetadata, error)
	GetSupportedFileTypes() map[string]interface{}
}

type uploadService struct {
	fsClient  filesearch.Client
	storeRepo repository.StoreRepository
	docRepo   repository.DocumentRepository
	minioCfg  config.MinIOConfig
	uploadCfg config.UploadConfig
	chunking  config.ChunkingConfig
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(
	fsClient filesearch.Client,
	storeRepo repository.StoreRepository,
	docRepo repository.DocumentRepository,
	minioCfg config.MinIOConfig,
	uploadCfg config.UploadConfig,
	chunking config.ChunkingConfig,
) UploadService {
	return &uploadService{
		fsClient:  fsClient,
		storeRepo: storeRepo,
		docRepo:   docRepo,
		minioCfg:  minioCfg,
		uploadCfg: uploadCfg,
		chunking:  chunking,
	}
}

// RecordUpload 完成一次文件上传的全流程：
// 计算描述性元数据 -> 写临时文件 -> 调用远端上传接口 -> 轮询操作完成 ->
// 归档原始文件 -> 持久化元数据。临时文件在任何退出路径上都会被删除。
func (s *uploadService) RecordUpload(ctx context.Context, sessionID, fileName string, data []byte) (*model.DocumentMetadata, error) {
	log.Infof("[RecordUpload] 开始上传文件: %s (%d 字节), 会话: %s", fileName, len(data), sessionID)

	ext := strings.ToLower(filepath.Ext(fileName))
	if !containsExt(s.uploadCfg.AcceptedExtensions, ext) {
		return nil, &model.UploadError{Filename: fileName, Err: fmt.Errorf("unsupported file type %q", ext)}
	}

	store, err := s.storeRepo.FindActiveBySession(sessionID)
	if err != nil {
		return nil, &model.UploadError{Filename: fileName, Err: fmt.Errorf("no active store for session: %w", err)}
	}

	meta := BuildDocumentMetadata(fileName, data, s.uploadCfg.TextExtensions, s.chunking)
	meta.StoreID = store.ID

	// 写入唯一命名的临时文件用于上传调用，结束后无条件删除
	tempPath := filepath.Join(os.TempDir(), "upload_"+uuid.NewString()+ext)
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return nil, &model.UploadError{Filename: fileName, Err: fmt.Errorf("write temp file: %w", err)}
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("[RecordUpload] 删除临时文件失败: %s, err=%v", tempPath, err)
		}
	}()

	start := time.Now()
	op, err := s.fsClient.UploadToStore(ctx, tempPath, store.Name, fileName, s.chunking)
	if err != nil {
		return nil, &model.UploadError{Filename: fileName, Err: err}
	}

	interval := time.Duration(s.uploadCfg.PollIntervalSeconds) * time.Second
	timeout := time.Duration(s.uploadCfg.PollTimeoutSeconds) * time.Second
	final, err := filesearch.WaitForOperation(ctx, s.fsClient, op, interval, timeout)
	if err != nil {
		return nil, &model.UploadError{Filename: fileName, Err: err}
	}
	meta.UploadDurationSeconds = round2(time.Since(start).Seconds())

	if final.Response != nil {
		meta.OperationResult = datatypes.JSONMap(final.Response)
	}
	if final.Metadata != nil {
		meta.OperationMetadata = datatypes.JSONMap(final.Metadata)
	}

	// 归档一份原始文件到对象存储，失败只告警，不影响上传结果
	objectName := fmt.Sprintf("documents/%d/%s", store.ID, fileName)
	if err := storage.ArchiveObject(ctx, s.minioCfg.BucketName, objectName, bytes.NewReader(data), int64(len(data))); err != nil {
		log.Warnf("[RecordUpload] 归档原始文件到 MinIO 失败: %s, err=%v", objectName, err)
	}

	if err := s.docRepo.Create(meta); err != nil {
		return nil, &model.UploadError{Filename: fileName, Err: fmt.Errorf("persist metadata: %w", err)}
	}

	log.Infof("[RecordUpload] 上传完成: %s, 耗时 %.2fs, 估算 %d tokens / %d chunks",
		fileName, meta.UploadDurationSeconds, meta.EstimatedTokenCount, meta.EstimatedChunkCount)
	return meta, nil
}

// BuildDocumentMetadata 根据文件名与原始字节计算描述性元数据，不触发任何外部调用。
//
// token 估算采用统一启发式：可用文本长度 ÷ 4。文本类扩展名且 UTF-8 解码成功时
// 取解码后的字符数，否则取字节数；字符/单词数只在解码成功时已知。
func BuildDocumentMetadata(fileName string, data []byte, textExtensions []string, chunking config.ChunkingConfig) *model.DocumentMetadata {
	ext := strings.ToLower(filepath.Ext(fileName))

	meta := &model.DocumentMetadata{
		Name:              fileName,
		SizeBytes:         int64(len(data)),
		SizeMB:            round2(float64(len(data)) / (1024 * 1024)),
		FileExtension:     ext,
		MaxTokensPerChunk: chunking.MaxTokensPerChunk,
		MaxOverlapTokens:  chunking.MaxOverlapTokens,
		ChunkingMethod:    chunking.ChunkingMethod,
	}

	if containsExt(textExtensions, ext) && utf8.Valid(data) {
		charCount := utf8.RuneCount(data)
		wordCount := len(strings.Fields(string(data)))
		meta.CharacterCount = &charCount
		meta.WordCount = &wordCount
		meta.EstimatedTokenCount = charCount / 4
	} else {
		// 二进制文件或解码失败：字符/单词数未知，退回字节长度
		meta.EstimatedTokenCount = len(data) / 4
	}

	meta.EstimatedChunkCount = 1
	if chunking.MaxTokensPerChunk > 0 {
		if n := meta.EstimatedTokenCount / chunking.MaxTokensPerChunk; n > 1 {
			meta.EstimatedChunkCount = n
		}
	}
	return meta
}

// GetSupportedFileTypes 返回系统接受的文件扩展名与文本类扩展名集合。
func (s *uploadService) GetSupportedFileTypes() map[string]interface{} {
	return map[string]interface{}{
		"acceptedExtensions": s.uploadCfg.AcceptedExtensions,
		"textExtensions":     s.uploadCfg.TextExtensions,
		"description":        "接受的文件会被远端服务自动索引，文本类文件额外统计字符与单词数",
	}
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// round2 保留两位小数。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

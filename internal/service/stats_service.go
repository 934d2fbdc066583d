package service

import (
	"context"
	"errors"

	"filesearch-go/internal/model"
	"filesearch-go/internal/repository"

	"gorm.io/gorm"
)

// StatsService 接口定义了会话级汇总统计。
type StatsService interface {
	GetStats(ctx context.Context, sessionID string) (model.AggregateStats, error)
}

type statsService struct {
	storeRepo repository.StoreRepository
	docRepo   repository.DocumentRepository
	chatRepo  repository.ChatRepository
}

// NewStatsService 创建一个新的 StatsService 实例。
func NewStatsService(storeRepo repository.StoreRepository, docRepo repository.DocumentRepository, chatRepo repository.ChatRepository) StatsService {
	return &statsService{
		storeRepo: storeRepo,
		docRepo:   docRepo,
		chatRepo:  chatRepo,
	}
}

// GetStats 汇总当前激活 store 的文档与会话聊天历史。会话还没有激活 store 时
// 文件相关统计为零值，聊天条数照常统计。
func (s *statsService) GetStats(ctx context.Context, sessionID string) (model.AggregateStats, error) {
	var files []model.DocumentMetadata
	store, err := s.storeRepo.FindActiveBySession(sessionID)
	switch {
	case err == nil:
		files, err = s.docRepo.FindByStoreID(store.ID)
		if err != nil {
			return model.AggregateStats{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 无激活 store，仅统计聊天历史
	default:
		return model.AggregateStats{}, err
	}

	history, err := s.chatRepo.GetHistory(ctx, sessionID)
	if err != nil {
		return model.AggregateStats{}, err
	}
	return Summarize(files, history), nil
}

// Summarize 对文档元数据与聊天历史做纯汇总，不触发任何外部调用。
func Summarize(files []model.DocumentMetadata, history []model.ChatTurn) model.AggregateStats {
	stats := model.AggregateStats{
		UploadedFiles: len(files),
		ChatMessages:  len(history),
	}
	for _, f := range files {
		stats.TotalSizeMB += f.SizeMB
		stats.TotalTokens += f.EstimatedTokenCount
	}
	return stats
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filesearch-go/internal/model"
	"filesearch-go/internal/repository"
	"filesearch-go/pkg/filesearch"
	"filesearch-go/pkg/log"

	"gorm.io/gorm"
)

// StoreService 接口定义了文档库（store）的生命周期管理。
type StoreService interface {
	// CreateStore 在远端创建一个新 store 并将其设为会话的激活 store。
	CreateStore(ctx context.Context, sessionID, displayName string) (*model.Store, error)
	// GetActiveStore 返回会话当前激活的 store，不存在时返回 gorm.ErrRecordNotFound。
	GetActiveStore(sessionID string) (*model.Store, error)
	// ResetStore 清空会话状态：删除旧 store 的本地文档记录与聊天历史，
	// 然后创建并激活一个新 store。
	ResetStore(ctx context.Context, sessionID, displayName string) (*model.Store, error)
}

type storeService struct {
	fsClient  filesearch.Client
	storeRepo repository.StoreRepository
	docRepo   repository.DocumentRepository
	chatRepo  repository.ChatRepository
}

// NewStoreService 创建一个新的 StoreService 实例。
func NewStoreService(fsClient filesearch.Client, storeRepo repository.StoreRepository, docRepo repository.DocumentRepository, chatRepo repository.ChatRepository) StoreService {
	return &storeService{
		fsClient:  fsClient,
		storeRepo: storeRepo,
		docRepo:   docRepo,
		chatRepo:  chatRepo,
	}
}

func (s *storeService) CreateStore(ctx context.Context, sessionID, displayName string) (*model.Store, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "session-" + sessionID
	}

	remote, err := s.fsClient.CreateStore(ctx, displayName)
	if err != nil {
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	if err := s.storeRepo.DeactivateBySession(sessionID); err != nil {
		return nil, fmt.Errorf("deactivate previous stores: %w", err)
	}

	store := &model.Store{
		SessionID:   sessionID,
		Name:        remote.Name,
		DisplayName: remote.DisplayName,
		Active:      true,
	}
	if err := s.storeRepo.Create(store); err != nil {
		return nil, fmt.Errorf("persist store: %w", err)
	}
	log.Infof("[CreateStore] 会话 %s 激活新 store: %s", sessionID, store.Name)
	return store, nil
}

func (s *storeService) GetActiveStore(sessionID string) (*model.Store, error) {
	return s.storeRepo.FindActiveBySession(sessionID)
}

func (s *storeService) ResetStore(ctx context.Context, sessionID, displayName string) (*model.Store, error) {
	old, err := s.storeRepo.FindActiveBySession(sessionID)
	switch {
	case err == nil:
		if err := s.docRepo.DeleteByStoreID(old.ID); err != nil {
			return nil, fmt.Errorf("delete document records: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 没有旧 store 可清理
	default:
		return nil, err
	}

	if err := s.chatRepo.ClearHistory(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear chat history: %w", err)
	}

	log.Infof("[ResetStore] 会话 %s 重置完成, 开始创建新 store", sessionID)
	return s.CreateStore(ctx, sessionID, displayName)
}

// Package repository 提供了数据访问层的实现。
package repository

import (
	"filesearch-go/internal/model"

	"gorm.io/gorm"
)

// StoreRepository 定义了 store 记录的持久化操作接口。
type StoreRepository interface {
	Create(store *model.Store) error
	FindActiveBySession(sessionID string) (*model.Store, error)
	DeactivateBySession(sessionID string) error
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建一个新的 StoreRepository 实例。
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create 在数据库中创建一条 store 记录。
func (r *storeRepository) Create(store *model.Store) error {
	return r.db.Create(store).Error
}

// FindActiveBySession 查找会话当前激活的 store。
func (r *storeRepository) FindActiveBySession(sessionID string) (*model.Store, error) {
	var store model.Store
	err := r.db.Where("session_id = ? AND active = ?", sessionID, true).
		Order("created_at desc").First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// DeactivateBySession 将会话下所有 store 标记为非激活（重置时调用）。
func (r *storeRepository) DeactivateBySession(sessionID string) error {
	return r.db.Model(&model.Store{}).
		Where("session_id = ?", sessionID).
		Update("active", false).Error
}

package repository

import (
	"filesearch-go/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository 定义了文档元数据的持久化操作接口。
// 元数据只在上传成功后创建一次，创建后不修改；store 重置时整体删除。
type DocumentRepository interface {
	Create(meta *model.DocumentMetadata) error
	FindByStoreID(storeID uint) ([]model.DocumentMetadata, error)
	FindByStoreAndName(storeID uint, filename string) (*model.DocumentMetadata, error)
	DeleteByStoreID(storeID uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 在数据库中创建一条文档元数据记录。
func (r *documentRepository) Create(meta *model.DocumentMetadata) error {
	return r.db.Create(meta).Error
}

// FindByStoreID 按上传顺序返回指定 store 下的全部文档元数据。
func (r *documentRepository) FindByStoreID(storeID uint) ([]model.DocumentMetadata, error) {
	var docs []model.DocumentMetadata
	err := r.db.Where("store_id = ?", storeID).Order("id asc").Find(&docs).Error
	return docs, err
}

// FindByStoreAndName 按文件名查找指定 store 下的一条文档元数据。
func (r *documentRepository) FindByStoreAndName(storeID uint, filename string) (*model.DocumentMetadata, error) {
	var doc model.DocumentMetadata
	err := r.db.Where("store_id = ? AND filename = ?", storeID, filename).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteByStoreID 删除指定 store 下的全部文档元数据（store 重置时调用）。
func (r *documentRepository) DeleteByStoreID(storeID uint) error {
	return r.db.Where("store_id = ?", storeID).Delete(&model.DocumentMetadata{}).Error
}

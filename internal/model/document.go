package model

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentMetadata 定义了 document_metadata 表的 ORM 模型。
// 每条记录对应一次成功的文件上传，创建后不再修改，store 重置时整体删除。
type DocumentMetadata struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID uint   `gorm:"index;not null" json:"storeId"`
	Name    string `gorm:"column:filename;type:varchar(255);not null" json:"filename"`

	SizeBytes     int64   `gorm:"not null" json:"sizeBytes"`
	SizeMB        float64 `gorm:"not null" json:"sizeMb"` // 字节数 / 1024² ，保留两位小数
	FileExtension string  `gorm:"type:varchar(16)" json:"fileExtension"`

	// 文本类文件解码成功时才有字符/单词数；二进制文件为 null
	CharacterCount *int `gorm:"default:null" json:"characterCount"`
	WordCount      *int `gorm:"default:null" json:"wordCount"`

	// 统一启发式：可用文本长度（解码字符数，否则字节数）÷ 4
	EstimatedTokenCount int `gorm:"not null" json:"estimatedTokenCount"`
	EstimatedChunkCount int `gorm:"not null" json:"estimatedChunkCount"` // >= 1

	// 上传时生效的分块策略快照
	MaxTokensPerChunk int    `gorm:"not null" json:"maxTokensPerChunk"`
	MaxOverlapTokens  int    `gorm:"not null" json:"maxOverlapTokens"`
	ChunkingMethod    string `gorm:"type:varchar(32)" json:"chunkingMethod"`

	UploadDurationSeconds float64 `gorm:"not null" json:"uploadDurationSeconds"`

	// 远端操作完成后回传的原始信息，仅用于“高级”面板展示
	OperationResult   datatypes.JSONMap `json:"operationResult"`
	OperationMetadata datatypes.JSONMap `json:"operationMetadata"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentMetadata) TableName() string {
	return "document_metadata"
}

// Package model 包含了应用的数据模型定义。
package model

import "time"

// Store 定义了 stores 表的 ORM 模型。
// 每条记录对应一个远端 File Search Store；一个会话同一时刻只有一个激活的 store。
type Store struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"` // 远端资源名，如 fileSearchStores/xxx
	DisplayName string    `gorm:"type:varchar(255);not null" json:"displayName"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Store) TableName() string {
	return "stores"
}

package model

import "time"

// ChatTurn 代表存储在 Redis 中的一轮问答。
// 按到达顺序追加，单条不修改不删除，只支持整体清空。
type ChatTurn struct {
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Citations []Citation   `json:"citations"`
	Debug     *QueryResult `json:"debugInfo,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// AggregateStats 是面向侧边栏展示的汇总统计。
type AggregateStats struct {
	UploadedFiles int     `json:"uploadedFiles"`
	TotalSizeMB   float64 `json:"totalSizeMb"` // 浮点求和，不做舍入
	TotalTokens   int     `json:"totalTokens"` // 仅累计已知的估算值
	ChatMessages  int     `json:"chatMessages"`
}

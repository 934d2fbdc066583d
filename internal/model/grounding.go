package model

// 本文件定义问答结果的稳定结构。UI 与统计只读取这里的类型，
// 永远不直接接触远端响应。

// GroundingChunk 是一条被引用的检索片段。
// Index 从 1 开始，按远端返回顺序连续递增。
// title/uri/text 各自可选；三者与 web 全部缺失时该片段视为“无来源信息”。
type GroundingChunk struct {
	Index int     `json:"index"`
	Title *string `json:"title,omitempty"`
	URI   *string `json:"uri,omitempty"`
	Text  *string `json:"text,omitempty"`
	Web   *string `json:"web,omitempty"`
}

// Sourceless 报告该片段是否不携带任何来源信息。
func (c GroundingChunk) Sourceless() bool {
	return c.Title == nil && c.URI == nil && c.Text == nil && c.Web == nil
}

// GroundingSupport 将答案文本的一个区段映射到支撑它的片段索引。
// ChunkIndices 原样复制远端的索引序列；ConfidenceScores 存在时与其等长。
type GroundingSupport struct {
	Index            int       `json:"index"`
	SegmentText      string    `json:"segmentText"`
	SegmentStart     *int      `json:"segmentStart,omitempty"`
	SegmentEnd       *int      `json:"segmentEnd,omitempty"`
	ChunkIndices     []int     `json:"chunkIndices,omitempty"`
	ConfidenceScores []float64 `json:"confidenceScores,omitempty"`
}

// Citation 是面向展示的扁平引用记录，由携带检索上下文的片段派生。
// Source 与 URI 取同一个值：uri 是“内容来自哪里”的规范标识。
type Citation struct {
	Title  *string `json:"title,omitempty"`
	URI    *string `json:"uri,omitempty"`
	Text   *string `json:"text,omitempty"`
	Source *string `json:"source,omitempty"`
}

// QueryResult 是一次问答的规范化结果。
// HasGrounding 仅表示远端响应是否携带了 grounding 元数据，与片段是否为空无关。
// Citations 的长度恒 <= GroundingChunks 的长度。
type QueryResult struct {
	AnswerText        string             `json:"answerText"`
	HasGrounding      bool               `json:"hasGrounding"`
	GroundingChunks   []GroundingChunk   `json:"groundingChunks"`
	GroundingSupports []GroundingSupport `json:"groundingSupports"`
	Citations         []Citation         `json:"citations"`
}

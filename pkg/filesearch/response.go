// Package filesearch provides a client for the hosted file-search and
// generation service.
package filesearch

import "strings"

// 远端服务的响应结构没有稳定契约：同一个接口可能返回单候选或多候选，
// grounding 元数据可能挂在候选上也可能挂在顶层，任何子字段都可能缺失。
// 因此这里的每个字段都是可选的（指针或切片），解析永远不会因为缺字段而失败，
// 由上层的 normalizer 将其收敛为稳定的结果结构。

// GenerateResponse 是一次问答调用的原始响应。
type GenerateResponse struct {
	Candidates        []Candidate        `json:"candidates,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
	ModelVersion      string             `json:"modelVersion,omitempty"`
}

// Candidate 是多候选响应中的一个候选结果。
type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
}

// Content 是候选携带的生成内容。
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part 是生成内容的一个分段。
type Part struct {
	Text string `json:"text,omitempty"`
}

// GroundingMetadata 携带支撑答案的检索证据。
type GroundingMetadata struct {
	GroundingChunks   []GroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"groundingSupports,omitempty"`
}

// GroundingChunk 是一条被引用的检索片段。
type GroundingChunk struct {
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
	Web              *WebSource        `json:"web,omitempty"`
}

// RetrievedContext 描述片段来自哪个已索引文件。三个字段各自可选：
// 一个片段可能只有 uri，也可能只有正文。
type RetrievedContext struct {
	Title *string `json:"title,omitempty"`
	URI   *string `json:"uri,omitempty"`
	Text  *string `json:"text,omitempty"`
}

// WebSource 描述来自 Web 检索的片段来源。
type WebSource struct {
	Title *string `json:"title,omitempty"`
	URI   *string `json:"uri,omitempty"`
}

// GroundingSupport 将答案文本的一个区段映射到支撑它的片段。
type GroundingSupport struct {
	Segment               *Segment  `json:"segment,omitempty"`
	GroundingChunkIndices []int     `json:"groundingChunkIndices,omitempty"`
	ConfidenceScores      []float64 `json:"confidenceScores,omitempty"`
}

// Segment 是答案文本中被支撑的区段。
type Segment struct {
	StartIndex *int    `json:"startIndex,omitempty"`
	EndIndex   *int    `json:"endIndex,omitempty"`
	Text       *string `json:"text,omitempty"`
}

// AnswerText 拼接首个候选的全部文本分段。响应未携带任何文本时返回空串。
func (r *GenerateResponse) AnswerText() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Package pipeline 定义了响应规范化的核心流程。
package pipeline

import (
	"fmt"

	"filesearch-go/internal/model"
	"filesearch-go/pkg/filesearch"
	"filesearch-go/pkg/log"
)

// Normalize 将一次问答调用的原始响应收敛为稳定的 QueryResult。
//
// 远端响应的形状没有契约：可能是单候选或多候选，grounding 元数据可能挂在
// 首个候选上也可能挂在顶层，片段与支撑的任何子字段都可能缺失。本函数的
// 正确性准则是：除了答案文本缺失之外，任何字段的缺失都不会中断其余字段、
// 其余片段的提取，也不会产生错误。
func Normalize(resp *filesearch.GenerateResponse) (*model.QueryResult, error) {
	// 1. 答案文本是唯一的强制字段
	answer := resp.AnswerText()
	if answer == "" {
		return nil, fmt.Errorf("normalize response: %w", model.ErrEmptyResponse)
	}

	result := &model.QueryResult{
		AnswerText:        answer,
		GroundingChunks:   []model.GroundingChunk{},
		GroundingSupports: []model.GroundingSupport{},
		Citations:         []model.Citation{},
	}

	// 2. 定位 grounding 元数据：优先首个候选，回退到顶层。
	// 两处都没有时是正常的空证据结果，不是错误。
	gm := locateGroundingMetadata(resp)
	if gm == nil {
		log.Infof("[Normalizer] 响应未携带 grounding 元数据，返回空证据结果")
		return result, nil
	}
	result.HasGrounding = true

	// 3a. 片段：按到达顺序赋 1 起始索引
	for i, chunk := range gm.GroundingChunks {
		result.GroundingChunks = append(result.GroundingChunks, normalizeChunk(i+1, chunk))
	}

	// 3b. 支撑：各子字段独立可选
	for i, support := range gm.GroundingSupports {
		result.GroundingSupports = append(result.GroundingSupports, normalizeSupport(i+1, support))
	}

	// 3c. 引用：只由携带非空检索上下文的片段派生，顺序跟随片段到达顺序
	for _, chunk := range gm.GroundingChunks {
		if citation, ok := buildCitation(chunk); ok {
			result.Citations = append(result.Citations, citation)
		}
	}

	log.Infof("[Normalizer] 规范化完成: chunks=%d, supports=%d, citations=%d",
		len(result.GroundingChunks), len(result.GroundingSupports), len(result.Citations))
	return result, nil
}

// locateGroundingMetadata 在候选与顶层之间选取 grounding 元数据。
func locateGroundingMetadata(resp *filesearch.GenerateResponse) *filesearch.GroundingMetadata {
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		return resp.Candidates[0].GroundingMetadata
	}
	return resp.GroundingMetadata
}

// normalizeChunk 提取一个片段的来源信息。三个上下文字段各自可选；
// 检索上下文与 web 来源都缺失时得到一个只有索引的“无来源”片段。
func normalizeChunk(index int, chunk filesearch.GroundingChunk) model.GroundingChunk {
	out := model.GroundingChunk{Index: index}

	if ctx := chunk.RetrievedContext; ctx != nil {
		out.Title = copyString(ctx.Title)
		out.URI = copyString(ctx.URI)
		out.Text = copyString(ctx.Text)
	}
	if web := chunk.Web; web != nil && web.URI != nil {
		out.Web = copyString(web.URI)
	}
	return out
}

// normalizeSupport 提取一个支撑项。区段缺失时文本默认为空串；
// 索引与置信度序列原样复制，保持远端顺序。
func normalizeSupport(index int, support filesearch.GroundingSupport) model.GroundingSupport {
	out := model.GroundingSupport{Index: index}

	if seg := support.Segment; seg != nil {
		if seg.Text != nil {
			out.SegmentText = *seg.Text
		}
		out.SegmentStart = copyInt(seg.StartIndex)
		out.SegmentEnd = copyInt(seg.EndIndex)
	}
	if support.GroundingChunkIndices != nil {
		out.ChunkIndices = append([]int{}, support.GroundingChunkIndices...)
	}
	if support.ConfidenceScores != nil {
		out.ConfidenceScores = append([]float64{}, support.ConfidenceScores...)
	}
	return out
}

// buildCitation 为携带非空检索上下文的片段生成引用记录。
// uri 同时作为 source：它是“内容来自哪里”的规范标识。
func buildCitation(chunk filesearch.GroundingChunk) (model.Citation, bool) {
	ctx := chunk.RetrievedContext
	if ctx == nil {
		return model.Citation{}, false
	}
	if ctx.Title == nil && ctx.URI == nil && ctx.Text == nil {
		return model.Citation{}, false
	}

	citation := model.Citation{
		Title: copyString(ctx.Title),
		URI:   copyString(ctx.URI),
		Text:  copyString(ctx.Text),
	}
	citation.Source = copyString(ctx.URI)
	return citation, true
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

package pipeline

import (
	"testing"

	"filesearch-go/internal/model"
	"filesearch-go/pkg/filesearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func responseWithAnswer(text string) *filesearch.GenerateResponse {
	return &filesearch.GenerateResponse{
		Candidates: []filesearch.Candidate{
			{
				Content: &filesearch.Content{
					Parts: []filesearch.Part{{Text: text}},
				},
			},
		},
	}
}

func TestNormalize_EmptyResponse(t *testing.T) {
	cases := []struct {
		name string
		resp *filesearch.GenerateResponse
	}{
		{"无候选", &filesearch.GenerateResponse{}},
		{"候选无内容", &filesearch.GenerateResponse{Candidates: []filesearch.Candidate{{}}}},
		{"内容无片段", &filesearch.GenerateResponse{
			Candidates: []filesearch.Candidate{{Content: &filesearch.Content{}}},
		}},
		{"片段文本为空", &filesearch.GenerateResponse{
			Candidates: []filesearch.Candidate{{Content: &filesearch.Content{
				Parts: []filesearch.Part{{Text: ""}},
			}}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Normalize(tc.resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrEmptyResponse)
			assert.Nil(t, result)
		})
	}
}

func TestNormalize_AnswerWithoutGrounding(t *testing.T) {
	result, err := Normalize(responseWithAnswer("答案文本"))
	require.NoError(t, err)

	assert.Equal(t, "答案文本", result.AnswerText)
	assert.False(t, result.HasGrounding)
	// 空证据结果仍然是非 nil 的空切片
	assert.NotNil(t, result.GroundingChunks)
	assert.Empty(t, result.GroundingChunks)
	assert.NotNil(t, result.GroundingSupports)
	assert.Empty(t, result.GroundingSupports)
	assert.NotNil(t, result.Citations)
	assert.Empty(t, result.Citations)
}

func TestNormalize_MultiPartAnswer(t *testing.T) {
	resp := &filesearch.GenerateResponse{
		Candidates: []filesearch.Candidate{
			{
				Content: &filesearch.Content{
					Parts: []filesearch.Part{
						{Text: "第一段"},
						{},
						{Text: "第二段"},
					},
				},
			},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	assert.Equal(t, "第一段第二段", result.AnswerText)
}

func TestNormalize_MetadataOnFirstCandidate(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{Title: strPtr("doc-a")}},
		},
	}
	// 顶层同时挂一份不同的元数据，候选上的应当胜出
	resp.GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{Title: strPtr("doc-b")}},
			{RetrievedContext: &filesearch.RetrievedContext{Title: strPtr("doc-c")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	assert.True(t, result.HasGrounding)
	require.Len(t, result.GroundingChunks, 1)
	assert.Equal(t, "doc-a", *result.GroundingChunks[0].Title)
}

func TestNormalize_MetadataFallsBackToTopLevel(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{URI: strPtr("files/x")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	assert.True(t, result.HasGrounding)
	require.Len(t, result.GroundingChunks, 1)
	assert.Equal(t, "files/x", *result.GroundingChunks[0].URI)
}

func TestNormalize_GroundingPresentButEmpty(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{}

	result, err := Normalize(resp)
	require.NoError(t, err)
	// 元数据存在即 hasGrounding=true，与片段是否为空无关
	assert.True(t, result.HasGrounding)
	assert.Empty(t, result.GroundingChunks)
	assert.Empty(t, result.GroundingSupports)
	assert.Empty(t, result.Citations)
}

func TestNormalize_ThreeChunkRoundTrip(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{
				Title: strPtr("A"), URI: strPtr("file://a"), Text: strPtr("hello"),
			}},
			{},
			{RetrievedContext: &filesearch.RetrievedContext{URI: strPtr("file://c")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)

	require.Len(t, result.GroundingChunks, 3)
	assert.Equal(t, 1, result.GroundingChunks[0].Index)
	assert.Equal(t, 2, result.GroundingChunks[1].Index)
	assert.Equal(t, 3, result.GroundingChunks[2].Index)
	assert.True(t, result.GroundingChunks[1].Sourceless())

	// 引用只来自第 1、3 个片段
	require.Len(t, result.Citations, 2)
	assert.Equal(t, "A", *result.Citations[0].Title)
	assert.Equal(t, "file://a", *result.Citations[0].Source)
	assert.Equal(t, "file://c", *result.Citations[1].URI)
}

func TestNormalize_ChunkIndicesAreOneBased(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{Title: strPtr("a")}},
			{}, // 完全无来源
			{Web: &filesearch.WebSource{URI: strPtr("https://example.com")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	require.Len(t, result.GroundingChunks, 3)
	for i, chunk := range result.GroundingChunks {
		assert.Equal(t, i+1, chunk.Index)
	}

	// 无来源片段仍占位且保持索引连续
	assert.False(t, result.GroundingChunks[0].Sourceless())
	assert.True(t, result.GroundingChunks[1].Sourceless())
	assert.False(t, result.GroundingChunks[2].Sourceless())
	assert.Equal(t, "https://example.com", *result.GroundingChunks[2].Web)
}

func TestNormalize_SupportsWithPartialFields(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingSupports: []filesearch.GroundingSupport{
			{
				Segment: &filesearch.Segment{
					Text:       strPtr("被支撑的区段"),
					StartIndex: intPtr(0),
					EndIndex:   intPtr(6),
				},
				GroundingChunkIndices: []int{0, 2},
				ConfidenceScores:      []float64{0.9, 0.7},
			},
			{}, // 所有字段缺失
			{Segment: &filesearch.Segment{Text: strPtr("无索引区段")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	require.Len(t, result.GroundingSupports, 3)

	full := result.GroundingSupports[0]
	assert.Equal(t, 1, full.Index)
	assert.Equal(t, "被支撑的区段", full.SegmentText)
	assert.Equal(t, 0, *full.SegmentStart)
	assert.Equal(t, 6, *full.SegmentEnd)
	assert.Equal(t, []int{0, 2}, full.ChunkIndices)
	assert.Equal(t, []float64{0.9, 0.7}, full.ConfidenceScores)

	empty := result.GroundingSupports[1]
	assert.Equal(t, 2, empty.Index)
	assert.Equal(t, "", empty.SegmentText)
	assert.Nil(t, empty.SegmentStart)
	assert.Nil(t, empty.SegmentEnd)
	assert.Nil(t, empty.ChunkIndices)
	assert.Nil(t, empty.ConfidenceScores)

	textOnly := result.GroundingSupports[2]
	assert.Equal(t, 3, textOnly.Index)
	assert.Equal(t, "无索引区段", textOnly.SegmentText)
}

func TestNormalize_CitationsOnlyFromRetrievedContext(t *testing.T) {
	resp := responseWithAnswer("答案")
	resp.Candidates[0].GroundingMetadata = &filesearch.GroundingMetadata{
		GroundingChunks: []filesearch.GroundingChunk{
			{RetrievedContext: &filesearch.RetrievedContext{
				Title: strPtr("手册"),
				URI:   strPtr("files/manual"),
				Text:  strPtr("相关段落"),
			}},
			{Web: &filesearch.WebSource{URI: strPtr("https://example.com")}}, // 仅 web，不产生引用
			{RetrievedContext: &filesearch.RetrievedContext{}},               // 上下文存在但为空，不产生引用
			{RetrievedContext: &filesearch.RetrievedContext{Text: strPtr("只有文本")}},
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	require.Len(t, result.Citations, 2)
	assert.LessOrEqual(t, len(result.Citations), len(result.GroundingChunks))

	first := result.Citations[0]
	assert.Equal(t, "手册", *first.Title)
	assert.Equal(t, "files/manual", *first.URI)
	assert.Equal(t, "相关段落", *first.Text)
	// source 与 uri 取同一个值
	require.NotNil(t, first.Source)
	assert.Equal(t, *first.URI, *first.Source)

	second := result.Citations[1]
	assert.Nil(t, second.URI)
	assert.Nil(t, second.Source)
	assert.Equal(t, "只有文本", *second.Text)
}

func TestNormalize_MissingFieldsNeverAbortSiblings(t *testing.T) {
	// 一个各处残缺的响应：规范化必须完整走完且不报错
	resp := &filesearch.GenerateResponse{
		Candidates: []filesearch.Candidate{
			{
				Content: &filesearch.Content{Parts: []filesearch.Part{{Text: "ok"}}},
				GroundingMetadata: &filesearch.GroundingMetadata{
					GroundingChunks: []filesearch.GroundingChunk{
						{},
						{RetrievedContext: &filesearch.RetrievedContext{URI: strPtr("files/y")}},
					},
					GroundingSupports: []filesearch.GroundingSupport{
						{Segment: &filesearch.Segment{}},
					},
				},
			},
			{}, // 次级候选缺内容，不参与提取
		},
	}

	result, err := Normalize(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.AnswerText)
	assert.Len(t, result.GroundingChunks, 2)
	assert.Len(t, result.GroundingSupports, 1)
	assert.Len(t, result.Citations, 1)
}

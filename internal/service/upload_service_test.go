package service

import (
	"bytes"
	"strings"
	"testing"

	"filesearch-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChunking = config.ChunkingConfig{
	MaxTokensPerChunk: 400,
	MaxOverlapTokens:  40,
	ChunkingMethod:    "white_space",
}

var testTextExtensions = []string{".txt", ".md", ".json"}

func TestBuildDocumentMetadata_TextFile(t *testing.T) {
	// 1000 个三字节汉字：3000 字节，解码后 1000 个字符
	data := []byte(strings.Repeat("字", 1000))
	require.Len(t, data, 3000)

	meta := BuildDocumentMetadata("notes.txt", data, testTextExtensions, testChunking)

	assert.Equal(t, "notes.txt", meta.Name)
	assert.Equal(t, ".txt", meta.FileExtension)
	assert.Equal(t, int64(3000), meta.SizeBytes)
	require.NotNil(t, meta.CharacterCount)
	assert.Equal(t, 1000, *meta.CharacterCount)
	require.NotNil(t, meta.WordCount)
	assert.Equal(t, 1, *meta.WordCount)
	// token 估算基于字符数而不是字节数
	assert.Equal(t, 250, meta.EstimatedTokenCount)
	assert.Equal(t, 1, meta.EstimatedChunkCount)
}

func TestBuildDocumentMetadata_TextFileWordCount(t *testing.T) {
	data := []byte("alpha beta\tgamma\n delta")
	meta := BuildDocumentMetadata("words.md", data, testTextExtensions, testChunking)

	require.NotNil(t, meta.WordCount)
	assert.Equal(t, 4, *meta.WordCount)
	require.NotNil(t, meta.CharacterCount)
	assert.Equal(t, len(data), *meta.CharacterCount)
}

func TestBuildDocumentMetadata_BinaryFile(t *testing.T) {
	// 4000 个无效 UTF-8 字节
	data := bytes.Repeat([]byte{0xff, 0xfe}, 2000)
	require.Len(t, data, 4000)

	meta := BuildDocumentMetadata("report.pdf", data, testTextExtensions, testChunking)

	assert.Equal(t, ".pdf", meta.FileExtension)
	assert.Equal(t, int64(4000), meta.SizeBytes)
	// 二进制文件：字符/单词数未知
	assert.Nil(t, meta.CharacterCount)
	assert.Nil(t, meta.WordCount)
	// 退回字节长度估算
	assert.Equal(t, 1000, meta.EstimatedTokenCount)
	assert.Equal(t, 2, meta.EstimatedChunkCount)
}

func TestBuildDocumentMetadata_TextExtensionWithInvalidUTF8(t *testing.T) {
	// 文本扩展名但解码失败：按二进制路径处理
	data := []byte{0xff, 0xfe, 0xfd, 0xfc}
	meta := BuildDocumentMetadata("broken.txt", data, testTextExtensions, testChunking)

	assert.Nil(t, meta.CharacterCount)
	assert.Nil(t, meta.WordCount)
	assert.Equal(t, 1, meta.EstimatedTokenCount)
}

func TestBuildDocumentMetadata_ChunkCountNeverZero(t *testing.T) {
	meta := BuildDocumentMetadata("tiny.txt", []byte("hi"), testTextExtensions, testChunking)
	assert.Equal(t, 0, meta.EstimatedTokenCount)
	assert.Equal(t, 1, meta.EstimatedChunkCount)
}

func TestBuildDocumentMetadata_SizeMBRounded(t *testing.T) {
	data := make([]byte, 1_500_000)
	meta := BuildDocumentMetadata("big.bin", data, testTextExtensions, testChunking)
	assert.InDelta(t, 1.43, meta.SizeMB, 0.001)
}

func TestBuildDocumentMetadata_ChunkingSnapshot(t *testing.T) {
	meta := BuildDocumentMetadata("a.txt", []byte("x"), testTextExtensions, testChunking)
	assert.Equal(t, 400, meta.MaxTokensPerChunk)
	assert.Equal(t, 40, meta.MaxOverlapTokens)
	assert.Equal(t, "white_space", meta.ChunkingMethod)
}

func TestContainsExt_CaseInsensitive(t *testing.T) {
	assert.True(t, containsExt([]string{".PDF", ".txt"}, ".pdf"))
	assert.False(t, containsExt([]string{".txt"}, ".exe"))
}

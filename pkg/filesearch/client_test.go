package filesearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filesearch-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) Client {
	return NewClient(config.FileSearchConfig{
		APIKey:      "test-key",
		BaseURL:     serverURL,
		Model:       "gemini-2.5-flash",
		Temperature: 0.2,
	})
}

func TestCreateStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/fileSearchStores", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "我的文档库", req["displayName"])

		_ = json.NewEncoder(w).Encode(Store{Name: "fileSearchStores/abc", DisplayName: "我的文档库"})
	}))
	defer server.Close()

	store, err := newTestClient(server.URL).CreateStore(context.Background(), "我的文档库")
	require.NoError(t, err)
	assert.Equal(t, "fileSearchStores/abc", store.Name)
}

func TestCreateStore_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"permission denied"}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateStore(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestUploadToStore_MultipartRequest(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(localPath, []byte("hello upload"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fileSearchStores/abc:uploadToFileSearchStore", r.URL.Path)
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/related"))

		_ = json.NewEncoder(w).Encode(Operation{Name: "operations/op-1"})
	}))
	defer server.Close()

	chunking := config.ChunkingConfig{MaxTokensPerChunk: 400, MaxOverlapTokens: 40, ChunkingMethod: "white_space"}
	op, err := newTestClient(server.URL).UploadToStore(context.Background(), localPath, "fileSearchStores/abc", "notes.txt", chunking)
	require.NoError(t, err)
	assert.Equal(t, "operations/op-1", op.Name)
	assert.False(t, op.Done)
}

func TestGetOperation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/operations/op-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Operation{Name: "operations/op-1", Done: true})
	}))
	defer server.Close()

	op, err := newTestClient(server.URL).GetOperation(context.Background(), "operations/op-1")
	require.NoError(t, err)
	assert.True(t, op.Done)
}

func TestGenerateContent_RequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		contents := req["contents"].([]interface{})
		require.Len(t, contents, 1)
		tools := req["tools"].([]interface{})
		fsTool := tools[0].(map[string]interface{})["fileSearch"].(map[string]interface{})
		names := fsTool["fileSearchStoreNames"].([]interface{})
		assert.Equal(t, "fileSearchStores/abc", names[0])
		genCfg := req["generationConfig"].(map[string]interface{})
		assert.InDelta(t, 0.2, genCfg["temperature"].(float64), 0.0001)

		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{
				{Content: &Content{Parts: []Part{{Text: "答案"}}}},
			},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).GenerateContent(context.Background(), "问题", "fileSearchStores/abc")
	require.NoError(t, err)
	assert.Equal(t, "答案", resp.AnswerText())
}

func TestAnswerText_LooseShapes(t *testing.T) {
	var nilResp *GenerateResponse
	assert.Equal(t, "", nilResp.AnswerText())
	assert.Equal(t, "", (&GenerateResponse{}).AnswerText())
	assert.Equal(t, "", (&GenerateResponse{Candidates: []Candidate{{}}}).AnswerText())
}

package filesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"filesearch-go/internal/config"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
)

// Client defines the interface for the hosted file-search service.
type Client interface {
	// CreateStore 创建一个新的文档集合 (File Search Store)。
	CreateStore(ctx context.Context, displayName string) (*Store, error)
	// UploadToStore 上传并索引一个本地文件，返回远端的长时操作句柄。
	UploadToStore(ctx context.Context, localPath, storeName, displayName string, chunking config.ChunkingConfig) (*Operation, error)
	// GetOperation 查询一个长时操作的最新状态。
	GetOperation(ctx context.Context, name string) (*Operation, error)
	// GenerateContent 对指定集合发起问答调用，返回原始响应。
	GenerateContent(ctx context.Context, question, storeName string) (*GenerateResponse, error)
}

// Store 是远端文档集合的标识。
type Store struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type httpClient struct {
	cfg    config.FileSearchConfig
	client *http.Client
}

// NewClient creates a new file-search client from the config.
func NewClient(cfg config.FileSearchConfig) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type createStoreRequest struct {
	DisplayName string `json:"displayName"`
}

type generateRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type tool struct {
	FileSearch *fileSearchTool `json:"fileSearch,omitempty"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type uploadMetadata struct {
	DisplayName    string          `json:"displayName"`
	ChunkingConfig *chunkingConfig `json:"chunkingConfig,omitempty"`
}

type chunkingConfig struct {
	WhiteSpaceConfig whiteSpaceConfig `json:"whiteSpaceConfig"`
}

type whiteSpaceConfig struct {
	MaxTokensPerChunk int `json:"maxTokensPerChunk"`
	MaxOverlapTokens  int `json:"maxOverlapTokens"`
}

// CreateStore 调用远端接口创建一个新的 File Search Store。
func (c *httpClient) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	reqBytes, err := json.Marshal(createStoreRequest{DisplayName: displayName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create store request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/fileSearchStores", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create store request: %w", err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call file search api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("create store", resp)
	}

	var store Store
	if err := json.NewDecoder(resp.Body).Decode(&store); err != nil {
		return nil, fmt.Errorf("failed to decode store response: %w", err)
	}
	return &store, nil
}

// UploadToStore 以 multipart/related 方式上传文件到指定 store 并触发索引。
// 远端的分块策略（白空格切分、每块最大 token、重叠 token）随请求下发。
func (c *httpClient) UploadToStore(ctx context.Context, localPath, storeName, displayName string, chunking config.ChunkingConfig) (*Operation, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	meta := uploadMetadata{
		DisplayName: displayName,
		ChunkingConfig: &chunkingConfig{
			WhiteSpaceConfig: whiteSpaceConfig{
				MaxTokensPerChunk: chunking.MaxTokensPerChunk,
				MaxOverlapTokens:  chunking.MaxOverlapTokens,
			},
		},
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload metadata: %w", err)
	}

	// 第一部分是 JSON 元数据，第二部分是文件原始字节
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaBytes); err != nil {
		return nil, fmt.Errorf("failed to write metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", detectMimeType(displayName))
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(filePart, file); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/%s:uploadToFileSearchStore?uploadType=multipart", c.cfg.BaseURL, storeName)
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	c.setHeaders(req, "multipart/related; boundary="+writer.Boundary())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call upload api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("upload", resp)
	}

	var op Operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode upload operation: %w", err)
	}
	return &op, nil
}

// GetOperation 查询长时操作的最新状态（上传索引完成与否在这里体现）。
func (c *httpClient) GetOperation(ctx context.Context, name string) (*Operation, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation request: %w", err)
	}
	c.setHeaders(req, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call operation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get operation", resp)
	}

	var op Operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode operation response: %w", err)
	}
	return &op, nil
}

// GenerateContent 对指定 store 发起一次带 file_search 工具的生成调用。
func (c *httpClient) GenerateContent(ctx context.Context, question, storeName string) (*GenerateResponse, error) {
	reqBody := generateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: question}}},
		},
		Tools: []tool{
			{FileSearch: &fileSearchTool{FileSearchStoreNames: []string{storeName}}},
		},
	}
	if c.cfg.Temperature != 0 {
		t := c.cfg.Temperature
		reqBody.GenerationConfig = &generationConfig{Temperature: &t}
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create generate request: %w", err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generate api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("generate", resp)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}
	return &genResp, nil
}

// setHeaders 设置通用请求头。API Key 通过 x-goog-api-key 头部传递。
func (c *httpClient) setHeaders(req *http.Request, contentType string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
}

// apiError 将非 200 响应转成带响应体摘要的错误。
func apiError(action string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s api returned non-200 status: %s, body: %s", action, resp.Status, string(bodyBytes))
}

// detectMimeType 根据文件扩展名判断 Content-Type
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		// fallback 默认
		return "application/octet-stream"
	}
	return mimeType
}

package repository

import (
	"context"
	"encoding/json"
	"filesearch-go/internal/model"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 聊天历史在 Redis 中保留 7 天；一次 store 重置或手动清空会整体删除。
const chatHistoryTTL = 7 * 24 * time.Hour

// ChatRepository 定义了聊天历史记录的操作接口。
// 历史按到达顺序追加，单轮不删改，只支持整体清空。
type ChatRepository interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	AppendTurn(ctx context.Context, sessionID string, turn model.ChatTurn) error
	ClearHistory(ctx context.Context, sessionID string) error
}

type redisChatRepository struct {
	redisClient *redis.Client
}

// NewChatRepository 创建一个新的 ChatRepository 实例。
func NewChatRepository(redisClient *redis.Client) ChatRepository {
	return &redisChatRepository{redisClient: redisClient}
}

func chatKey(sessionID string) string {
	return fmt.Sprintf("chat:%s", sessionID)
}

// GetHistory 从 Redis 获取会话的完整聊天历史。
func (r *redisChatRepository) GetHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	jsonData, err := r.redisClient.Get(ctx, chatKey(sessionID)).Result()
	if err == redis.Nil {
		return []model.ChatTurn{}, nil // No history yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	var turns []model.ChatTurn
	if err := json.Unmarshal([]byte(jsonData), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat history: %w", err)
	}
	return turns, nil
}

// AppendTurn 将一轮问答追加到会话历史的末尾。
func (r *redisChatRepository) AppendTurn(ctx context.Context, sessionID string, turn model.ChatTurn) error {
	turns, err := r.GetHistory(ctx, sessionID)
	if err != nil {
		return err
	}
	turns = append(turns, turn)

	jsonData, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	if err := r.redisClient.Set(ctx, chatKey(sessionID), jsonData, chatHistoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set chat history: %w", err)
	}
	return nil
}

// ClearHistory 清空会话的全部聊天历史。
func (r *redisChatRepository) ClearHistory(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, chatKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}

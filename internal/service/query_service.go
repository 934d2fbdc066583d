package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filesearch-go/internal/model"
	"filesearch-go/internal/pipeline"
	"filesearch-go/internal/repository"
	"filesearch-go/pkg/filesearch"
	"filesearch-go/pkg/log"
)

// QueryService 接口定义了问答相关的业务操作。
type QueryService interface {
	// AskQuestion 向会话激活的 store 发起一次问答，返回归一化后的结果。
	// 失败时返回 *model.QueryError，且不写入聊天历史。
	AskQuestion(ctx context.Context, sessionID, question string) (*model.QueryResult, error)
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

type queryService struct {
	fsClient  filesearch.Client
	storeRepo repository.StoreRepository
	chatRepo  repository.ChatRepository
}

// NewQueryService 创建一个新的 QueryService 实例。
func NewQueryService(fsClient filesearch.Client, storeRepo repository.StoreRepository, chatRepo repository.ChatRepository) QueryService {
	return &queryService{
		fsClient:  fsClient,
		storeRepo: storeRepo,
		chatRepo:  chatRepo,
	}
}

func (s *queryService) AskQuestion(ctx context.Context, sessionID, question string) (*model.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &model.QueryError{Err: fmt.Errorf("question is empty")}
	}

	store, err := s.storeRepo.FindActiveBySession(sessionID)
	if err != nil {
		return nil, &model.QueryError{Err: fmt.Errorf("no active store for session: %w", err)}
	}

	log.Infof("[AskQuestion] 会话 %s 向 store %s 提问: %s", sessionID, store.Name, question)
	resp, err := s.fsClient.GenerateContent(ctx, question, store.Name)
	if err != nil {
		return nil, &model.QueryError{Err: err}
	}

	result, err := pipeline.Normalize(resp)
	if err != nil {
		return nil, &model.QueryError{Err: err}
	}

	turn := model.ChatTurn{
		Question:  question,
		Answer:    result.AnswerText,
		Citations: result.Citations,
		Debug:     result,
		Timestamp: time.Now(),
	}
	if err := s.chatRepo.AppendTurn(ctx, sessionID, turn); err != nil {
		// 历史落盘失败不影响本次回答
		log.Errorf("[AskQuestion] 追加聊天历史失败: session=%s, err=%v", sessionID, err)
	}
	return result, nil
}

func (s *queryService) GetHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	return s.chatRepo.GetHistory(ctx, sessionID)
}

func (s *queryService) ClearHistory(ctx context.Context, sessionID string) error {
	return s.chatRepo.ClearHistory(ctx, sessionID)
}

package service

import (
	"fmt"

	"filesearch-go/pkg/token"

	"github.com/google/uuid"
)

// SessionDTO 是新建会话后返回给前端的凭证信息。
type SessionDTO struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// SessionService 接口定义了匿名会话的签发。
type SessionService interface {
	CreateSession() (*SessionDTO, error)
}

type sessionService struct {
	jwtManager *token.JWTManager
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(jwtManager *token.JWTManager) SessionService {
	return &sessionService{jwtManager: jwtManager}
}

// CreateSession 生成一个全新的匿名会话并签发对应的 JWT。
func (s *sessionService) CreateSession() (*SessionDTO, error) {
	sessionID := uuid.NewString()
	tok, err := s.jwtManager.GenerateSessionToken(sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	return &SessionDTO{SessionID: sessionID, Token: tok}, nil
}

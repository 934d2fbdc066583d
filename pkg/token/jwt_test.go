package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifySessionToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 1)

	tok, err := manager.GenerateSessionToken("session-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := manager.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "session-123", claims.SessionID)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	tok, err := NewJWTManager("secret-a", 1).GenerateSessionToken("session-123")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", 1).VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	// 过期时长为 0 小时，令牌生成即过期
	manager := NewJWTManager("test-secret", 0)
	tok, err := manager.GenerateSessionToken("session-123")
	require.NoError(t, err)

	_, err = manager.VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := NewJWTManager("test-secret", 1).VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

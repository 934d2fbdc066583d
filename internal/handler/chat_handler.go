package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"filesearch-go/internal/service"
	"filesearch-go/pkg/log"
	"filesearch-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理 WebSocket 问答连接。
type ChatHandler struct {
	queryService service.QueryService
	jwtManager   *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(queryService service.QueryService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		queryService: queryService,
		jwtManager:   jwtManager,
	}
}

// wsQuestion 是客户端发来的提问帧。
type wsQuestion struct {
	Question string `json:"question"`
}

// wsReply 是服务端回发的帧，type 为 answer / error / done。
type wsReply struct {
	Type      string      `json:"type"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Handle 处理一个传入的 WebSocket 连接。每收到一帧提问就同步执行一次问答，
// 回发归一化结果帧，随后回发完成帧。
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，会话: %s", claims.SessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var q wsQuestion
		if err := json.Unmarshal(message, &q); err != nil || q.Question == "" {
			h.reply(conn, wsReply{Type: "error", Message: "无效的提问帧", Timestamp: time.Now().UnixMilli()})
			continue
		}

		result, err := h.queryService.AskQuestion(c.Request.Context(), claims.SessionID, q.Question)
		if err != nil {
			log.Errorf("WebSocket 问答失败: session=%s, err=%v", claims.SessionID, err)
			h.reply(conn, wsReply{Type: "error", Message: err.Error(), Timestamp: time.Now().UnixMilli()})
			continue
		}

		h.reply(conn, wsReply{Type: "answer", Data: result, Timestamp: time.Now().UnixMilli()})
		h.reply(conn, wsReply{Type: "done", Timestamp: time.Now().UnixMilli()})
	}
}

func (h *ChatHandler) reply(conn *websocket.Conn, r wsReply) {
	b, err := json.Marshal(r)
	if err != nil {
		log.Errorf("序列化 WebSocket 回复失败: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写 WebSocket 消息失败: %v", err)
	}
}

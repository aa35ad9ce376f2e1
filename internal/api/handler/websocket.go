package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/pkg/jwt"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/pkg/ws"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type WebSocketHandler struct {
	hub         *ws.Hub
	authService *service.AuthService
	jwtSecret   string
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, authService *service.AuthService, jwtSecret string, checkOrigin func(*http.Request) bool, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		jwtSecret:   jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Handle 付款事件推送连接，管理员额外接收新申请提醒
// GET /api/v1/ws?token=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.AuthError(c, "请提供认证信息")
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		response.AuthError(c, "认证失败")
		return
	}

	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	client := &ws.Client{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Reviewer: service.CanReviewPayments(user),
		Conn:     conn,
	}
	h.hub.Register(client)

	done := make(chan struct{})
	go h.keepAlive(client, done)
	go func() {
		defer func() {
			close(done)
			h.hub.Unregister(client)
			conn.Close()
		}()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		// 只读不处理，用于感知断开
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHandler) keepAlive(client *ws.Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Ping(time.Now().Add(10 * time.Second)); err != nil {
				return
			}
		}
	}
}

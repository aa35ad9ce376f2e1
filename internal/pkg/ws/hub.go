package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
)

type Hub struct {
	// 每个用户可以有多个连接（多标签页、重连等场景）
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex
	log     *zap.Logger
}

type Client struct {
	ID       string
	UserID   int64
	Reviewer bool // 可审核付款，接收新申请提醒
	Conn     *websocket.Conn
	mu       sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}

	h.log.Debug("websocket connected",
		zap.Int64("user_id", client.UserID),
		zap.String("client_id", client.ID),
		zap.Bool("reviewer", client.Reviewer),
		zap.Int("user_conns", len(h.clients[client.UserID])),
	)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.log.Debug("websocket disconnected", zap.Int64("user_id", client.UserID), zap.String("client_id", client.ID))
}

// SendToUser 向指定用户的所有连接发送消息
func (h *Hub) SendToUser(userID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := h.clients[userID]
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	h.write(clients, data)
	return nil
}

// SendToReviewers 向所有审核员连接发送消息
func (h *Hub) SendToReviewers(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var clients []*Client
	for _, conns := range h.clients {
		for c := range conns {
			if c.Reviewer {
				clients = append(clients, c)
			}
		}
	}
	h.mu.RUnlock()

	h.write(clients, data)
	return nil
}

// DispatchPaymentEvent 新申请推送给审核员，审核结果推送给申请人
func (h *Hub) DispatchPaymentEvent(event *pubsub.PaymentEvent) {
	msg := &Message{Type: event.Type, Data: event}

	var err error
	switch event.Type {
	case pubsub.EventPaymentSubmitted:
		err = h.SendToReviewers(msg)
	case pubsub.EventPaymentReviewed:
		err = h.SendToUser(event.UserID, msg)
	default:
		return
	}
	if err != nil {
		h.log.Warn("dispatch payment event failed", zap.String("type", event.Type), zap.Error(err))
	}
}

// Ping 发送心跳帧，与普通消息共用写锁
func (c *Client) Ping(deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// 复制引用后再写，避免长时间持锁
func (h *Hub) write(clients []*Client, data []byte) {
	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.log.Warn("websocket write failed", zap.Int64("user_id", c.UserID), zap.Error(err))
		}
	}
}

// IsOnline 检查用户是否在线
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.clients[userID]
	return ok && len(conns) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

package client

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/re-cards/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连间隔
	reconnectInterval = 2 * time.Second
)

// AckFunc 命令应答回调
type AckFunc func(*protocol.AckPayload)

// Client WebSocket 客户端
// 本地视图是服务端快照的被动镜像，唯一的乐观字段是 ready（见 state.go）
type Client struct {
	ServerURL string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}

	PlayerID       string
	PlayerName     string
	ReconnectToken string // 重连令牌

	// 网络延迟（毫秒）
	Latency int64

	// 等待应答的命令，seq → 回调
	seq       atomic.Uint64
	pending   map[uint64]AckFunc
	pendingMu sync.Mutex

	// 本地镜像
	state           *protocol.RoomSnapshot
	optimisticReady *bool
	stateMu         sync.RWMutex

	// 回调
	OnState         func(*protocol.RoomSnapshot) // 快照更新回调
	OnError         func(error)                  // 错误回调
	OnClose         func()                       // 关闭回调
	OnReconnecting  func(attempt, max int)       // 重连中回调
	OnReconnect     func()                       // 重连成功回调
	OnLatencyUpdate func(int64)                  // 延迟更新回调

	mu             sync.RWMutex
	closed         bool
	reconnecting   atomic.Bool
	reconnectCount int
}

// NewClient 创建客户端
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL: serverURL,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		pending:   make(map[uint64]AckFunc),
	}
}

// Connect 连接服务器
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(c.ServerURL, nil)
	if err != nil {
		return err
	}

	c.conn = conn

	// 启动读写协程
	go c.readPump()
	go c.writePump()

	return nil
}

// readPump 从服务器读取消息
func (c *Client) readPump() {
	defer func() {
		// 尝试重连
		if c.ReconnectToken != "" && !c.reconnecting.Load() {
			go c.tryReconnect()
		} else {
			c.Close()
			if c.OnClose != nil {
				c.OnClose()
			}
		}
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if c.OnError != nil {
					c.OnError(err)
				}
			}
			return
		}

		msg, err := protocol.Decode(message)
		if err != nil {
			log.Printf("消息解析错误: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage 分发服务端消息
func (c *Client) handleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgAck:
		payload, err := protocol.ParsePayload[protocol.AckPayload](msg)
		if err != nil {
			return
		}
		c.dispatchAck(msg.Seq, payload)

	case protocol.MsgRoomState, protocol.MsgMatchStart, protocol.MsgMatchSync:
		// 三类推送携带同一快照结构，统一整体替换本地视图
		payload, err := protocol.ParsePayload[protocol.RoomSnapshot](msg)
		if err != nil {
			return
		}
		c.applySnapshot(payload)

	case protocol.MsgConnected:
		payload, err := protocol.ParsePayload[protocol.ConnectedPayload](msg)
		if err != nil {
			return
		}
		c.PlayerID = payload.PlayerID
		c.PlayerName = payload.PlayerName
		c.ReconnectToken = payload.ReconnectToken

	case protocol.MsgReconnected:
		c.reconnecting.Store(false)
		c.reconnectCount = 0
		if c.OnReconnect != nil {
			c.OnReconnect()
		}

	case protocol.MsgPong:
		payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
		if err != nil {
			return
		}
		latency := time.Now().UnixMilli() - payload.ClientTimestamp
		c.Latency = latency
		if c.OnLatencyUpdate != nil {
			c.OnLatencyUpdate(latency)
		}
	}
}

// dispatchAck 按 seq 派发应答回调
func (c *Client) dispatchAck(seq uint64, payload *protocol.AckPayload) {
	c.pendingMu.Lock()
	ack, ok := c.pending[seq]
	delete(c.pending, seq)
	c.pendingMu.Unlock()

	if ok && ack != nil {
		ack(payload)
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return errors.New("connection closed")
	}
	c.mu.RUnlock()

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Emit 发送命令并注册应答回调
func (c *Client) Emit(msgType protocol.MessageType, payload any, ack AckFunc) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	msg.Seq = c.seq.Add(1)

	if ack != nil {
		c.pendingMu.Lock()
		c.pending[msg.Seq] = ack
		c.pendingMu.Unlock()
	}

	if err := c.SendMessage(msg); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, msg.Seq)
		c.pendingMu.Unlock()
		return err
	}
	return nil
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// GetLatency 获取当前延迟（毫秒）
func (c *Client) GetLatency() int64 {
	return c.Latency
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/re-cards/internal/config"
	"github.com/palemoky/re-cards/internal/game"
	"github.com/palemoky/re-cards/internal/protocol"
	"github.com/palemoky/re-cards/internal/server/session"
	"github.com/palemoky/re-cards/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境需要限制
	},
}

// Server WebSocket 服务器
type Server struct {
	config   *config.Config
	redis    *redis.Client
	store    *storage.SnapshotStore
	registry *game.Registry
	sessions *session.Manager

	clients   map[string]*Client
	clientsMu sync.RWMutex

	handler *Handler
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化 Redis 客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	s := &Server{
		config:   cfg,
		redis:    rdb,
		store:    storage.NewSnapshotStore(rdb),
		clients:  make(map[string]*Client),
		sessions: session.NewManager(),
	}

	// 房间注册表持有在 Server 实例上，不用包级全局，方便多实例测试隔离
	s.registry = game.NewRegistry(&cfg.Game, s.store)

	s.handler = NewHandler(s)

	return s, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	// 创建客户端
	client := NewClient(s, conn)
	s.registerClient(client)

	// 创建会话
	sess := s.sessions.CreateSession(client.GetID(), client.GetName())

	// 发送连接成功消息（包含重连令牌）
	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       client.GetID(),
		PlayerName:     client.GetName(),
		ReconnectToken: sess.ReconnectToken,
	}))

	log.Printf("✅ 玩家 %s 已连接", client.GetID())

	// 启动客户端读写协程
	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.GetID()] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.GetID()]; ok {
		delete(s.clients, client.GetID())
		log.Printf("❌ 玩家 %s 已断开", client.GetID())
	}
}

// rebindClient 重连时把客户端从临时 ID 迁移到原玩家 ID
func (s *Server) rebindClient(client *Client, playerID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	delete(s.clients, client.GetID())
	client.setID(playerID)
	s.clients[playerID] = client
}

// GetOnlineCount 获取在线人数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 房间: %d | 对局: %d | Goroutines: %d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.registry.Count(),
			s.registry.ActiveMatchCount(),
			runtime.NumGoroutine(),
			float64(m.Alloc)/1024/1024)
	}
}

// Shutdown 关闭服务器
func (s *Server) Shutdown() {
	// 关闭所有客户端连接
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	// 关闭 Redis
	_ = s.redis.Close()

	log.Println("服务器已关闭")
}

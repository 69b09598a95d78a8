package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// 重连等待时间
	reconnectTimeout = 2 * time.Minute
	// 会话过期时间
	sessionExpireTime = 10 * time.Minute
)

// PlayerSession 玩家会话（用于断线重连）
// 重连凭 Token 匹配，不凭昵称
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	ReconnectToken string
	RoomCode       string

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool      // 是否在线

	mu sync.RWMutex
}

// Manager 会话管理器
type Manager struct {
	sessions map[string]*PlayerSession // playerID -> session
	tokens   map[string]string         // token -> playerID
	mu       sync.RWMutex
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	m := &Manager{
		sessions: make(map[string]*PlayerSession),
		tokens:   make(map[string]string),
	}

	// 启动会话清理协程
	go m.cleanupLoop()

	return m
}

// CreateSession 创建新会话
func (m *Manager) CreateSession(playerID, playerName string) *PlayerSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := generateToken()

	session := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ReconnectToken: token,
		IsOnline:       true,
	}

	m.sessions[playerID] = session
	m.tokens[token] = playerID

	return session
}

// GetSession 获取会话
func (m *Manager) GetSession(playerID string) *PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[playerID]
}

// GetSessionByToken 通过 token 获取会话
func (m *Manager) GetSessionByToken(token string) *PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playerID, ok := m.tokens[token]
	if !ok {
		return nil
	}
	return m.sessions[playerID]
}

// SetOffline 设置玩家离线
func (m *Manager) SetOffline(playerID string) {
	m.mu.RLock()
	session, ok := m.sessions[playerID]
	m.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = false
		session.DisconnectedAt = time.Now()
		session.mu.Unlock()
	}
}

// SetOnline 设置玩家上线
func (m *Manager) SetOnline(playerID string) {
	m.mu.RLock()
	session, ok := m.sessions[playerID]
	m.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = true
		session.DisconnectedAt = time.Time{}
		session.mu.Unlock()
	}
}

// SetRoom 设置玩家所在房间
func (m *Manager) SetRoom(playerID, roomCode string) {
	m.mu.RLock()
	session, ok := m.sessions[playerID]
	m.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.RoomCode = roomCode
		session.mu.Unlock()
	}
}

// GetRoom 获取玩家所在房间号
func (m *Manager) GetRoom(playerID string) string {
	m.mu.RLock()
	session, ok := m.sessions[playerID]
	m.mu.RUnlock()

	if !ok {
		return ""
	}
	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.RoomCode
}

// DeleteSession 删除会话
func (m *Manager) DeleteSession(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[playerID]; ok {
		delete(m.tokens, session.ReconnectToken)
		delete(m.sessions, playerID)
	}
}

// CanReconnect 检查玩家是否可以重连
func (m *Manager) CanReconnect(token, playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	storedPlayerID, ok := m.tokens[token]
	if !ok || storedPlayerID != playerID {
		return false
	}

	session, ok := m.sessions[playerID]
	if !ok {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	// 检查是否在重连时限内
	if !session.IsOnline && time.Since(session.DisconnectedAt) > reconnectTimeout {
		return false
	}

	return true
}

// IsOnline 检查玩家是否在线
func (m *Manager) IsOnline(playerID string) bool {
	m.mu.RLock()
	session, ok := m.sessions[playerID]
	m.mu.RUnlock()

	if !ok {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.IsOnline
}

// cleanupLoop 定期清理过期会话
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup 清理过期会话
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for playerID, session := range m.sessions {
		session.mu.RLock()
		// 清理离线超过会话过期时间的会话
		if !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime {
			delete(m.tokens, session.ReconnectToken)
			delete(m.sessions, playerID)
		}
		session.mu.RUnlock()
	}
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

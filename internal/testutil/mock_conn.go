package testutil

import (
	"sync"

	"github.com/palemoky/re-cards/internal/protocol"
)

// MockConn 实现 game.Conn 的简单 mock，按顺序记录收到的消息
type MockConn struct {
	ID string

	mu       sync.Mutex
	messages []*protocol.Message
}

// NewMockConn 创建 mock 连接
func NewMockConn(id string) *MockConn {
	return &MockConn{ID: id}
}

func (m *MockConn) GetID() string { return m.ID }

func (m *MockConn) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Messages 已收到的消息副本
func (m *MockConn) Messages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*protocol.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// LastMessage 最后一条消息，没有时返回 nil
func (m *MockConn) LastMessage() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// LastOfType 最后一条指定类型的消息，没有时返回 nil
func (m *MockConn) LastOfType(t protocol.MessageType) *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Type == t {
			return m.messages[i]
		}
	}
	return nil
}

// CountOfType 指定类型消息的数量
func (m *MockConn) CountOfType(t protocol.MessageType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, msg := range m.messages {
		if msg.Type == t {
			count++
		}
	}
	return count
}

// Clear 清空记录
func (m *MockConn) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

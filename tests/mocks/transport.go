package mocks

import (
	"sync"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// SentMessage 一次 SendMessage 调用
type SentMessage struct {
	Addr types.Address
	Msg  []byte
}

// MockTransport 模拟 Transport 接口实现
//
// 默认行为：ConnectTo 分配递增的 AttemptID 并记录调用，其余方法只记录调用。
type MockTransport struct {
	mu sync.Mutex

	// 可覆盖的方法
	ConnectToFunc   func(addr types.Address) (interfaces.AttemptID, error)
	SendMessageFunc func(addr types.Address, msg []byte) error
	DisconnectFunc  func(addr types.Address) error

	// 调用记录
	ConnectCalls    []types.Address
	AttemptIDs      []interfaces.AttemptID
	SentMessages    []SentMessage
	DisconnectCalls []types.Address

	nextID interfaces.AttemptID
}

// NewMockTransport 创建 MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// ConnectTo 发起连接尝试
func (m *MockTransport) ConnectTo(addr types.Address) (interfaces.AttemptID, error) {
	m.mu.Lock()
	m.ConnectCalls = append(m.ConnectCalls, addr)
	fn := m.ConnectToFunc
	m.mu.Unlock()

	if fn != nil {
		id, err := fn(addr)
		if err == nil {
			m.mu.Lock()
			m.AttemptIDs = append(m.AttemptIDs, id)
			m.mu.Unlock()
		}
		return id, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.AttemptIDs = append(m.AttemptIDs, m.nextID)
	return m.nextID, nil
}

// SendMessage 发送消息
func (m *MockTransport) SendMessage(addr types.Address, msg []byte) error {
	m.mu.Lock()
	m.SentMessages = append(m.SentMessages, SentMessage{Addr: addr, Msg: append([]byte(nil), msg...)})
	fn := m.SendMessageFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(addr, msg)
	}
	return nil
}

// Disconnect 断开链路
func (m *MockTransport) Disconnect(addr types.Address) error {
	m.mu.Lock()
	m.DisconnectCalls = append(m.DisconnectCalls, addr)
	fn := m.DisconnectFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(addr)
	}
	return nil
}

// LastAttempt 最近一次成功的连接尝试
func (m *MockTransport) LastAttempt() (interfaces.AttemptID, types.Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.AttemptIDs) == 0 {
		return 0, types.Address{}, false
	}
	return m.AttemptIDs[len(m.AttemptIDs)-1], m.ConnectCalls[len(m.ConnectCalls)-1], true
}

// Connects 连接调用记录的副本
func (m *MockTransport) Connects() []types.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Address(nil), m.ConnectCalls...)
}

// Disconnects 断开调用记录的副本
func (m *MockTransport) Disconnects() []types.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Address(nil), m.DisconnectCalls...)
}

// Sent 发送记录的副本
func (m *MockTransport) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.SentMessages...)
}

// 确保实现接口
var _ interfaces.Transport = (*MockTransport)(nil)

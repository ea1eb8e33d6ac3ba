package mocks

import (
	"sync"
	"time"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// PingBatch 一次 PingAddresses 调用
type PingBatch struct {
	ID      interfaces.BatchID
	Addrs   []types.Address
	Kind    types.PingKind
	Payload []byte
	Timeout time.Duration
}

// MockPingCoordinator 模拟 PingCoordinator 接口实现
//
// 只记录调用，不会主动回调；测试直接调用引擎的 OnPong/OnPingBatchTimeout。
type MockPingCoordinator struct {
	mu sync.Mutex

	// 可覆盖的方法
	PingAddressesFunc func(addrs []types.Address, kind types.PingKind, payload []byte, timeout time.Duration) (interfaces.BatchID, error)
	CancelBatchFunc   func(id interfaces.BatchID)

	// 调用记录
	Batches   []PingBatch
	Cancelled []interfaces.BatchID

	nextID interfaces.BatchID
}

// NewMockPingCoordinator 创建 MockPingCoordinator
func NewMockPingCoordinator() *MockPingCoordinator {
	return &MockPingCoordinator{}
}

// PingAddresses 发起批量 ping
func (m *MockPingCoordinator) PingAddresses(addrs []types.Address, kind types.PingKind, payload []byte, timeout time.Duration) (interfaces.BatchID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id interfaces.BatchID
	if m.PingAddressesFunc != nil {
		var err error
		id, err = m.PingAddressesFunc(addrs, kind, payload, timeout)
		if err != nil {
			return 0, err
		}
	} else {
		m.nextID++
		id = m.nextID
	}
	m.Batches = append(m.Batches, PingBatch{
		ID:      id,
		Addrs:   append([]types.Address(nil), addrs...),
		Kind:    kind,
		Payload: append([]byte(nil), payload...),
		Timeout: timeout,
	})
	return id, nil
}

// CancelBatch 取消批次
func (m *MockPingCoordinator) CancelBatch(id interfaces.BatchID) {
	m.mu.Lock()
	m.Cancelled = append(m.Cancelled, id)
	fn := m.CancelBatchFunc
	m.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

// BatchCount 批次数
func (m *MockPingCoordinator) BatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Batches)
}

// LastBatch 最近一个批次
func (m *MockPingCoordinator) LastBatch() (PingBatch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Batches) == 0 {
		return PingBatch{}, false
	}
	return m.Batches[len(m.Batches)-1], true
}

// BatchesOfKind 指定类型的批次
func (m *MockPingCoordinator) BatchesOfKind(kind types.PingKind) []PingBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PingBatch
	for _, b := range m.Batches {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// CancelledBatches 已取消批次的副本
func (m *MockPingCoordinator) CancelledBatches() []interfaces.BatchID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interfaces.BatchID(nil), m.Cancelled...)
}

// 确保实现接口
var _ interfaces.PingCoordinator = (*MockPingCoordinator)(nil)

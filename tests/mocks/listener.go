package mocks

import (
	"sync"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// RecordingListener 记录所有终止事件的 DiscoveryListener
type RecordingListener struct {
	mu     sync.Mutex
	events []types.Event

	// OnEvent 每个事件到达时调用，可为 nil；在锁外调用
	OnEvent func(ev types.Event)
}

// NewRecordingListener 创建 RecordingListener
func NewRecordingListener() *RecordingListener {
	return &RecordingListener{}
}

func (l *RecordingListener) record(ev types.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	fn := l.OnEvent
	l.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// OnHostListRefreshed 实现 DiscoveryListener
func (l *RecordingListener) OnHostListRefreshed(ev types.HostListRefreshed) { l.record(ev) }

// OnSingleHostRefreshed 实现 DiscoveryListener
func (l *RecordingListener) OnSingleHostRefreshed(ev types.SingleHostRefreshed) { l.record(ev) }

// OnRefreshCancelledOrFailed 实现 DiscoveryListener
func (l *RecordingListener) OnRefreshCancelledOrFailed(ev types.RefreshCancelledOrFailed) {
	l.record(ev)
}

// Events 事件副本
func (l *RecordingListener) Events() []types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Event(nil), l.events...)
}

// Count 事件数
func (l *RecordingListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Last 最近一个事件
func (l *RecordingListener) Last() types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return nil
	}
	return l.events[len(l.events)-1]
}

// Reset 清空记录
func (l *RecordingListener) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// 确保实现接口
var _ interfaces.DiscoveryListener = (*RecordingListener)(nil)

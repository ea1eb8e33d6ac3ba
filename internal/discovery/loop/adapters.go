package loop

import (
	"time"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// ============================================================================
//                              回调适配器
// ============================================================================

// PingHandler 把 ping 回调投递到事件循环
//
// 先用 NewPingHandler 创建交给协调器，引擎创建后再 Bind。
type PingHandler struct {
	l *Loop
	h interfaces.PingHandler
}

// NewPingHandler 创建 ping 回调适配器
func NewPingHandler(l *Loop) *PingHandler {
	return &PingHandler{l: l}
}

// Bind 绑定目标，必须在事件循环启动前调用
func (a *PingHandler) Bind(h interfaces.PingHandler) { a.h = h }

// OnPong 实现 PingHandler
func (a *PingHandler) OnPong(id interfaces.BatchID, addr types.Address, rtt time.Duration, payload []byte) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnPong(id, addr, rtt, payload)
		}
	})
}

// OnPingBatchTimeout 实现 PingHandler
func (a *PingHandler) OnPingBatchTimeout(id interfaces.BatchID, unresponded []types.Address) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnPingBatchTimeout(id, unresponded)
		}
	})
}

// OnPingCancelled 实现 PingHandler
func (a *PingHandler) OnPingCancelled(id interfaces.BatchID) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnPingCancelled(id)
		}
	})
}

// TransportHandler 把链路回调投递到事件循环
type TransportHandler struct {
	l *Loop
	h interfaces.TransportHandler
}

// NewTransportHandler 创建链路回调适配器
func NewTransportHandler(l *Loop) *TransportHandler {
	return &TransportHandler{l: l}
}

// Bind 绑定目标，必须在事件循环启动前调用
func (a *TransportHandler) Bind(h interfaces.TransportHandler) { a.h = h }

// OnConnectAccepted 实现 TransportHandler
func (a *TransportHandler) OnConnectAccepted(id interfaces.AttemptID, addr types.Address) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnConnectAccepted(id, addr)
		}
	})
}

// OnConnectDenied 实现 TransportHandler
func (a *TransportHandler) OnConnectDenied(id interfaces.AttemptID) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnConnectDenied(id)
		}
	})
}

// OnLinkClosed 实现 TransportHandler
func (a *TransportHandler) OnLinkClosed(addr types.Address, reason types.LinkCloseReason) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnLinkClosed(addr, reason)
		}
	})
}

// OnMessage 实现 TransportHandler
func (a *TransportHandler) OnMessage(addr types.Address, msg []byte) {
	a.l.Post(func() {
		if a.h != nil {
			a.h.OnMessage(addr, msg)
		}
	})
}

// 确保实现接口
var (
	_ interfaces.PingHandler      = (*PingHandler)(nil)
	_ interfaces.TransportHandler = (*TransportHandler)(nil)
)

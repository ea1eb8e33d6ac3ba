// Package masterserver 按订阅顺序逐个连接主服务器
//
// Connector 一次只发起一个连接尝试。被拒绝、连接失败或在收到主机列表之前
// 意外断开时，回退到列表中的下一个主服务器；全部失败即为耗尽，由发现引擎
// 决定如何结束当前操作。
package masterserver

import (
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("discovery/masterserver")

// CloseOutcome 链路关闭的处理结果
type CloseOutcome int

const (
	// CloseIgnored 关闭是预期的或与当前链路无关
	CloseIgnored CloseOutcome = iota
	// CloseFallback 需要回退到下一个主服务器
	CloseFallback
)

// Connector 主服务器连接器
//
// 不变式：一轮尝试序列内 index 只增加；Reset 将其归零。
type Connector struct {
	transport interfaces.Transport

	subs  []types.Address
	index int

	attempt    interfaces.AttemptID
	attempting bool
	target     types.Address

	connected    types.Address
	listReceived bool
	reached      bool

	// released 本地已放弃、关闭回调尚未到达的链路数
	released map[types.Address]int

	// OnAttempt 每次发起连接尝试时调用，可为 nil
	OnAttempt func(addr types.Address)
}

// New 创建连接器
func New(transport interfaces.Transport) *Connector {
	return &Connector{transport: transport, released: make(map[types.Address]int)}
}

// release 放弃链路并断开，随后到达的一次关闭回调属于这条旧链路
func (c *Connector) release(addr types.Address, what string) {
	c.released[addr]++
	if err := c.transport.Disconnect(addr); err != nil {
		logger.Debug(what+"失败", "addr", addr, "err", err)
	}
}

// Reset 以新的订阅列表开始一轮尝试序列
//
// 上一轮遗留的链路会被断开。
func (c *Connector) Reset(subs []types.Address) {
	c.Abort()
	c.subs = append([]types.Address(nil), subs...)
	c.index = 0
	c.reached = false
}

// TryNext 尝试下一个主服务器
//
// 到达列表末尾时返回 ErrExhausted。ConnectTo 同步失败的地址视为被拒绝，
// 继续尝试下一个。
func (c *Connector) TryNext() error {
	if c.attempting {
		return ErrAttemptInFlight
	}
	c.connected = types.Address{}
	c.listReceived = false

	for c.index < len(c.subs) {
		addr := c.subs[c.index]
		c.index++
		if c.OnAttempt != nil {
			c.OnAttempt(addr)
		}

		id, err := c.transport.ConnectTo(addr)
		if err != nil {
			logger.Warn("连接主服务器失败", "addr", addr, "err", err)
			continue
		}
		c.attempt = id
		c.attempting = true
		c.target = addr
		logger.Debug("正在连接主服务器", "addr", addr, "attempt", id, "index", c.index-1)
		return nil
	}
	return ErrExhausted
}

// Accepted 处理连接接受回调
//
// 不属于当前尝试的连接（如 Abort 之后才到达）会被立即断开，返回 false。
func (c *Connector) Accepted(id interfaces.AttemptID, addr types.Address) bool {
	if !c.attempting || id != c.attempt {
		logger.Debug("断开过期的主服务器连接", "addr", addr, "attempt", id)
		c.release(addr, "断开过期连接")
		return false
	}
	c.attempting = false
	c.connected = addr
	c.reached = true
	return true
}

// Denied 处理连接拒绝回调
//
// 返回 true 表示当前尝试失败，调用方应调用 TryNext 回退。
func (c *Connector) Denied(id interfaces.AttemptID) bool {
	if !c.attempting || id != c.attempt {
		return false
	}
	logger.Info("主服务器拒绝连接", "addr", c.target)
	c.attempting = false
	c.target = types.Address{}
	return true
}

// LinkClosed 处理链路关闭回调
//
// 已放弃链路的关闭回调可能晚于到同一地址的新连接，只消耗计数，不影响当前链路。
// 收到主机列表之后的关闭，以及本地主动请求的关闭，都是预期内的。
func (c *Connector) LinkClosed(addr types.Address, reason types.LinkCloseReason) CloseOutcome {
	if n := c.released[addr]; n > 0 {
		if n == 1 {
			delete(c.released, addr)
		} else {
			c.released[addr] = n - 1
		}
		logger.Debug("忽略已放弃链路的关闭", "addr", addr, "reason", reason)
		return CloseIgnored
	}
	if c.connected.IsEmpty() || addr != c.connected || reason == types.LinkClosedRequested {
		return CloseIgnored
	}
	c.connected = types.Address{}
	if c.listReceived {
		return CloseIgnored
	}
	logger.Info("主服务器链路在返回列表前断开", "addr", addr, "reason", reason)
	return CloseFallback
}

// MarkRecordListReceived 标记已收到主机列表
func (c *Connector) MarkRecordListReceived() {
	c.listReceived = true
}

// CloseLink 收到主机列表后主动关闭当前链路
//
// 链路随后的关闭回调会被忽略。
func (c *Connector) CloseLink() {
	if c.connected.IsEmpty() {
		return
	}
	addr := c.connected
	c.connected = types.Address{}
	c.release(addr, "关闭主服务器链路")
}

// Drop 放弃当前链路，之后可以 TryNext 回退
//
// 链路随后的关闭回调会被忽略。
func (c *Connector) Drop() {
	if c.connected.IsEmpty() {
		return
	}
	addr := c.connected
	c.connected = types.Address{}
	c.listReceived = false
	c.release(addr, "放弃主服务器链路")
}

// Abort 中止当前尝试序列
//
// 断开已建立的链路；未完成的连接尝试在之后被接受时由 Accepted 断开。
func (c *Connector) Abort() {
	if !c.connected.IsEmpty() {
		addr := c.connected
		c.connected = types.Address{}
		c.release(addr, "中止时断开主服务器")
	}
	c.attempting = false
	c.target = types.Address{}
	c.listReceived = false
	c.index = len(c.subs)
}

// Connected 当前连接的主服务器，未连接时为空地址
func (c *Connector) Connected() types.Address { return c.connected }

// IsConnected 地址是否为当前连接的主服务器
func (c *Connector) IsConnected(addr types.Address) bool {
	return !c.connected.IsEmpty() && addr == c.connected
}

// Attempting 是否有未完成的连接尝试
func (c *Connector) Attempting() bool { return c.attempting }

// Index 下一个待尝试的位置
func (c *Connector) Index() int { return c.index }

// Reached 本轮是否成功连接过主服务器
func (c *Connector) Reached() bool { return c.reached }

// RecordListReceived 本轮是否收到过主机列表
func (c *Connector) RecordListReceived() bool { return c.listReceived }

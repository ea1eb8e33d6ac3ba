// Package interfaces 定义 hostdisco 公共接口
//
// 本文件定义发现引擎接口。
package interfaces

import (
	"time"

	"github.com/dep2p/go-hostdisco/pkg/types"
)

// RefreshOptions 刷新选项
type RefreshOptions struct {
	// AllowDiscovery 是否允许把未知地址加入主机缓存
	AllowDiscovery bool

	// GetExtraHostInfo 是否收集扩展主机信息
	GetExtraHostInfo bool

	// RemoveStaleHosts 是否移除本轮未响应的已知主机
	RemoveStaleHosts bool
}

// HostDiscovery 发现引擎接口
//
// 实现不是并发安全的，调用方需保证与回调在同一 goroutine 上串行执行。
type HostDiscovery interface {
	TransportHandler
	PingHandler

	// Network 引擎负责的网络
	Network() types.Network

	// Mode 当前发现模式
	Mode() types.DiscoveryMode

	// RefreshAll 刷新整个主机列表
	RefreshAll(opts RefreshOptions) error

	// SingleHostRefresh 刷新单个主机
	SingleHostRefresh(addr types.Address, opts RefreshOptions) error

	// Cancel 取消当前请求，不派发任何事件
	Cancel()

	// OnTick 推进整体操作计时器
	OnTick(dt time.Duration)
}

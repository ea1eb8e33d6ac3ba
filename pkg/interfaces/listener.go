// Package interfaces 定义 hostdisco 公共接口
//
// 本文件定义终止事件监听器。
package interfaces

import (
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// DiscoveryListener 终止事件监听器
//
// 每个请求至多触发一次回调；Cancel() 不触发任何回调。
type DiscoveryListener interface {
	// OnHostListRefreshed 主机列表刷新完成
	OnHostListRefreshed(ev types.HostListRefreshed)

	// OnSingleHostRefreshed 单主机刷新完成
	OnSingleHostRefreshed(ev types.SingleHostRefreshed)

	// OnRefreshCancelledOrFailed 刷新失败
	OnRefreshCancelledOrFailed(ev types.RefreshCancelledOrFailed)
}

// EventFunc 把单个函数适配为 DiscoveryListener
type EventFunc func(types.Event)

// OnHostListRefreshed 实现 DiscoveryListener
func (f EventFunc) OnHostListRefreshed(ev types.HostListRefreshed) { f(ev) }

// OnSingleHostRefreshed 实现 DiscoveryListener
func (f EventFunc) OnSingleHostRefreshed(ev types.SingleHostRefreshed) { f(ev) }

// OnRefreshCancelledOrFailed 实现 DiscoveryListener
func (f EventFunc) OnRefreshCancelledOrFailed(ev types.RefreshCancelledOrFailed) { f(ev) }

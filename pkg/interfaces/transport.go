// Package interfaces 定义 hostdisco 公共接口
//
// 本文件定义 Transport 接口，抽象到主服务器的链路层。
package interfaces

import (
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// AttemptID 连接尝试 ID
type AttemptID uint64

// Transport 定义主服务器链路接口
//
// 链路建立、握手、分帧和重传都属于 Transport 的职责，发现引擎只关心结果。
// ConnectTo 立即返回，连接结果通过 TransportHandler 异步通知。
type Transport interface {
	// ConnectTo 发起到指定地址的连接尝试
	ConnectTo(addr types.Address) (AttemptID, error)

	// SendMessage 通过已建立的链路发送消息
	SendMessage(addr types.Address, msg []byte) error

	// Disconnect 主动关闭链路，之后会以 LinkClosedRequested 回调 OnLinkClosed
	Disconnect(addr types.Address) error
}

// TransportHandler 链路事件回调
type TransportHandler interface {
	// OnConnectAccepted 连接被接受
	OnConnectAccepted(id AttemptID, addr types.Address)

	// OnConnectDenied 连接被拒绝或失败
	OnConnectDenied(id AttemptID)

	// OnLinkClosed 链路关闭
	OnLinkClosed(addr types.Address, reason types.LinkCloseReason)

	// OnMessage 收到链路消息
	OnMessage(addr types.Address, msg []byte)
}

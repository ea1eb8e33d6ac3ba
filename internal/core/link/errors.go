package link

import "errors"

var (
	// ErrClosed 传输层已关闭
	ErrClosed = errors.New("link: transport closed")

	// ErrNotConnected 没有到该地址的链路
	ErrNotConnected = errors.New("link: not connected")

	// ErrFrameTooLarge 帧超过最大长度
	ErrFrameTooLarge = errors.New("link: frame too large")

	// ErrNoHandler 启动前没有设置回调
	ErrNoHandler = errors.New("link: no handler")
)

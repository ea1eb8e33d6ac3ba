package loop

import "errors"

var (
	// ErrClosed 事件循环已停止
	ErrClosed = errors.New("loop: closed")

	// ErrNotStarted 事件循环尚未启动
	ErrNotStarted = errors.New("loop: not started")
)

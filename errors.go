package hostdisco

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 客户端未启动
	ErrNotStarted = errors.New("client not started")

	// ErrAlreadyStarted 客户端已启动
	ErrAlreadyStarted = errors.New("client already started")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("client closed")

	// ErrUnknownPreset 未知预设
	ErrUnknownPreset = errors.New("unknown preset")
)

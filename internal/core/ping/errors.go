package ping

import "errors"

var (
	// ErrNotStarted 协调器尚未启动
	ErrNotStarted = errors.New("ping: coordinator not started")

	// ErrClosed 协调器已关闭
	ErrClosed = errors.New("ping: coordinator closed")

	// ErrNoAddresses 批次没有目标地址
	ErrNoAddresses = errors.New("ping: no addresses")

	// ErrInvalidKind 无效的 ping 类型
	ErrInvalidKind = errors.New("ping: invalid kind")

	// ErrInvalidTimeout 超时必须为正
	ErrInvalidTimeout = errors.New("ping: timeout must be positive")
)

package coordinator

import "errors"

var (
	// ErrNetworkDisabled 该网络未启用
	ErrNetworkDisabled = errors.New("coordinator: network disabled")

	// ErrNoNetworks 没有启用任何网络
	ErrNoNetworks = errors.New("coordinator: no networks enabled")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("coordinator: invalid config")
)

package engine

import "errors"

var (
	// ErrRefreshInProgress 已有请求在进行，需先 Cancel
	ErrRefreshInProgress = errors.New("engine: refresh already in progress")

	// ErrHostListDecode 主机列表消息无法解析
	ErrHostListDecode = errors.New("engine: host record list could not be decoded")

	// ErrNilStore 缺少主机记录缓存
	ErrNilStore = errors.New("engine: host record store is required")

	// ErrNilPinger 缺少 ping 协调器
	ErrNilPinger = errors.New("engine: ping coordinator is required")

	// ErrNetworkMismatch 缓存与引擎不属于同一网络
	ErrNetworkMismatch = errors.New("engine: store network does not match engine network")
)

package masterserver

import "errors"

var (
	// ErrExhausted 订阅列表已全部尝试
	ErrExhausted = errors.New("masterserver: subscriptions exhausted")

	// ErrAttemptInFlight 已有连接尝试未完成
	ErrAttemptInFlight = errors.New("masterserver: connect attempt already in flight")
)

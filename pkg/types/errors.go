package types

import "errors"

var (
	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownNetwork 未知网络
	ErrUnknownNetwork = errors.New("unknown network")
)

package hoststore

import "errors"

var (
	// ErrInvalidCapacity 容量非正数
	ErrInvalidCapacity = errors.New("hoststore: capacity must be positive")

	// ErrEmptyAddress 空地址不能作为键
	ErrEmptyAddress = errors.New("hoststore: empty address")
)

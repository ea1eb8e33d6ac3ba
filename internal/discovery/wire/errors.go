package wire

import "errors"

var (
	// ErrMalformed 消息无法解析
	ErrMalformed = errors.New("wire: malformed message")

	// ErrUnexpectedType 信封类型与期望不符
	ErrUnexpectedType = errors.New("wire: unexpected message type")
)

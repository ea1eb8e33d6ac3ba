package request

import "errors"

var (
	// ErrStageRegression 阶段只能前进
	ErrStageRegression = errors.New("request: discovery stage cannot move backward")

	// ErrWrongKind 操作不适用于该请求变体
	ErrWrongKind = errors.New("request: operation not valid for request kind")
)

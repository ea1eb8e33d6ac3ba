package config

import (
	"errors"
	"time"
)

// LinkConfig 主服务器链路配置
type LinkConfig struct {
	// DialTimeout TCP 拨号超时
	// 默认值: 3s
	DialTimeout Duration `json:"dial_timeout"`

	// MaxFrameSize 单帧最大字节数
	// 默认值: 1MiB
	MaxFrameSize int `json:"max_frame_size"`
}

// DefaultLinkConfig 返回默认链路配置
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		DialTimeout:  Duration(3 * time.Second),
		MaxFrameSize: 1 << 20,
	}
}

// Validate 验证链路配置
func (c LinkConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("dial timeout must be positive")
	}
	if c.MaxFrameSize <= 0 {
		return errors.New("max frame size must be positive")
	}
	return nil
}

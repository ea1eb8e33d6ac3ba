package link

import (
	"time"

	"github.com/dep2p/go-hostdisco/config"
)

// Config 链路配置
type Config struct {
	// DialTimeout 拨号超时
	DialTimeout time.Duration

	// MaxFrameSize 单帧最大字节数
	MaxFrameSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		MaxFrameSize: 1 << 20,
	}
}

// ConfigFromUnified 从统一配置生成链路配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		DialTimeout:  cfg.Link.DialTimeout.Duration(),
		MaxFrameSize: cfg.Link.MaxFrameSize,
	}
}

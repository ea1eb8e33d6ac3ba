package ping

import (
	"time"

	"github.com/dep2p/go-hostdisco/config"
)

// Config 协调器配置
type Config struct {
	// ListenAddr UDP 监听地址
	ListenAddr string

	// Interval 未响应地址的重发间隔
	Interval time.Duration

	// MaxRate 每秒最多发送的数据报，0 表示不限
	MaxRate int

	// ProjectID 随 ping 发送，并用于过滤 pong
	ProjectID string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":0",
		Interval:   250 * time.Millisecond,
		MaxRate:    200,
	}
}

// ConfigFromUnified 从统一配置生成协调器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		ListenAddr: cfg.Ping.ListenAddr,
		Interval:   cfg.Ping.Interval.Duration(),
		MaxRate:    cfg.Ping.MaxRate,
		ProjectID:  cfg.Discovery.ProjectID,
	}
}

package config

import (
	"errors"
	"time"
)

// PingConfig Ping 协调器配置
type PingConfig struct {
	// ListenAddr UDP 监听地址
	// 默认值: ":0"
	ListenAddr string `json:"listen_addr"`

	// Interval 未响应目标的重发间隔
	// 默认值: 250ms
	Interval Duration `json:"interval"`

	// MaxRate 每秒最多发送的 Ping 数，0 表示不限
	// 默认值: 200
	MaxRate int `json:"max_rate"`

	// Respond 本地作为主机应答 Ping（serve 模式）
	Respond bool `json:"respond"`
}

// DefaultPingConfig 返回默认 Ping 配置
func DefaultPingConfig() PingConfig {
	return PingConfig{
		ListenAddr: ":0",
		Interval:   Duration(250 * time.Millisecond),
		MaxRate:    200,
	}
}

// Validate 验证 Ping 配置
func (c PingConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.Interval <= 0 {
		return errors.New("ping interval must be positive")
	}
	if c.MaxRate < 0 {
		return errors.New("max rate cannot be negative")
	}
	return nil
}

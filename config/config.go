// Package config 提供主机发现引擎的统一配置
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义：
//   - discovery.go: 发现引擎超时、主服务器列表、局域网广播地址
//   - ping.go: Ping 协调器（监听地址、重发间隔、发送速率）
//   - link.go: 主服务器链路（拨号超时、最大帧长度）
//   - store.go: 主机记录存储容量
//   - metrics.go: Prometheus 指标
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Discovery.MasterServers = []string{"203.0.113.7:27900"}
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import "fmt"

// Config 是主机发现的完整配置结构
type Config struct {
	// Discovery 发现引擎配置
	Discovery DiscoveryConfig `json:"discovery"`

	// Ping Ping 协调器配置
	Ping PingConfig `json:"ping"`

	// Link 主服务器链路配置
	Link LinkConfig `json:"link"`

	// Store 主机记录存储配置
	Store StoreConfig `json:"store"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Discovery: DefaultDiscoveryConfig(),
		Ping:      DefaultPingConfig(),
		Link:      DefaultLinkConfig(),
		Store:     DefaultStoreConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Discovery.Validate(); err != nil {
		return fmt.Errorf("discovery config: %w", err)
	}
	if err := c.Ping.Validate(); err != nil {
		return fmt.Errorf("ping config: %w", err)
	}
	if err := c.Link.Validate(); err != nil {
		return fmt.Errorf("link config: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	return nil
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.Discovery.MasterServers = append([]string(nil), c.Discovery.MasterServers...)
	out.Discovery.LANBroadcast = append([]string(nil), c.Discovery.LANBroadcast...)
	return &out
}

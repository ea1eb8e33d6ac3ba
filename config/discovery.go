package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-hostdisco/pkg/types"
)

// DiscoveryConfig 发现引擎配置
type DiscoveryConfig struct {
	// EnableInternet 启用互联网发现引擎（经由主服务器）
	EnableInternet bool `json:"enable_internet"`

	// EnableLAN 启用局域网发现引擎（广播 Ping）
	EnableLAN bool `json:"enable_lan"`

	// InternetHostListTimeout 等待主服务器返回主机列表的时长
	// 默认值: 4s
	InternetHostListTimeout Duration `json:"internet_host_list_timeout"`

	// BasicHostInfoTimeout 基础信息 Ping 批次超时
	// 默认值: 3s
	BasicHostInfoTimeout Duration `json:"basic_host_info_timeout"`

	// ExtraHostInfoTimeout 扩展信息 Ping 批次超时
	// 默认值: 4s
	ExtraHostInfoTimeout Duration `json:"extra_host_info_timeout"`

	// MasterServers 订阅的主服务器，按顺序尝试
	MasterServers []string `json:"master_servers"`

	// LANBroadcast 局域网广播目标地址
	LANBroadcast []string `json:"lan_broadcast"`

	// RelaySingleHost 单主机刷新时同时经由主服务器中转 Ping
	RelaySingleHost bool `json:"relay_single_host"`

	// ProjectID 项目标识，只接受同一项目主机的 Pong
	ProjectID string `json:"project_id"`

	// TickInterval 驱动 OnTick 的时钟周期
	// 默认值: 50ms
	TickInterval Duration `json:"tick_interval"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableInternet:          true,
		EnableLAN:               true,
		InternetHostListTimeout: Duration(4 * time.Second),
		BasicHostInfoTimeout:    Duration(3 * time.Second),
		ExtraHostInfoTimeout:    Duration(4 * time.Second),
		RelaySingleHost:         true,
		TickInterval:            Duration(50 * time.Millisecond),
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if !c.EnableInternet && !c.EnableLAN {
		return errors.New("at least one network must be enabled")
	}
	if c.InternetHostListTimeout <= 0 {
		return errors.New("internet host list timeout must be positive")
	}
	if c.BasicHostInfoTimeout <= 0 {
		return errors.New("basic host info timeout must be positive")
	}
	if c.ExtraHostInfoTimeout <= 0 {
		return errors.New("extra host info timeout must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick interval must be positive")
	}
	if _, err := c.MasterServerAddresses(); err != nil {
		return err
	}
	if _, err := c.LANBroadcastAddresses(); err != nil {
		return err
	}
	return nil
}

// MasterServerAddresses 解析主服务器地址，保持配置顺序
func (c DiscoveryConfig) MasterServerAddresses() ([]types.Address, error) {
	return parseAddresses("master server", c.MasterServers)
}

// LANBroadcastAddresses 解析局域网广播地址
func (c DiscoveryConfig) LANBroadcastAddresses() ([]types.Address, error) {
	return parseAddresses("lan broadcast", c.LANBroadcast)
}

func parseAddresses(what string, raw []string) ([]types.Address, error) {
	out := make([]types.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := types.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", what, s, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

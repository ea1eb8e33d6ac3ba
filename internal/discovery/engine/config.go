package engine

import (
	"time"

	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// Config 单个网络的引擎配置
type Config struct {
	// Network 引擎负责的网络
	Network types.Network

	// InternetHostListTimeout 在 Unresponding 阶段等待主机列表的上限
	InternetHostListTimeout time.Duration

	// BasicHostInfoTimeout 基础信息 ping 批次超时
	BasicHostInfoTimeout time.Duration

	// ExtraHostInfoTimeout 扩展信息 ping 批次超时
	ExtraHostInfoTimeout time.Duration

	// MasterServers 初始订阅的主服务器（有序）
	MasterServers []types.Address

	// LANBroadcast 局域网列表刷新时额外 ping 的广播地址
	LANBroadcast []types.Address

	// RelaySingleHost 单主机刷新时经主服务器中转
	RelaySingleHost bool

	// ProjectID 随主机列表请求发送
	ProjectID string
}

// ConfigFrom 从统一配置生成指定网络的引擎配置
func ConfigFrom(cfg *config.Config, network types.Network) (Config, error) {
	d := cfg.Discovery
	out := Config{
		Network:                 network,
		InternetHostListTimeout: d.InternetHostListTimeout.Duration(),
		BasicHostInfoTimeout:    d.BasicHostInfoTimeout.Duration(),
		ExtraHostInfoTimeout:    d.ExtraHostInfoTimeout.Duration(),
		RelaySingleHost:         d.RelaySingleHost,
		ProjectID:               d.ProjectID,
	}
	switch network {
	case types.NetworkInternet:
		subs, err := d.MasterServerAddresses()
		if err != nil {
			return Config{}, err
		}
		out.MasterServers = subs
	case types.NetworkLAN:
		bcast, err := d.LANBroadcastAddresses()
		if err != nil {
			return Config{}, err
		}
		out.LANBroadcast = bcast
	}
	return out, nil
}

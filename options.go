package hostdisco

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-hostdisco/config"
)

// Option 客户端配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 基础配置，各选项在其上修改
	config *config.Config

	// hostInfo 本地作为主机时应答的信息
	hostInfo struct {
		set   bool
		basic []byte
		extra []byte
	}

	// registerer 指标注册器
	registerer prometheus.Registerer

	// userFxOptions 用户扩展的 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置替换默认配置
//
// 应放在其他选项之前，后续选项在其副本上修改。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithPreset 使用预设配置替换默认配置
func WithPreset(name string) Option {
	return func(o *options) error {
		cfg, err := ConfigByPreset(name)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithNetworks 选择启用的网络
func WithNetworks(lan, internet bool) Option {
	return func(o *options) error {
		if !lan && !internet {
			return fmt.Errorf("at least one network must be enabled")
		}
		o.config.Discovery.EnableLAN = lan
		o.config.Discovery.EnableInternet = internet
		return nil
	}
}

// WithMasterServers 设置订阅的主服务器（按顺序尝试）
func WithMasterServers(addrs ...string) Option {
	return func(o *options) error {
		o.config.Discovery.MasterServers = append([]string(nil), addrs...)
		return nil
	}
}

// WithLANBroadcast 设置局域网广播目标
func WithLANBroadcast(addrs ...string) Option {
	return func(o *options) error {
		o.config.Discovery.LANBroadcast = append([]string(nil), addrs...)
		return nil
	}
}

// WithProjectID 设置项目标识
func WithProjectID(id string) Option {
	return func(o *options) error {
		o.config.Discovery.ProjectID = id
		return nil
	}
}

// WithTimeouts 设置主机列表、基础信息、扩展信息三个阶段的超时
//
// 为 0 的参数保持原值。
func WithTimeouts(hostList, basic, extra time.Duration) Option {
	return func(o *options) error {
		if hostList < 0 || basic < 0 || extra < 0 {
			return fmt.Errorf("timeouts cannot be negative")
		}
		d := &o.config.Discovery
		if hostList > 0 {
			d.InternetHostListTimeout = config.Duration(hostList)
		}
		if basic > 0 {
			d.BasicHostInfoTimeout = config.Duration(basic)
		}
		if extra > 0 {
			d.ExtraHostInfoTimeout = config.Duration(extra)
		}
		return nil
	}
}

// WithRelaySingleHost 单主机刷新时是否经由主服务器中转
func WithRelaySingleHost(enable bool) Option {
	return func(o *options) error {
		o.config.Discovery.RelaySingleHost = enable
		return nil
	}
}

// WithListenAddr 设置 UDP ping 监听地址
func WithListenAddr(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("listen address cannot be empty")
		}
		o.config.Ping.ListenAddr = addr
		return nil
	}
}

// WithHostInfo 作为主机应答 ping，basic/extra 为应答内容
func WithHostInfo(basic, extra []byte) Option {
	return func(o *options) error {
		o.config.Ping.Respond = true
		o.hostInfo.set = true
		o.hostInfo.basic = basic
		o.hostInfo.extra = extra
		return nil
	}
}

// WithMaxHosts 设置每个网络缓存的主机记录上限
func WithMaxHosts(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max hosts must be positive")
		}
		o.config.Store.MaxHosts = n
		return nil
	}
}

// WithMetrics 启用或关闭指标
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enable
		return nil
	}
}

// WithMetricsRegisterer 指定指标注册器，同时启用指标
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = true
		o.registerer = reg
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

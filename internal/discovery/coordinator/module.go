package coordinator

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/internal/core/link"
	"github.com/dep2p/go-hostdisco/internal/core/ping"
	"github.com/dep2p/go-hostdisco/internal/discovery/engine"
	"github.com/dep2p/go-hostdisco/internal/discovery/loop"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Loop      *loop.Loop
	Pinger    *ping.Coordinator
	Transport *link.Transport `optional:"true"`

	// Registerer 指标注册器，未提供时使用 prometheus 默认注册器
	Registerer prometheus.Registerer `optional:"true"`
}

// ============================================================================
//                              构造函数
// ============================================================================

// ProvideCoordinator 从 Fx 参数创建协调器
func ProvideCoordinator(input ModuleInput) (*Coordinator, error) {
	cfg := input.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	var metrics *engine.Metrics
	if cfg.Metrics.Enabled {
		reg := input.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := engine.NewMetrics(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, err
		}
		metrics = m
	}

	deps := Deps{
		Loop:    input.Loop,
		Metrics: metrics,
		Sessions: func(h interfaces.PingHandler) interfaces.PingCoordinator {
			return input.Pinger.Session(h)
		},
	}
	if input.Transport != nil {
		tr := input.Transport
		deps.Link = func(h interfaces.TransportHandler) interfaces.Transport {
			tr.SetHandler(h)
			return tr
		}
	}
	return New(cfg, deps)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("discovery_coordinator",
		fx.Provide(ProvideCoordinator),
		fx.Invoke(wireResponder, registerLifecycle),
	)
}

type responderInput struct {
	fx.In

	Coordinator *Coordinator
	Responder   *ping.Responder `optional:"true"`
}

// wireResponder 让本地应答器以缓存内容代答中继刷新
func wireResponder(input responderInput) {
	if input.Responder != nil {
		input.Responder.SetRelayLookup(input.Coordinator.LookupBasic)
	}
}

type lifecycleInput struct {
	fx.In

	LC          fx.Lifecycle
	Coordinator *Coordinator
}

// registerLifecycle 的 OnStop 依赖事件循环仍在运行，
// 因此本模块必须排在 loop.Module 之后装配。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return input.Coordinator.Close(ctx)
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "discovery_coordinator"
	// Description 模块描述
	Description = "按网络组装发现引擎并串行驱动"
)

package loop

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-hostdisco/config"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// ProvideLoop 提供事件循环
func ProvideLoop(input ModuleInput) *Loop {
	interval := config.DefaultDiscoveryConfig().TickInterval.Duration()
	if input.Config != nil {
		interval = input.Config.Discovery.TickInterval.Duration()
	}
	return New(interval)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("discovery_loop",
		fx.Provide(ProvideLoop),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, l *Loop) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return l.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return l.Stop()
		},
	})
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "discovery_loop"
	// Description 模块描述
	Description = "发现引擎单线程事件循环"
)

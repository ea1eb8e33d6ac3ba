package ping

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-hostdisco/config"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 统一配置（可选）
	Config *config.Config `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Coordinator UDP ping 协调器，各网络的引擎通过 Session 共用
	Coordinator *Coordinator

	// Responder 主机应答器；ping.respond 关闭时不挂到协调器上
	Responder *Responder
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := ConfigFromUnified(input.Config)
	responder := NewResponder(cfg.ProjectID)

	var opts []Option
	if input.Config != nil && input.Config.Ping.Respond {
		opts = append(opts, WithResponder(responder))
	}
	return ModuleOutput{
		Coordinator: New(cfg, opts...),
		Responder:   responder,
	}
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("ping",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC          fx.Lifecycle
	Coordinator *Coordinator
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Coordinator.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Coordinator.Stop()
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
	Name = "ping"
	// Description 模块描述
	Description = "UDP ping 协调器与主机应答器"
)

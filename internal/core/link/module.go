package link

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

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Transport 主服务器链路
	Transport *Transport
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	return ModuleOutput{Transport: NewTransport(ConfigFromUnified(input.Config))}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("link",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC        fx.Lifecycle
	Transport *Transport
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Transport.Close()
		},
	})
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "link"
	// Description 模块描述
	Description = "主服务器 TCP 链路，长度前缀分帧"
)

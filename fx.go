package hostdisco

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-hostdisco/internal/core/link"
	"github.com/dep2p/go-hostdisco/internal/core/ping"
	"github.com/dep2p/go-hostdisco/internal/discovery/coordinator"
	"github.com/dep2p/go-hostdisco/internal/discovery/loop"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
)

var fxLogger = log.Logger("hostdisco/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖，停止时逆序）：
//  1. Core Layer: Ping → Link（仅互联网）
//  2. Discovery Layer: Loop → Coordinator
func buildFxApp(o *options, c *Client) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心层
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, ping.Module())
	if o.config.Discovery.EnableInternet {
		modules = append(modules, link.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 发现层（coordinator 的 OnStop 需要 loop 仍在运行，必须排在 loop 之后）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		loop.Module(),
		coordinator.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Client 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectClientComponents(o, c)))

	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	fxLogger.Debug("Fx 应用已装配",
		"lan", o.config.Discovery.EnableLAN,
		"internet", o.config.Discovery.EnableInternet,
		"respond", o.config.Ping.Respond)
	return fx.New(modules...), nil
}

// clientInjectParams Client 组件注入参数
type clientInjectParams struct {
	fx.In

	Coordinator *coordinator.Coordinator
	Pinger      *ping.Coordinator
	Responder   *ping.Responder
}

// injectClientComponents 创建 Client 组件注入函数
func injectClientComponents(o *options, c *Client) interface{} {
	return func(p clientInjectParams) {
		c.coord = p.Coordinator
		c.pinger = p.Pinger
		c.responder = p.Responder
		if o.hostInfo.set {
			p.Responder.SetHostInfo(o.hostInfo.basic, o.hostInfo.extra)
		}
	}
}

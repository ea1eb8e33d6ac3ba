package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/internal/discovery/engine"
	"github.com/dep2p/go-hostdisco/internal/discovery/hoststore"
	"github.com/dep2p/go-hostdisco/internal/discovery/loop"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("discovery/coordinator")

// eventBuffer Events 通道容量
const eventBuffer = 64

// SessionFactory 为引擎创建绑定到 handler 的 ping 会话
type SessionFactory func(h interfaces.PingHandler) interfaces.PingCoordinator

// LinkFactory 把链路回调绑定到 handler 并返回链路层
type LinkFactory func(h interfaces.TransportHandler) interfaces.Transport

// Deps 协调器依赖
type Deps struct {
	// Loop 事件循环（必需）
	Loop *loop.Loop

	// Sessions ping 会话工厂（必需）
	Sessions SessionFactory

	// Link 链路工厂；为 nil 时互联网引擎无法连接主服务器
	Link LinkFactory

	// Metrics 引擎指标（可选）
	Metrics *engine.Metrics

	// Clock 引擎时钟（可选）
	Clock clock.Clock
}

// ============================================================================
//                              Coordinator 实现
// ============================================================================

// Coordinator 组装并驱动各网络的发现引擎
type Coordinator struct {
	loop    *loop.Loop
	engines map[types.Network]*engine.Engine
	order   []types.Network

	// 以下字段只在事件循环上访问
	listeners []interfaces.DiscoveryListener
	events    chan types.Event
	closed    bool

	closeOnce sync.Once
}

// New 按配置创建协调器
func New(cfg *config.Config, deps Deps) (*Coordinator, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if deps.Loop == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("%w: loop and ping sessions are required", ErrInvalidConfig)
	}

	c := &Coordinator{
		loop:    deps.Loop,
		engines: make(map[types.Network]*engine.Engine),
		events:  make(chan types.Event, eventBuffer),
	}

	var networks []types.Network
	if cfg.Discovery.EnableLAN {
		networks = append(networks, types.NetworkLAN)
	}
	if cfg.Discovery.EnableInternet {
		networks = append(networks, types.NetworkInternet)
	}
	if len(networks) == 0 {
		return nil, ErrNoNetworks
	}

	for _, n := range networks {
		eng, err := c.buildEngine(cfg, n, deps)
		if err != nil {
			return nil, fmt.Errorf("%s engine: %w", n, err)
		}
		c.engines[n] = eng
		c.order = append(c.order, n)
		deps.Loop.OnTick(eng.OnTick)
	}

	logger.Info("发现协调器已创建", "networks", c.order)
	return c, nil
}

func (c *Coordinator) buildEngine(cfg *config.Config, n types.Network, deps Deps) (*engine.Engine, error) {
	ecfg, err := engine.ConfigFrom(cfg, n)
	if err != nil {
		return nil, err
	}

	store, err := hoststore.New(n, cfg.Store.MaxHosts, func(addr types.Address) {
		logger.Debug("主机记录因容量被淘汰", "network", n, "addr", addr)
	})
	if err != nil {
		return nil, err
	}

	pingAdapter := loop.NewPingHandler(deps.Loop)
	session := deps.Sessions(pingAdapter)

	var transport interfaces.Transport
	var linkAdapter *loop.TransportHandler
	if n == types.NetworkInternet && deps.Link != nil {
		linkAdapter = loop.NewTransportHandler(deps.Loop)
		transport = deps.Link(linkAdapter)
	}

	opts := []engine.Option{engine.WithMetrics(deps.Metrics)}
	if deps.Clock != nil {
		opts = append(opts, engine.WithClock(deps.Clock))
	}
	eng, err := engine.New(ecfg, transport, session, store, c, opts...)
	if err != nil {
		return nil, err
	}

	pingAdapter.Bind(eng)
	if linkAdapter != nil {
		linkAdapter.Bind(eng)
	}
	return eng, nil
}

// Networks 启用的网络
func (c *Coordinator) Networks() []types.Network {
	return append([]types.Network(nil), c.order...)
}

// Events 终止事件通道
//
// 消费者跟不上时事件会被丢弃并记录警告；需要可靠送达时使用 AddListener。
func (c *Coordinator) Events() <-chan types.Event {
	return c.events
}

// AddListener 追加监听器，回调在事件循环 goroutine 上执行
func (c *Coordinator) AddListener(ctx context.Context, l interfaces.DiscoveryListener) error {
	return c.loop.Do(ctx, func() {
		c.listeners = append(c.listeners, l)
	})
}

func (c *Coordinator) engine(n types.Network) (*engine.Engine, error) {
	e, ok := c.engines[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkDisabled, n)
	}
	return e, nil
}

// run 在事件循环上执行 fn，合并循环错误与 fn 的结果
func (c *Coordinator) run(ctx context.Context, n types.Network, fn func(e *engine.Engine) error) error {
	e, err := c.engine(n)
	if err != nil {
		return err
	}
	var opErr error
	if err := c.loop.Do(ctx, func() { opErr = fn(e) }); err != nil {
		return err
	}
	return opErr
}

// ============================================================================
//                              发现操作
// ============================================================================

// RefreshHostList 刷新指定网络的主机列表
func (c *Coordinator) RefreshHostList(ctx context.Context, n types.Network, opts interfaces.RefreshOptions) error {
	return c.run(ctx, n, func(e *engine.Engine) error { return e.RefreshAll(opts) })
}

// DiscoverHostList 允许发现新主机的列表刷新，不收集扩展信息
func (c *Coordinator) DiscoverHostList(ctx context.Context, n types.Network, removeStale bool) error {
	return c.RefreshHostList(ctx, n, interfaces.RefreshOptions{
		AllowDiscovery:   true,
		RemoveStaleHosts: removeStale,
	})
}

// RefreshHost 刷新单个主机
func (c *Coordinator) RefreshHost(ctx context.Context, n types.Network, addr types.Address, opts interfaces.RefreshOptions) error {
	return c.run(ctx, n, func(e *engine.Engine) error { return e.SingleHostRefresh(addr, opts) })
}

// Cancel 取消指定网络的当前请求
func (c *Coordinator) Cancel(ctx context.Context, n types.Network) error {
	return c.run(ctx, n, func(e *engine.Engine) error {
		e.Cancel()
		return nil
	})
}

// CancelAll 取消所有网络的当前请求
func (c *Coordinator) CancelAll(ctx context.Context) error {
	return c.loop.Do(ctx, func() {
		for _, n := range c.order {
			c.engines[n].Cancel()
		}
	})
}

// Mode 指定网络的当前模式
func (c *Coordinator) Mode(ctx context.Context, n types.Network) (types.DiscoveryMode, error) {
	var mode types.DiscoveryMode
	err := c.run(ctx, n, func(e *engine.Engine) error {
		mode = e.Mode()
		return nil
	})
	return mode, err
}

// Hosts 指定网络缓存的主机记录（按地址排序）
func (c *Coordinator) Hosts(ctx context.Context, n types.Network) ([]types.HostRecord, error) {
	var out []types.HostRecord
	err := c.run(ctx, n, func(e *engine.Engine) error {
		out = e.Store().Snapshot()
		return nil
	})
	return out, err
}

// Lookup 在所有网络的缓存中查找主机，互联网优先
func (c *Coordinator) Lookup(ctx context.Context, addr types.Address) (types.HostRecord, bool) {
	var (
		rec   types.HostRecord
		found bool
	)
	_ = c.loop.Do(ctx, func() {
		for _, n := range []types.Network{types.NetworkInternet, types.NetworkLAN} {
			e, ok := c.engines[n]
			if !ok {
				continue
			}
			if r, ok := e.Store().Get(addr); ok {
				rec, found = r, true
				return
			}
		}
	})
	return rec, found
}

// ============================================================================
//                              主服务器订阅
// ============================================================================

// SubscribeToMasterServer 订阅主服务器，从下一次列表刷新起生效
func (c *Coordinator) SubscribeToMasterServer(ctx context.Context, addr types.Address) (bool, error) {
	if addr.IsEmpty() {
		return false, types.ErrInvalidAddress
	}
	var added bool
	err := c.run(ctx, types.NetworkInternet, func(e *engine.Engine) error {
		added = e.SubscribeMasterServer(addr)
		return nil
	})
	return added, err
}

// UnsubscribeFromMasterServer 取消订阅主服务器
func (c *Coordinator) UnsubscribeFromMasterServer(ctx context.Context, addr types.Address) (bool, error) {
	var removed bool
	err := c.run(ctx, types.NetworkInternet, func(e *engine.Engine) error {
		removed = e.UnsubscribeMasterServer(addr)
		return nil
	})
	return removed, err
}

// MasterServers 当前订阅的主服务器
func (c *Coordinator) MasterServers(ctx context.Context) ([]types.Address, error) {
	var out []types.Address
	err := c.run(ctx, types.NetworkInternet, func(e *engine.Engine) error {
		out = e.MasterServers()
		return nil
	})
	return out, err
}

// ============================================================================
//                              生命周期
// ============================================================================

// Close 取消所有请求并关闭 Events 通道
//
// 必须在事件循环停止之前调用。
func (c *Coordinator) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.loop.Do(ctx, func() {
			for _, n := range c.order {
				c.engines[n].Cancel()
			}
			c.closed = true
			close(c.events)
		})
		if errors.Is(err, loop.ErrNotStarted) {
			// 循环从未运行，没有并发的发布者
			c.closed = true
			close(c.events)
			err = nil
		}
	})
	return err
}

// ============================================================================
//                              事件分发
// ============================================================================

// OnHostListRefreshed 实现 DiscoveryListener
func (c *Coordinator) OnHostListRefreshed(ev types.HostListRefreshed) {
	for _, l := range c.listeners {
		l.OnHostListRefreshed(ev)
	}
	c.publish(ev)
}

// OnSingleHostRefreshed 实现 DiscoveryListener
func (c *Coordinator) OnSingleHostRefreshed(ev types.SingleHostRefreshed) {
	for _, l := range c.listeners {
		l.OnSingleHostRefreshed(ev)
	}
	c.publish(ev)
}

// OnRefreshCancelledOrFailed 实现 DiscoveryListener
func (c *Coordinator) OnRefreshCancelledOrFailed(ev types.RefreshCancelledOrFailed) {
	for _, l := range c.listeners {
		l.OnRefreshCancelledOrFailed(ev)
	}
	c.publish(ev)
}

func (c *Coordinator) publish(ev types.Event) {
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		logger.Warn("事件通道已满，丢弃终止事件", "network", ev.EventNetwork(), "type", fmt.Sprintf("%T", ev))
	}
}

// 确保实现接口
var _ interfaces.DiscoveryListener = (*Coordinator)(nil)

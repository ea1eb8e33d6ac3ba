package hostdisco

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/internal/core/ping"
	"github.com/dep2p/go-hostdisco/internal/discovery/coordinator"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("hostdisco")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "hostdisco " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// stopTimeout 关闭时等待各模块停止的上限
const stopTimeout = 10 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Client
// ════════════════════════════════════════════════════════════════════════════

// Client 主机发现客户端
//
// 所有操作都是异步的：调用立即返回，结果以终止事件的形式从 Events 通道
// 或 AddListener 注册的监听器送达。
type Client struct {
	config *config.Config
	app    *fx.App

	// 由 Fx 注入
	coord     *coordinator.Coordinator
	pinger    *ping.Coordinator
	responder *ping.Responder

	mu      sync.RWMutex
	started bool
	closed  bool
}

// New 创建客户端但不启动
//
// 示例：
//
//	client, err := hostdisco.New(ctx,
//	    hostdisco.WithPreset(hostdisco.PresetNameLAN),
//	    hostdisco.WithLANBroadcast("192.168.1.255:27015"),
//	)
func New(_ context.Context, opts ...Option) (*Client, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Client{config: o.config}
	app, err := buildFxApp(o, c)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	c.app = app
	return c, nil
}

// Start 快捷启动函数，等价于 New() + Client.Start()
func Start(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start client: %w", err)
	}
	return c, nil
}

// Start 启动客户端（打开 UDP 套接字、启动事件循环）
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	if err := c.app.Start(ctx); err != nil {
		logger.Error("客户端启动失败", "error", err)
		return err
	}
	c.started = true
	logger.Info("客户端已启动", "addr", c.pinger.LocalAddr(), "networks", c.coord.Networks())
	return nil
}

// Close 取消所有请求并停止客户端，Events 通道随之关闭
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if !c.started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.app.Stop(ctx); err != nil {
		logger.Warn("客户端停止时出错", "error", err)
		return err
	}
	logger.Info("客户端已关闭")
	return nil
}

// ready 检查客户端可用，返回协调器
func (c *Client) ready() (*coordinator.Coordinator, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if !c.started {
		return nil, ErrNotStarted
	}
	return c.coord, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              信息
// ════════════════════════════════════════════════════════════════════════════

// Config 客户端使用的配置副本
func (c *Client) Config() *config.Config {
	return c.config.Clone()
}

// LocalAddr UDP ping 套接字的本地地址，未启动时为空
func (c *Client) LocalAddr() types.Address {
	if c.pinger == nil {
		return types.Address{}
	}
	return c.pinger.LocalAddr()
}

// Networks 启用的网络
func (c *Client) Networks() []types.Network {
	if c.coord == nil {
		return nil
	}
	return c.coord.Networks()
}

// Events 终止事件通道，Close 后关闭
func (c *Client) Events() <-chan types.Event {
	if c.coord == nil {
		return nil
	}
	return c.coord.Events()
}

// AddListener 注册事件监听器，回调在事件循环 goroutine 上执行，不得阻塞
func (c *Client) AddListener(ctx context.Context, l interfaces.DiscoveryListener) error {
	coord, err := c.ready()
	if err != nil {
		return err
	}
	return coord.AddListener(ctx, l)
}

// SetHostInfo 更新本地作为主机时应答的信息
//
// 只有启用了应答（WithHostInfo 或 ping.respond）时才会被对端看到。
func (c *Client) SetHostInfo(basic, extra []byte) {
	if c.responder != nil {
		c.responder.SetHostInfo(basic, extra)
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              刷新操作
// ════════════════════════════════════════════════════════════════════════════

// RefreshHostList 刷新指定网络的主机列表
func (c *Client) RefreshHostList(ctx context.Context, n types.Network, opts interfaces.RefreshOptions) error {
	coord, err := c.ready()
	if err != nil {
		return err
	}
	return coord.RefreshHostList(ctx, n, opts)
}

// DiscoverHostList 发现新主机（允许发现，不收集扩展信息）
func (c *Client) DiscoverHostList(ctx context.Context, n types.Network, removeStale bool) error {
	coord, err := c.ready()
	if err != nil {
		return err
	}
	return coord.DiscoverHostList(ctx, n, removeStale)
}

// RefreshHost 刷新单个主机
func (c *Client) RefreshHost(ctx context.Context, n types.Network, addr types.Address, opts interfaces.RefreshOptions) error {
	coord, err := c.ready()
	if err != nil {
		return err
	}
	return coord.RefreshHost(ctx, n, addr, opts)
}

// CancelHostRequests 取消指定网络的当前请求，不派发事件
func (c *Client) CancelHostRequests(ctx context.Context, n types.Network) error {
	coord, err := c.ready()
	if err != nil {
		return err
	}
	return coord.Cancel(ctx, n)
}

// Mode 指定网络的当前模式
func (c *Client) Mode(ctx context.Context, n types.Network) (types.DiscoveryMode, error) {
	coord, err := c.ready()
	if err != nil {
		return types.ModeIdle, err
	}
	return coord.Mode(ctx, n)
}

// Hosts 指定网络缓存的主机记录
func (c *Client) Hosts(ctx context.Context, n types.Network) ([]types.HostRecord, error) {
	coord, err := c.ready()
	if err != nil {
		return nil, err
	}
	return coord.Hosts(ctx, n)
}

// ════════════════════════════════════════════════════════════════════════════
//                              主服务器订阅
// ════════════════════════════════════════════════════════════════════════════

// SubscribeToMasterServer 订阅主服务器，从下一次列表刷新起生效
func (c *Client) SubscribeToMasterServer(ctx context.Context, addr types.Address) (bool, error) {
	coord, err := c.ready()
	if err != nil {
		return false, err
	}
	return coord.SubscribeToMasterServer(ctx, addr)
}

// UnsubscribeFromMasterServer 取消订阅主服务器
func (c *Client) UnsubscribeFromMasterServer(ctx context.Context, addr types.Address) (bool, error) {
	coord, err := c.ready()
	if err != nil {
		return false, err
	}
	return coord.UnsubscribeFromMasterServer(ctx, addr)
}

// MasterServers 当前订阅的主服务器
func (c *Client) MasterServers(ctx context.Context) ([]types.Address, error) {
	coord, err := c.ready()
	if err != nil {
		return nil, err
	}
	return coord.MasterServers(ctx)
}

// Coordinator 内部协调器，供 CLI serve 模式构建主服务器
func (c *Client) Coordinator() *coordinator.Coordinator {
	return c.coord
}

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-hostdisco/internal/discovery/hoststore"
	"github.com/dep2p/go-hostdisco/internal/discovery/masterserver"
	"github.com/dep2p/go-hostdisco/internal/discovery/request"
	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("discovery/engine")

// ============================================================================
//                              Engine 结构
// ============================================================================

// batch 一个未完成的 ping 批次
type batch struct {
	// gen 发起时的请求代号
	gen  uint64
	kind types.PingKind

	// targets 本批次 ping 的地址；waiting 是其中尚未响应的
	targets map[types.Address]struct{}
	waiting map[types.Address]struct{}

	// openEnded 接受 targets 之外地址的响应（局域网广播），只在超时时结束
	openEnded bool
}

// Engine 主机发现引擎
type Engine struct {
	cfg       Config
	transport interfaces.Transport
	pinger    interfaces.PingCoordinator
	store     *hoststore.Store
	listener  interfaces.DiscoveryListener
	connector *masterserver.Connector
	metrics   *Metrics
	clock     clock.Clock

	subs []types.Address

	mode    types.DiscoveryMode
	req     *request.Request
	gen     uint64
	batches map[interfaces.BatchID]*batch
	elapsed time.Duration

	// probed 当前请求是否向主机发出过 ping
	probed bool

	// followUp 单主机请求是否已因中转应答发出跟进 ping
	followUp bool
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New 创建发现引擎
//
// transport 只有互联网引擎需要，局域网引擎可以传 nil。listener 可以为 nil。
func New(cfg Config, transport interfaces.Transport, pinger interfaces.PingCoordinator,
	store *hoststore.Store, listener interfaces.DiscoveryListener, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if pinger == nil {
		return nil, ErrNilPinger
	}
	if store.Network() != cfg.Network {
		return nil, fmt.Errorf("%w: store=%s engine=%s", ErrNetworkMismatch, store.Network(), cfg.Network)
	}
	if listener == nil {
		listener = interfaces.EventFunc(func(types.Event) {})
	}

	e := &Engine{
		cfg:       cfg,
		transport: transport,
		pinger:    pinger,
		store:     store,
		listener:  listener,
		clock:     clock.New(),
		subs:      append([]types.Address(nil), cfg.MasterServers...),
		mode:      types.ModeIdle,
		batches:   make(map[interfaces.BatchID]*batch),
	}
	for _, opt := range opts {
		opt(e)
	}
	if transport != nil {
		e.connector = masterserver.New(transport)
		e.connector.OnAttempt = func(types.Address) { e.metrics.masterAttempt(e.cfg.Network) }
	}
	return e, nil
}

// Network 引擎负责的网络
func (e *Engine) Network() types.Network { return e.cfg.Network }

// Mode 当前发现模式
func (e *Engine) Mode() types.DiscoveryMode { return e.mode }

// Stage 活动请求的阶段；空闲时返回 false
func (e *Engine) Stage() (types.DiscoveryStage, bool) {
	if e.req == nil {
		return 0, false
	}
	return e.req.Stage(), true
}

// Store 主机记录缓存
func (e *Engine) Store() *hoststore.Store { return e.store }

// ============================================================================
//                              主服务器订阅
// ============================================================================

// SubscribeMasterServer 追加订阅主服务器，从下一次 RefreshAll 起生效
func (e *Engine) SubscribeMasterServer(addr types.Address) bool {
	for _, a := range e.subs {
		if a == addr {
			return false
		}
	}
	e.subs = append(e.subs, addr)
	return true
}

// UnsubscribeMasterServer 取消订阅主服务器
func (e *Engine) UnsubscribeMasterServer(addr types.Address) bool {
	for i, a := range e.subs {
		if a == addr {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// MasterServers 当前订阅列表（有序）
func (e *Engine) MasterServers() []types.Address {
	return append([]types.Address(nil), e.subs...)
}

// ============================================================================
//                              调用方操作
// ============================================================================

// RefreshAll 刷新整个主机列表
//
// 只能在 Idle 时调用，否则返回 ErrRefreshInProgress 且不修改任何状态。
// 结果通过 OnHostListRefreshed 异步送达；如果没有任何可做的工作，
// 事件可能在本调用返回前就已派发。
func (e *Engine) RefreshAll(opts interfaces.RefreshOptions) error {
	if e.mode != types.ModeIdle {
		return ErrRefreshInProgress
	}
	e.clearDangling()

	e.gen++
	e.mode = types.ModeRefreshList
	e.req = request.NewMulti(e.store.Addresses(), opts, e.clock.Now())
	e.elapsed = 0
	e.metrics.started(e.cfg.Network, e.mode)

	logger.Debug("开始刷新主机列表",
		"network", e.cfg.Network,
		"allowDiscovery", opts.AllowDiscovery,
		"extra", opts.GetExtraHostInfo,
		"removeStale", opts.RemoveStaleHosts)

	if e.cfg.Network == types.NetworkLAN {
		e.startLANProbe()
		return nil
	}

	if e.connector == nil {
		logger.Warn("互联网引擎没有链路层，无法连接主服务器", "network", e.cfg.Network)
		e.flush()
		return nil
	}
	e.connector.Reset(e.subs)
	e.tryNextMasterServer()
	return nil
}

// SingleHostRefresh 刷新单个主机
//
// 未知地址且不允许发现时，请求立即以 notFound 结束，不发出任何 ping。
func (e *Engine) SingleHostRefresh(addr types.Address, opts interfaces.RefreshOptions) error {
	if e.mode != types.ModeIdle {
		return ErrRefreshInProgress
	}
	if addr.IsEmpty() {
		return fmt.Errorf("%w: empty refresh target", types.ErrInvalidAddress)
	}
	e.clearDangling()

	known := e.store.Has(addr)
	e.gen++
	e.mode = types.ModeRefresh
	e.req = request.NewSingle(addr, known, opts, e.clock.Now())
	e.elapsed = 0
	e.metrics.started(e.cfg.Network, e.mode)

	if !known && !opts.AllowDiscovery {
		logger.Debug("未知主机且不允许发现，直接结束", "network", e.cfg.Network, "addr", addr)
		e.flush()
		return nil
	}

	payload := wire.RefreshTarget{Address: addr}.Marshal()
	started := e.startBatch(types.PingRefresh, []types.Address{addr}, payload, e.cfg.BasicHostInfoTimeout, false)
	if e.relayEnabled() {
		if e.startBatch(types.PingMasterServerRefreshHost, e.subs, payload, e.cfg.BasicHostInfoTimeout, false) {
			started = true
		}
	}
	if !started {
		e.flush()
	}
	return nil
}

// Cancel 取消当前请求
//
// 丢弃请求、断开主服务器链路、取消未完成的 ping 批次，不派发任何事件。
// 空闲时调用是无操作。
func (e *Engine) Cancel() {
	if e.mode == types.ModeIdle {
		return
	}
	logger.Debug("取消发现请求", "network", e.cfg.Network, "mode", e.mode)
	e.teardown()
	e.metrics.cancelled(e.cfg.Network)
}

// OnTick 推进整体操作计时器
//
// 列表刷新在 Unresponding 阶段停留超过 InternetHostListTimeout 时，
// 按主服务器耗尽处理：中止连接并 flush 已有数据。
func (e *Engine) OnTick(dt time.Duration) {
	if e.mode == types.ModeIdle || e.req == nil {
		return
	}
	e.elapsed += dt
	if e.mode == types.ModeRefreshList &&
		e.req.Stage() == types.StageUnresponding &&
		e.elapsed > e.cfg.InternetHostListTimeout {
		logger.Info("等待主机列表超时", "network", e.cfg.Network, "elapsed", e.elapsed)
		e.flush()
	}
}

// ============================================================================
//                              内部流程
// ============================================================================

func (e *Engine) relayEnabled() bool {
	return e.cfg.Network == types.NetworkInternet && e.cfg.RelaySingleHost && len(e.subs) > 0
}

// startLANProbe 局域网列表刷新：直接 ping 已知主机与广播地址
func (e *Engine) startLANProbe() {
	_ = e.req.Advance(types.StageBasicHostInfo)

	seen := make(map[types.Address]struct{})
	var targets []types.Address
	for _, a := range append(e.req.Expected(), e.cfg.LANBroadcast...) {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		targets = append(targets, a)
	}
	if len(targets) == 0 || !e.startBatch(types.PingRefreshList, targets, nil, e.cfg.BasicHostInfoTimeout, true) {
		e.flush()
	}
}

// tryNextMasterServer 尝试下一个主服务器，耗尽时 flush
func (e *Engine) tryNextMasterServer() {
	err := e.connector.TryNext()
	if err == nil {
		return
	}
	if errors.Is(err, masterserver.ErrExhausted) {
		logger.Info("所有主服务器均不可用", "network", e.cfg.Network, "subscriptions", len(e.subs))
	} else {
		logger.Warn("无法尝试下一个主服务器", "network", e.cfg.Network, "err", err)
	}
	e.flush()
}

// startBatch 发起 ping 批次并登记，失败返回 false
func (e *Engine) startBatch(kind types.PingKind, addrs []types.Address, payload []byte, timeout time.Duration, openEnded bool) bool {
	if len(addrs) == 0 {
		return false
	}
	id, err := e.pinger.PingAddresses(addrs, kind, payload, timeout)
	if err != nil {
		logger.Warn("发起 ping 失败", "network", e.cfg.Network, "kind", kind, "count", len(addrs), "err", err)
		return false
	}
	b := &batch{
		gen:       e.gen,
		kind:      kind,
		targets:   make(map[types.Address]struct{}, len(addrs)),
		waiting:   make(map[types.Address]struct{}, len(addrs)),
		openEnded: openEnded,
	}
	for _, a := range addrs {
		b.targets[a] = struct{}{}
		b.waiting[a] = struct{}{}
	}
	e.batches[id] = b
	if kind != types.PingMasterServerRefreshHost {
		e.probed = true
	}
	logger.Debug("发起 ping 批次", "network", e.cfg.Network, "batch", id, "kind", kind, "count", len(addrs))
	return true
}

// advance 在所有批次结束后推进请求：进入扩展信息阶段或 flush
func (e *Engine) advance() {
	if e.req == nil || len(e.batches) > 0 {
		return
	}
	if e.req.Stage() < types.StageExtraHostInfo && e.req.Options().GetExtraHostInfo {
		if targets := e.req.ExtraInfoTargets(); len(targets) > 0 {
			e.beginExtraHostInfo(targets)
			return
		}
	}
	e.flush()
}

// beginExtraHostInfo 对已有基础信息的主机发起扩展信息 ping
func (e *Engine) beginExtraHostInfo(targets []types.Address) {
	_ = e.req.Advance(types.StageExtraHostInfo)
	logger.Debug("开始收集扩展信息", "network", e.cfg.Network, "count", len(targets))
	if !e.startBatch(types.PingExtraHostInfo, targets, nil, e.cfg.ExtraHostInfoTimeout, false) {
		e.flush()
	}
}

// dropBatches 注销所有批次后再通知协调器取消
//
// 先整体摘除再回调，协调器同步回调 OnPingCancelled 时不会碰到正在遍历的集合。
func (e *Engine) dropBatches() {
	if len(e.batches) == 0 {
		return
	}
	ids := make([]interfaces.BatchID, 0, len(e.batches))
	for id := range e.batches {
		ids = append(ids, id)
	}
	e.batches = make(map[interfaces.BatchID]*batch)
	for _, id := range ids {
		e.pinger.CancelBatch(id)
	}
}

// clearDangling 开始新请求前清理上一请求可能遗留的状态
func (e *Engine) clearDangling() {
	if e.connector != nil {
		e.connector.Abort()
	}
	e.dropBatches()
	e.probed = false
	e.followUp = false
}

// teardown 结束当前请求：断开主服务器、取消批次、回到 Idle
func (e *Engine) teardown() {
	if e.connector != nil {
		e.connector.Abort()
	}
	e.dropBatches()
	e.req = nil
	e.mode = types.ModeIdle
	e.gen++
	e.elapsed = 0
	e.probed = false
	e.followUp = false
}

// 确保实现接口
var _ interfaces.HostDiscovery = (*Engine)(nil)

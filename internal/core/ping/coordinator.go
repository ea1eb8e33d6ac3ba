package ping

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("core/ping")

// maxDatagramSize 接收缓冲区大小
const maxDatagramSize = 64 * 1024

// ============================================================================
//                              pending 未完成批次
// ============================================================================

type pending struct {
	id      interfaces.BatchID
	owner   *Session
	kind    types.PingKind
	payload []byte
	nonce   uuid.UUID

	// targets 保持调用方给出的顺序
	targets  []types.Address
	waiting  map[types.Address]struct{}
	answered map[types.Address]struct{}

	// sends 第 i 次发送的时间，下标即 Attempt
	sends []time.Time
	timer *clock.Timer
}

// lastSent 最近一次发送时间，未发送时为零值
func (p *pending) lastSent() time.Time {
	if len(p.sends) == 0 {
		return time.Time{}
	}
	return p.sends[len(p.sends)-1]
}

// sentAt pong 回显的发送序号对应的发送时间
//
// 序号越界（未回显或伪造）时退回最近一次发送。
func (p *pending) sentAt(attempt uint32) time.Time {
	if int(attempt) < len(p.sends) {
		return p.sends[attempt]
	}
	return p.lastSent()
}

// unresponded 未响应的地址（按 targets 顺序）
func (p *pending) unresponded() []types.Address {
	out := make([]types.Address, 0, len(p.waiting))
	for _, a := range p.targets {
		if _, ok := p.waiting[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ============================================================================
//                              Coordinator 实现
// ============================================================================

// Coordinator UDP ping 协调器
//
// 一个 Coordinator 持有一个 UDP 套接字。每个发现引擎通过 Session 获得
// 自己的 PingCoordinator 视图，批次回调只送达发起它的 Session。
type Coordinator struct {
	cfg     Config
	clock   clock.Clock
	limiter *rate.Limiter

	mu        sync.Mutex
	conn      *net.UDPConn
	responder *Responder
	batches   map[interfaces.BatchID]*pending
	byNonce   map[uuid.UUID]interfaces.BatchID
	nextID    interfaces.BatchID

	disp *dispatcher
	kick chan struct{}

	running int32
	closed  int32
	ctx     context.Context
	cancel  context.CancelFunc
	eg      *errgroup.Group
}

// Option 协调器选项
type Option func(*Coordinator)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) { co.clock = c }
}

// WithResponder 设置主机应答器
func WithResponder(r *Responder) Option {
	return func(co *Coordinator) { co.responder = r }
}

// New 创建协调器
func New(cfg Config, opts ...Option) *Coordinator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	c := &Coordinator{
		cfg:     cfg,
		clock:   clock.New(),
		batches: make(map[interfaces.BatchID]*pending),
		byNonce: make(map[uuid.UUID]interfaces.BatchID),
		disp:    newDispatcher(),
		kick:    make(chan struct{}, 1),
	}
	if cfg.MaxRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRate), cfg.MaxRate)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetResponder 设置主机应答器，nil 表示不应答 ping
func (c *Coordinator) SetResponder(r *Responder) {
	c.mu.Lock()
	c.responder = r
	c.mu.Unlock()
}

// LocalAddr 本地监听地址，未启动时为空
func (c *Coordinator) LocalAddr() types.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return types.Address{}
	}
	return types.AddressFromNet(c.conn.LocalAddr())
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 打开 UDP 套接字并启动收发循环
func (c *Coordinator) Start(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return nil
	}

	laddr, err := net.ResolveUDPAddr("udp", c.cfg.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&c.running, 0)
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		atomic.StoreInt32(&c.running, 0)
		return err
	}

	// fx OnStart 的 ctx 在返回后会被取消，后台循环使用独立的 context
	c.ctx, c.cancel = context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(c.ctx)
	c.eg = eg

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	eg.Go(func() error { return c.readLoop(ctx, conn) })
	eg.Go(func() error { return c.sendLoop(ctx, conn) })
	eg.Go(func() error {
		c.disp.run(ctx.Done())
		return nil
	})

	logger.Info("ping 协调器已启动", "addr", conn.LocalAddr().String(), "interval", c.cfg.Interval)
	return nil
}

// Stop 关闭套接字，未完成的批次不再回调
func (c *Coordinator) Stop() error {
	if atomic.LoadInt32(&c.running) == 0 {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.mu.Lock()
	for id, p := range c.batches {
		p.timer.Stop()
		delete(c.batches, id)
	}
	c.byNonce = make(map[uuid.UUID]interfaces.BatchID)
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	var err error
	if conn != nil {
		err = conn.Close()
	}
	if werr := c.eg.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		err = werr
	}
	logger.Info("ping 协调器已停止")
	return err
}

// ============================================================================
//                              批次管理
// ============================================================================

// Session 为 handler 创建一个 PingCoordinator 视图
func (c *Coordinator) Session(h interfaces.PingHandler) *Session {
	return &Session{c: c, handler: h}
}

func (c *Coordinator) ping(owner *Session, addrs []types.Address, kind types.PingKind, payload []byte, timeout time.Duration) (interfaces.BatchID, error) {
	if !kind.IsValid() {
		return 0, ErrInvalidKind
	}
	if timeout <= 0 {
		return 0, ErrInvalidTimeout
	}
	if atomic.LoadInt32(&c.closed) == 1 {
		return 0, ErrClosed
	}

	seen := make(map[types.Address]struct{}, len(addrs))
	targets := make([]types.Address, 0, len(addrs))
	for _, a := range addrs {
		if a.IsEmpty() {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		targets = append(targets, a)
	}
	if len(targets) == 0 {
		return 0, ErrNoAddresses
	}

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return 0, ErrNotStarted
	}
	c.nextID++
	id := c.nextID
	p := &pending{
		id:       id,
		owner:    owner,
		kind:     kind,
		payload:  append([]byte(nil), payload...),
		nonce:    uuid.New(),
		targets:  targets,
		waiting:  seen,
		answered: make(map[types.Address]struct{}),
	}
	p.timer = c.clock.AfterFunc(timeout, func() { c.expire(id) })
	c.batches[id] = p
	c.byNonce[p.nonce] = id
	c.mu.Unlock()

	logger.Debug("登记 ping 批次", "batch", id, "kind", kind, "count", len(targets), "timeout", timeout)
	c.wake()
	return id, nil
}

// cancelBatch 取消 owner 发起的批次
func (c *Coordinator) cancelBatch(owner *Session, id interfaces.BatchID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.batches[id]; !ok || p.owner != owner {
		return
	}
	p := c.removeLocked(id)
	p.timer.Stop()
	h := owner.handler
	c.disp.push(func() { h.OnPingCancelled(id) })
}

// expire 批次到期
func (c *Coordinator) expire(id interfaces.BatchID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.removeLocked(id)
	if p == nil {
		return
	}
	unresponded := p.unresponded()
	h := p.owner.handler
	logger.Debug("ping 批次超时", "batch", id, "unresponded", len(unresponded))
	c.disp.push(func() { h.OnPingBatchTimeout(id, unresponded) })
}

func (c *Coordinator) removeLocked(id interfaces.BatchID) *pending {
	p, ok := c.batches[id]
	if !ok {
		return nil
	}
	delete(c.batches, id)
	delete(c.byNonce, p.nonce)
	return p
}

// Pending 未完成批次数
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *Coordinator) wake() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// ============================================================================
//                              发送
// ============================================================================

type outgoing struct {
	to   types.Address
	data []byte
}

func (c *Coordinator) sendLoop(ctx context.Context, conn *net.UDPConn) error {
	ticker := c.clock.Ticker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		for _, o := range c.due() {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			if _, err := conn.WriteToUDPAddrPort(o.data, o.to.AddrPort); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Debug("发送 ping 失败", "to", o.to, "err", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-c.kick:
		}
	}
}

// due 收集到期需要（重）发的 ping
func (c *Coordinator) due() []outgoing {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	ids := make([]interfaces.BatchID, 0, len(c.batches))
	for id := range c.batches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []outgoing
	for _, id := range ids {
		p := c.batches[id]
		if last := p.lastSent(); !last.IsZero() && now.Sub(last) < c.cfg.Interval {
			continue
		}
		if len(p.waiting) == 0 {
			continue
		}
		data := wire.Ping{
			Nonce:     p.nonce[:],
			Kind:      p.kind,
			ProjectID: c.cfg.ProjectID,
			Attempt:   uint32(len(p.sends)),
			Payload:   p.payload,
		}.Marshal()
		for _, a := range p.unresponded() {
			out = append(out, outgoing{to: a, data: data})
		}
		p.sends = append(p.sends, now)
	}
	return out
}

// ============================================================================
//                              接收
// ============================================================================

func (c *Coordinator) readLoop(ctx context.Context, conn *net.UDPConn) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Debug("读取数据报失败", "err", err)
			continue
		}
		c.handleDatagram(conn, types.AddressFrom(from), buf[:n])
	}
}

func (c *Coordinator) handleDatagram(conn *net.UDPConn, from types.Address, data []byte) {
	dg, err := wire.UnmarshalDatagram(data)
	if err != nil {
		logger.Debug("丢弃无法解析的数据报", "from", from, "err", err)
		return
	}
	switch {
	case dg.Ping != nil:
		c.respond(conn, from, *dg.Ping)
	case dg.Pong != nil:
		c.handlePong(from, *dg.Pong)
	}
}

func (c *Coordinator) respond(conn *net.UDPConn, from types.Address, p wire.Ping) {
	c.mu.Lock()
	r := c.responder
	c.mu.Unlock()
	if r == nil {
		return
	}
	pong, ok := r.Respond(from, p)
	if !ok {
		return
	}
	if _, err := conn.WriteToUDPAddrPort(pong.Marshal(), from.AddrPort); err != nil {
		logger.Debug("发送 pong 失败", "to", from, "err", err)
	}
}

// handlePong 匹配 pong 到批次
//
// 中转应答（MasterServerRefreshHost）来自主服务器，不做项目过滤。
func (c *Coordinator) handlePong(from types.Address, pong wire.Pong) {
	nonce, err := uuid.FromBytes(pong.Nonce)
	if err != nil {
		return
	}
	if pong.Kind != types.PingMasterServerRefreshHost && pong.ProjectID != c.cfg.ProjectID {
		logger.Debug("丢弃其他项目的 pong", "from", from, "project", pong.ProjectID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.byNonce[nonce]
	if !ok {
		return
	}
	p := c.batches[id]
	if pong.Kind != p.kind {
		return
	}
	if _, dup := p.answered[from]; dup {
		return
	}
	p.answered[from] = struct{}{}
	delete(p.waiting, from)

	// 按 pong 回显的发送序号计时，重发不会缩短测得的往返时间
	rtt := c.clock.Now().Sub(p.sentAt(pong.Attempt))

	var payload []byte
	switch p.kind {
	case types.PingExtraHostInfo:
		payload = pong.ExtraInfo
	case types.PingMasterServerRefreshHost:
		payload = pong.Payload
	default:
		payload = pong.BasicInfo
	}
	h := p.owner.handler
	c.disp.push(func() { h.OnPong(id, from, rtt, payload) })
}

// ============================================================================
//                              Session
// ============================================================================

// Session 绑定到单个 PingHandler 的协调器视图
type Session struct {
	c       *Coordinator
	handler interfaces.PingHandler
}

// PingAddresses 实现 PingCoordinator
func (s *Session) PingAddresses(addrs []types.Address, kind types.PingKind, payload []byte, timeout time.Duration) (interfaces.BatchID, error) {
	return s.c.ping(s, addrs, kind, payload, timeout)
}

// CancelBatch 实现 PingCoordinator
//
// 只能取消本 Session 发起的批次。
func (s *Session) CancelBatch(id interfaces.BatchID) {
	s.c.cancelBatch(s, id)
}

// 确保实现接口
var _ interfaces.PingCoordinator = (*Session)(nil)

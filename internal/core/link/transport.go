package link

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("core/link")

// ============================================================================
//                              链路
// ============================================================================

// conn 一条已建立的链路
type conn struct {
	addr types.Address
	nc   net.Conn

	writeMu sync.Mutex

	// requested 本地主动关闭
	requested atomic.Bool
}

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 主服务器链路
type Transport struct {
	cfg    Config
	dialer net.Dialer

	handler interfaces.TransportHandler

	mu       sync.Mutex
	nextID   interfaces.AttemptID
	attempts map[interfaces.AttemptID]context.CancelFunc
	links    map[types.Address]*conn

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// 确保实现接口
var _ interfaces.Transport = (*Transport)(nil)

// NewTransport 创建链路传输层
func NewTransport(cfg Config) *Transport {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultConfig().DialTimeout
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = DefaultConfig().MaxFrameSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		cfg:      cfg,
		attempts: make(map[interfaces.AttemptID]context.CancelFunc),
		links:    make(map[types.Address]*conn),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetHandler 设置链路回调，必须在第一次 ConnectTo 之前调用
func (t *Transport) SetHandler(h interfaces.TransportHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// ConnectTo 在后台拨号，结果通过 OnConnectAccepted / OnConnectDenied 通知
func (t *Transport) ConnectTo(addr types.Address) (interfaces.AttemptID, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}
	if addr.IsEmpty() {
		return 0, types.ErrInvalidAddress
	}

	t.mu.Lock()
	if t.handler == nil {
		t.mu.Unlock()
		return 0, ErrNoHandler
	}
	t.nextID++
	id := t.nextID
	ctx, cancel := context.WithTimeout(t.ctx, t.cfg.DialTimeout)
	t.attempts[id] = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	go t.dial(ctx, id, addr)
	return id, nil
}

func (t *Transport) dial(ctx context.Context, id interfaces.AttemptID, addr types.Address) {
	defer t.wg.Done()

	nc, err := t.dialer.DialContext(ctx, "tcp", addr.String())

	t.mu.Lock()
	cancel := t.attempts[id]
	delete(t.attempts, id)
	h := t.handler
	if cancel != nil {
		cancel()
	}
	if err != nil {
		t.mu.Unlock()
		logger.Debug("连接主服务器失败", "addr", addr, "attempt", id, "err", err)
		h.OnConnectDenied(id)
		return
	}
	if t.closed.Load() {
		t.mu.Unlock()
		_ = nc.Close()
		h.OnConnectDenied(id)
		return
	}

	c := &conn{addr: addr, nc: nc}
	old := t.links[addr]
	t.links[addr] = c
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		old.requested.Store(true)
		_ = old.nc.Close()
	}

	logger.Debug("已连接主服务器", "addr", addr, "attempt", id)
	h.OnConnectAccepted(id, addr)
	go t.readLoop(c, h)
}

// readLoop 读取帧直到链路关闭，最后恰好回调一次 OnLinkClosed
func (t *Transport) readLoop(c *conn, h interfaces.TransportHandler) {
	defer t.wg.Done()

	var err error
	for {
		var msg []byte
		msg, err = ReadFrame(c.nc, t.cfg.MaxFrameSize)
		if err != nil {
			break
		}
		h.OnMessage(c.addr, msg)
	}
	_ = c.nc.Close()

	t.mu.Lock()
	if t.links[c.addr] == c {
		delete(t.links, c.addr)
	}
	t.mu.Unlock()

	reason := closeReason(c, err)
	logger.Debug("主服务器链路关闭", "addr", c.addr, "reason", reason, "err", err)
	h.OnLinkClosed(c.addr, reason)
}

func closeReason(c *conn, err error) types.LinkCloseReason {
	if c.requested.Load() {
		return types.LinkClosedRequested
	}
	if errors.Is(err, io.EOF) {
		return types.LinkClosedRemote
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.LinkClosedTimeout
	}
	return types.LinkClosedError
}

// SendMessage 发送一帧
func (t *Transport) SendMessage(addr types.Address, msg []byte) error {
	t.mu.Lock()
	c := t.links[addr]
	t.mu.Unlock()
	if c == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.nc.SetWriteDeadline(time.Now().Add(t.cfg.DialTimeout))
	return WriteFrame(c.nc, msg, t.cfg.MaxFrameSize)
}

// Disconnect 主动关闭链路，之后以 LinkClosedRequested 回调 OnLinkClosed
func (t *Transport) Disconnect(addr types.Address) error {
	t.mu.Lock()
	c := t.links[addr]
	if c != nil {
		delete(t.links, addr)
	}
	t.mu.Unlock()
	if c == nil {
		return ErrNotConnected
	}
	c.requested.Store(true)
	return c.nc.Close()
}

// Links 当前链路数
func (t *Transport) Links() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.links)
}

// Close 中止所有拨号并关闭所有链路
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.cancel()

	t.mu.Lock()
	links := make([]*conn, 0, len(t.links))
	for addr, c := range t.links {
		links = append(links, c)
		delete(t.links, addr)
	}
	t.mu.Unlock()

	var err error
	for _, c := range links {
		c.requested.Store(true)
		if cerr := c.nc.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	t.wg.Wait()
	return err
}

package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-hostdisco/pkg/lib/log"
)

var logger = log.Logger("discovery/loop")

// TickFunc 时钟节拍回调，dt 为距上一次节拍的时间
type TickFunc func(dt time.Duration)

// Loop 单 goroutine 事件循环
type Loop struct {
	clock    clock.Clock
	interval time.Duration

	mu     sync.Mutex
	queue  []func()
	ticks  []TickFunc
	signal chan struct{}

	running atomic.Bool
	closed  atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option 事件循环选项
type Option func(*Loop)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// New 创建事件循环，interval 为节拍周期
func New(interval time.Duration, opts ...Option) *Loop {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	l := &Loop{
		clock:    clock.New(),
		interval: interval,
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnTick 注册节拍回调，必须在 Start 之前调用
func (l *Loop) OnTick(fn TickFunc) {
	l.mu.Lock()
	l.ticks = append(l.ticks, fn)
	l.mu.Unlock()
}

// Start 启动事件循环
func (l *Loop) Start(_ context.Context) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	// 在启动 goroutine 之前创建 ticker，保证 mock 时钟的 Add 不会错过
	// 首个 dt 从 Start 时刻算起
	ticker := l.clock.Ticker(l.interval)
	go l.run(ctx, ticker, l.clock.Now())
	logger.Debug("事件循环已启动", "interval", l.interval)
	return nil
}

// Stop 停止事件循环，未执行的函数被丢弃
func (l *Loop) Stop() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !l.running.Load() {
		close(l.done)
		return nil
	}
	l.cancel()
	<-l.done
	logger.Debug("事件循环已停止")
	return nil
}

// Post 投递函数，不阻塞；循环已停止时返回 false
func (l *Loop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
	return true
}

// Do 投递函数并等待执行完毕
//
// 不能在循环 goroutine 内调用。
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if !l.running.Load() {
		return ErrNotStarted
	}
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context, ticker *clock.Ticker, last time.Time) {
	defer close(l.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.signal:
			l.drain(ctx)
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last)
			last = now
			l.mu.Lock()
			ticks := l.ticks
			l.mu.Unlock()
			for _, fn := range ticks {
				fn(dt)
			}
		}
	}
}

// drain 执行队列直到为空，包括执行过程中新投递的函数
func (l *Loop) drain(ctx context.Context) {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

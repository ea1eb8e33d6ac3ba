package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

func startLoop(t *testing.T, opts ...Option) *Loop {
	t.Helper()
	l := New(50*time.Millisecond, opts...)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop() })
	return l
}

func TestLoop_PostOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Do(context.Background(), func() {}))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

// TestLoop_PostFromInside 循环内部投递不会死锁
func TestLoop_PostFromInside(t *testing.T) {
	l := startLoop(t)

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("内部投递未执行")
	}
}

// TestLoop_SingleGoroutine 并发投递的函数串行执行
func TestLoop_SingleGoroutine(t *testing.T) {
	l := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.Do(context.Background(), func() { counter++ })
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, 800, counter)
}

// TestLoop_Tick mock 时钟驱动节拍
func TestLoop_Tick(t *testing.T) {
	clk := clock.NewMock()
	l := New(50*time.Millisecond, WithClock(clk))

	ticks := make(chan time.Duration, 8)
	l.OnTick(func(dt time.Duration) { ticks <- dt })
	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()

	// 启动后立即推进时钟，首个 dt 从 Start 时刻算起
	for i := 0; i < 2; i++ {
		clk.Add(50 * time.Millisecond)
		select {
		case dt := <-ticks:
			assert.Equal(t, 50*time.Millisecond, dt)
		case <-time.After(3 * time.Second):
			t.Fatal("没有收到节拍")
		}
	}
}

func TestLoop_Lifecycle(t *testing.T) {
	l := New(time.Second)
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrNotStarted)

	require.NoError(t, l.Start(context.Background()))
	require.NoError(t, l.Start(context.Background()))
	require.NoError(t, l.Stop())
	require.NoError(t, l.Stop())

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrClosed)
	assert.ErrorIs(t, l.Start(context.Background()), ErrClosed)
}

func TestLoop_DoContext(t *testing.T) {
	l := startLoop(t)
	release := make(chan struct{})
	l.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Do(ctx, func() {}), context.DeadlineExceeded)
}

// ============================================================================
//                              适配器
// ============================================================================

type recordingTarget struct {
	calls []string
}

func (r *recordingTarget) OnPong(interfaces.BatchID, types.Address, time.Duration, []byte) {
	r.calls = append(r.calls, "pong")
}
func (r *recordingTarget) OnPingBatchTimeout(interfaces.BatchID, []types.Address) {
	r.calls = append(r.calls, "timeout")
}
func (r *recordingTarget) OnPingCancelled(interfaces.BatchID) {
	r.calls = append(r.calls, "cancelled")
}
func (r *recordingTarget) OnConnectAccepted(interfaces.AttemptID, types.Address) {
	r.calls = append(r.calls, "accepted")
}
func (r *recordingTarget) OnConnectDenied(interfaces.AttemptID) {
	r.calls = append(r.calls, "denied")
}
func (r *recordingTarget) OnLinkClosed(types.Address, types.LinkCloseReason) {
	r.calls = append(r.calls, "closed")
}
func (r *recordingTarget) OnMessage(types.Address, []byte) {
	r.calls = append(r.calls, "message")
}

func TestAdapters_ForwardInOrder(t *testing.T) {
	l := startLoop(t)
	target := &recordingTarget{}

	ping := NewPingHandler(l)
	link := NewTransportHandler(l)

	// 绑定之前的回调被丢弃
	ping.OnPong(1, types.Address{}, 0, nil)
	require.NoError(t, l.Do(context.Background(), func() {}))

	require.NoError(t, l.Do(context.Background(), func() {
		ping.Bind(target)
		link.Bind(target)
	}))

	link.OnConnectAccepted(1, types.Address{})
	link.OnMessage(types.Address{}, nil)
	ping.OnPong(1, types.Address{}, 0, nil)
	ping.OnPingBatchTimeout(1, nil)
	ping.OnPingCancelled(2)
	link.OnLinkClosed(types.Address{}, types.LinkClosedRemote)
	link.OnConnectDenied(2)

	var calls []string
	require.NoError(t, l.Do(context.Background(), func() { calls = append(calls, target.calls...) }))
	assert.Equal(t, []string{"accepted", "message", "pong", "timeout", "cancelled", "closed", "denied"}, calls)
}

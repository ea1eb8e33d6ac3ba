package masterserver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
	"github.com/dep2p/go-hostdisco/tests/mocks"
)

var (
	msA = types.MustParseAddress("192.0.2.1:27900")
	msB = types.MustParseAddress("192.0.2.2:27900")
	msC = types.MustParseAddress("192.0.2.3:27900")
)

// TestConnector_FallbackOrder 测试按订阅顺序回退
func TestConnector_FallbackOrder(t *testing.T) {
	tr := mocks.NewMockTransport()
	c := New(tr)

	var attempted []types.Address
	c.OnAttempt = func(a types.Address) { attempted = append(attempted, a) }

	c.Reset([]types.Address{msA, msB, msC})
	require.NoError(t, c.TryNext())

	id, _, _ := tr.LastAttempt()
	require.True(t, c.Denied(id))
	require.NoError(t, c.TryNext())

	id, _, _ = tr.LastAttempt()
	require.True(t, c.Denied(id))
	require.NoError(t, c.TryNext())

	id, addr, _ := tr.LastAttempt()
	assert.Equal(t, msC, addr)
	assert.True(t, c.Accepted(id, msC))
	assert.Equal(t, msC, c.Connected())
	assert.True(t, c.Reached())

	assert.Equal(t, []types.Address{msA, msB, msC}, attempted)
	assert.Equal(t, []types.Address{msA, msB, msC}, tr.Connects())
	assert.Equal(t, 3, c.Index())
}

// TestConnector_Exhausted 测试全部失败
func TestConnector_Exhausted(t *testing.T) {
	tr := mocks.NewMockTransport()
	c := New(tr)
	c.Reset([]types.Address{msA, msB})

	for i := 0; i < 2; i++ {
		require.NoError(t, c.TryNext())
		id, _, _ := tr.LastAttempt()
		require.True(t, c.Denied(id))
	}
	assert.ErrorIs(t, c.TryNext(), ErrExhausted)
	assert.False(t, c.Reached())

	c.Reset(nil)
	assert.ErrorIs(t, c.TryNext(), ErrExhausted, "空订阅列表立即耗尽")
}

// TestConnector_SyncConnectError 测试 ConnectTo 同步失败时继续尝试
func TestConnector_SyncConnectError(t *testing.T) {
	tr := mocks.NewMockTransport()
	var next interfaces.AttemptID
	tr.ConnectToFunc = func(addr types.Address) (interfaces.AttemptID, error) {
		if addr == msA {
			return 0, errors.New("no route")
		}
		next++
		return next, nil
	}
	c := New(tr)
	c.Reset([]types.Address{msA, msB})

	require.NoError(t, c.TryNext())
	assert.Equal(t, []types.Address{msA, msB}, tr.Connects())
	assert.True(t, c.Attempting())
	assert.ErrorIs(t, c.TryNext(), ErrAttemptInFlight)
}

// TestConnector_LinkClosed 测试链路关闭的分类
func TestConnector_LinkClosed(t *testing.T) {
	tests := []struct {
		name         string
		listReceived bool
		closeAddr    types.Address
		reason       types.LinkCloseReason
		want         CloseOutcome
	}{
		{"列表前意外断开", false, msA, types.LinkClosedRemote, CloseFallback},
		{"列表前超时", false, msA, types.LinkClosedTimeout, CloseFallback},
		{"列表前主动关闭", false, msA, types.LinkClosedRequested, CloseIgnored},
		{"列表后优雅关闭", true, msA, types.LinkClosedRequested, CloseIgnored},
		{"列表后远端关闭", true, msA, types.LinkClosedRemote, CloseIgnored},
		{"无关地址", false, msB, types.LinkClosedError, CloseIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mocks.NewMockTransport()
			c := New(tr)
			c.Reset([]types.Address{msA, msB})
			require.NoError(t, c.TryNext())
			id, _, _ := tr.LastAttempt()
			require.True(t, c.Accepted(id, msA))
			if tt.listReceived {
				c.MarkRecordListReceived()
			}
			assert.Equal(t, tt.want, c.LinkClosed(tt.closeAddr, tt.reason))
		})
	}
}

// TestConnector_StaleAccept 测试中止后到达的接受回调被断开
func TestConnector_StaleAccept(t *testing.T) {
	tr := mocks.NewMockTransport()
	c := New(tr)
	c.Reset([]types.Address{msA})
	require.NoError(t, c.TryNext())
	id, _, _ := tr.LastAttempt()

	c.Abort()
	assert.False(t, c.Accepted(id, msA))
	assert.Equal(t, []types.Address{msA}, tr.Disconnects())
	assert.True(t, c.Connected().IsEmpty())
	assert.False(t, c.Denied(id), "过期的拒绝回调被忽略")
}

// TestConnector_CloseLinkAndAbort 测试主动关闭
func TestConnector_CloseLinkAndAbort(t *testing.T) {
	tr := mocks.NewMockTransport()
	c := New(tr)
	c.Reset([]types.Address{msA})
	require.NoError(t, c.TryNext())
	id, _, _ := tr.LastAttempt()
	require.True(t, c.Accepted(id, msA))

	c.MarkRecordListReceived()
	c.CloseLink()
	assert.Equal(t, []types.Address{msA}, tr.Disconnects())
	assert.Equal(t, CloseIgnored, c.LinkClosed(msA, types.LinkClosedRequested))

	// 已无链路时 CloseLink/Abort 不再断开
	c.CloseLink()
	c.Abort()
	assert.Len(t, tr.Disconnects(), 1)
}

// TestConnector_Drop 测试放弃链路后可以继续回退
func TestConnector_Drop(t *testing.T) {
	tr := mocks.NewMockTransport()
	c := New(tr)
	c.Reset([]types.Address{msA, msB})
	require.NoError(t, c.TryNext())
	id, _, _ := tr.LastAttempt()
	require.True(t, c.Accepted(id, msA))

	c.Drop()
	assert.Equal(t, []types.Address{msA}, tr.Disconnects())
	assert.Equal(t, CloseIgnored, c.LinkClosed(msA, types.LinkClosedRequested))

	require.NoError(t, c.TryNext())
	_, addr, _ := tr.LastAttempt()
	assert.Equal(t, msB, addr)
}

// TestConnector_LateCloseOfReleasedLink 旧链路迟到的关闭回调不影响到同一主服务器的新链路
func TestConnector_LateCloseOfReleasedLink(t *testing.T) {
	for _, reason := range []types.LinkCloseReason{types.LinkClosedRequested, types.LinkClosedRemote} {
		t.Run(reason.String(), func(t *testing.T) {
			tr := mocks.NewMockTransport()
			c := New(tr)
			c.Reset([]types.Address{msA})
			require.NoError(t, c.TryNext())
			id, _, _ := tr.LastAttempt()
			require.True(t, c.Accepted(id, msA))

			// 取消后立即开始新一轮，旧链路的关闭回调尚未到达
			c.Abort()
			c.Reset([]types.Address{msA})
			require.NoError(t, c.TryNext())
			id, _, _ = tr.LastAttempt()
			require.True(t, c.Accepted(id, msA))

			assert.Equal(t, CloseIgnored, c.LinkClosed(msA, reason))
			assert.True(t, c.IsConnected(msA))

			// 新链路自己的意外断开仍然触发回退
			assert.Equal(t, CloseFallback, c.LinkClosed(msA, types.LinkClosedRemote))
			assert.False(t, c.IsConnected(msA))
		})
	}
}

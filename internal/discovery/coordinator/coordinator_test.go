package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/internal/discovery/loop"
	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
	"github.com/dep2p/go-hostdisco/tests/mocks"
)

var (
	master = types.MustParseAddress("203.0.113.1:27900")
	bcast  = types.MustParseAddress("192.168.1.255:7777")
	lanH   = types.MustParseAddress("192.168.1.20:7777")
)

// harness 用 mock 替换 ping 与链路层，事件循环真实运行
type harness struct {
	c    *Coordinator
	loop *loop.Loop

	pingers  map[int]*mocks.MockPingCoordinator
	handlers map[int]interfaces.PingHandler
	tr       *mocks.MockTransport
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Discovery.MasterServers = []string{master.String()}
	cfg.Discovery.LANBroadcast = []string{bcast.String()}
	cfg.Metrics.Enabled = false
	return cfg
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{
		loop:     loop.New(time.Hour),
		pingers:  make(map[int]*mocks.MockPingCoordinator),
		handlers: make(map[int]interfaces.PingHandler),
		tr:       mocks.NewMockTransport(),
	}
	next := 0
	deps := Deps{
		Loop: h.loop,
		Sessions: func(ph interfaces.PingHandler) interfaces.PingCoordinator {
			p := mocks.NewMockPingCoordinator()
			h.pingers[next] = p
			h.handlers[next] = ph
			next++
			return p
		},
		Link: func(interfaces.TransportHandler) interfaces.Transport { return h.tr },
	}
	c, err := New(cfg, deps)
	require.NoError(t, err)
	h.c = c

	require.NoError(t, h.loop.Start(context.Background()))
	t.Cleanup(func() {
		_ = h.c.Close(context.Background())
		_ = h.loop.Stop()
	})
	return h
}

func (h *harness) nextEvent(t *testing.T) types.Event {
	t.Helper()
	select {
	case ev := <-h.c.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("等待终止事件超时")
		return nil
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
//                              构造
// ============================================================================

func TestNew_Validation(t *testing.T) {
	t.Run("缺少依赖", func(t *testing.T) {
		_, err := New(testConfig(), Deps{})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("没有启用网络", func(t *testing.T) {
		cfg := testConfig()
		cfg.Discovery.EnableLAN = false
		cfg.Discovery.EnableInternet = false
		_, err := New(cfg, Deps{
			Loop:     loop.New(time.Hour),
			Sessions: func(interfaces.PingHandler) interfaces.PingCoordinator { return mocks.NewMockPingCoordinator() },
		})
		assert.ErrorIs(t, err, ErrNoNetworks)
	})

	t.Run("网络顺序", func(t *testing.T) {
		h := newHarness(t, testConfig())
		assert.Equal(t, []types.Network{types.NetworkLAN, types.NetworkInternet}, h.c.Networks())
		assert.Len(t, h.pingers, 2, "每个引擎一个 ping 会话")
	})
}

// ============================================================================
//                              局域网刷新
// ============================================================================

func TestCoordinator_LANRefresh(t *testing.T) {
	h := newHarness(t, testConfig())
	rec := mocks.NewRecordingListener()
	require.NoError(t, h.c.AddListener(ctx(t), rec))

	require.NoError(t, h.c.DiscoverHostList(ctx(t), types.NetworkLAN, true))

	mode, err := h.c.Mode(ctx(t), types.NetworkLAN)
	require.NoError(t, err)
	assert.Equal(t, types.ModeRefreshList, mode)

	batch, ok := h.pingers[0].LastBatch()
	require.True(t, ok)
	assert.Equal(t, []types.Address{bcast}, batch.Addrs)

	h.handlers[0].OnPong(batch.ID, lanH, 3*time.Millisecond, []byte("lan-basic"))
	h.handlers[0].OnPingBatchTimeout(batch.ID, []types.Address{bcast})

	ev, ok := h.nextEvent(t).(types.HostListRefreshed)
	require.True(t, ok)
	assert.Equal(t, types.NetworkLAN, ev.Network)
	require.Len(t, ev.Hosts, 1)
	assert.Equal(t, lanH, ev.Hosts[0].Address)
	assert.True(t, ev.Hosts[0].New)
	assert.Equal(t, 1, rec.Count(), "监听器与事件通道都收到事件")

	hosts, err := h.c.Hosts(ctx(t), types.NetworkLAN)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, []byte("lan-basic"), hosts[0].Data.BasicInfo)

	t.Run("中继查询", func(t *testing.T) {
		basic, found := h.c.LookupBasic(lanH)
		require.True(t, found)
		assert.Equal(t, []byte("lan-basic"), basic)

		_, found = h.c.LookupBasic(types.MustParseAddress("192.168.1.99:7777"))
		assert.False(t, found)
	})

	t.Run("主机列表应答", func(t *testing.T) {
		list := h.c.HostList(wire.HostListRequest{})
		require.Len(t, list.Records, 1)
		assert.Equal(t, lanH, list.Records[0].Address)
	})
}

// ============================================================================
//                              互联网刷新
// ============================================================================

func TestCoordinator_InternetCancel(t *testing.T) {
	h := newHarness(t, testConfig())

	require.NoError(t, h.c.RefreshHostList(ctx(t), types.NetworkInternet, interfaces.RefreshOptions{}))
	assert.Equal(t, []types.Address{master}, h.tr.Connects())

	err := h.c.RefreshHostList(ctx(t), types.NetworkInternet, interfaces.RefreshOptions{})
	assert.Error(t, err, "同一网络同时只能有一个请求")

	require.NoError(t, h.c.Cancel(ctx(t), types.NetworkInternet))
	mode, err := h.c.Mode(ctx(t), types.NetworkInternet)
	require.NoError(t, err)
	assert.Equal(t, types.ModeIdle, mode)

	select {
	case ev := <-h.c.Events():
		t.Fatalf("取消不应派发事件: %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoordinator_RefreshHostUnknown(t *testing.T) {
	h := newHarness(t, testConfig())

	target := types.MustParseAddress("198.51.100.4:7777")
	require.NoError(t, h.c.RefreshHost(ctx(t), types.NetworkInternet, target, interfaces.RefreshOptions{}))

	ev, ok := h.nextEvent(t).(types.SingleHostRefreshed)
	require.True(t, ok)
	assert.Equal(t, target, ev.Address)
	assert.False(t, ev.Found)
	assert.Equal(t, 0, h.pingers[1].BatchCount())
}

func TestCoordinator_MasterServerSubscriptions(t *testing.T) {
	h := newHarness(t, testConfig())
	extra := types.MustParseAddress("203.0.113.2:27900")

	added, err := h.c.SubscribeToMasterServer(ctx(t), extra)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = h.c.SubscribeToMasterServer(ctx(t), extra)
	require.NoError(t, err)
	assert.False(t, added, "重复订阅")

	subs, err := h.c.MasterServers(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, []types.Address{master, extra}, subs)

	removed, err := h.c.UnsubscribeFromMasterServer(ctx(t), master)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = h.c.SubscribeToMasterServer(ctx(t), types.Address{})
	assert.ErrorIs(t, err, types.ErrInvalidAddress)
}

func TestCoordinator_DisabledNetwork(t *testing.T) {
	cfg := testConfig()
	cfg.Discovery.EnableInternet = false
	h := newHarness(t, cfg)

	err := h.c.RefreshHostList(ctx(t), types.NetworkInternet, interfaces.RefreshOptions{})
	assert.ErrorIs(t, err, ErrNetworkDisabled)

	_, err = h.c.SubscribeToMasterServer(ctx(t), master)
	assert.ErrorIs(t, err, ErrNetworkDisabled)

	_, err = h.c.Hosts(ctx(t), types.NetworkInternet)
	assert.ErrorIs(t, err, ErrNetworkDisabled)
}

// ============================================================================
//                              生命周期
// ============================================================================

func TestCoordinator_Close(t *testing.T) {
	h := newHarness(t, testConfig())

	require.NoError(t, h.c.DiscoverHostList(ctx(t), types.NetworkLAN, false))
	require.NoError(t, h.c.Close(ctx(t)))
	require.NoError(t, h.c.Close(ctx(t)), "重复关闭")

	_, open := <-h.c.Events()
	assert.False(t, open, "关闭后事件通道关闭")

	mode, err := h.c.Mode(ctx(t), types.NetworkLAN)
	require.NoError(t, err)
	assert.Equal(t, types.ModeIdle, mode, "关闭时取消进行中的请求")
}

func TestCoordinator_CloseBeforeStart(t *testing.T) {
	c, err := New(testConfig(), Deps{
		Loop:     loop.New(time.Hour),
		Sessions: func(interfaces.PingHandler) interfaces.PingCoordinator { return mocks.NewMockPingCoordinator() },
	})
	require.NoError(t, err)
	require.NoError(t, c.Close(context.Background()))

	_, open := <-c.Events()
	assert.False(t, open)
}

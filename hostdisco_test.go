package hostdisco

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-hostdisco/internal/core/link"
	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// startHost 启动一个在回环地址上应答 ping 的主机
func startHost(t *testing.T, basic, extra string) *Client {
	t.Helper()
	host, err := Start(context.Background(),
		WithPreset(PresetNameHost),
		WithListenAddr("127.0.0.1:0"),
		WithHostInfo([]byte(basic), []byte(extra)),
		WithMetrics(false),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })
	require.False(t, host.LocalAddr().IsEmpty())
	return host
}

func waitEvent(t *testing.T, c *Client) types.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "事件通道意外关闭")
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("等待终止事件超时")
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

func TestClient_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("未启动", func(t *testing.T) {
		c, err := New(ctx, WithMetrics(false))
		require.NoError(t, err)
		err = c.RefreshHostList(ctx, types.NetworkLAN, interfaces.RefreshOptions{})
		assert.ErrorIs(t, err, ErrNotStarted)
		require.NoError(t, c.Close())
	})

	t.Run("重复启动与关闭", func(t *testing.T) {
		c, err := Start(ctx, WithListenAddr("127.0.0.1:0"), WithMetrics(false))
		require.NoError(t, err)
		assert.ErrorIs(t, c.Start(ctx), ErrAlreadyStarted)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		_, open := <-c.Events()
		assert.False(t, open, "关闭后事件通道关闭")
		assert.ErrorIs(t, c.Start(ctx), ErrClientClosed)
		_, err = c.Hosts(ctx, types.NetworkLAN)
		assert.ErrorIs(t, err, ErrClientClosed)
	})

	t.Run("无效选项", func(t *testing.T) {
		_, err := New(ctx, WithNetworks(false, false))
		assert.Error(t, err)

		_, err = New(ctx, WithPreset("nope"))
		assert.ErrorIs(t, err, ErrUnknownPreset)

		_, err = New(ctx, WithMasterServers("not-an-address"))
		assert.Error(t, err)
	})
}

// ════════════════════════════════════════════════════════════════════════════
//                              端到端
// ════════════════════════════════════════════════════════════════════════════

// TestClient_InternetDiscovery 主服务器列表 → 直接 ping → 扩展信息
func TestClient_InternetDiscovery(t *testing.T) {
	ctx := context.Background()
	host := startHost(t, "alpha", "alpha-extra")
	hostAddr := host.LocalAddr()

	srv := link.NewServer(link.DefaultConfig(), func(wire.HostListRequest) wire.HostRecordList {
		return wire.HostRecordList{Records: []wire.HostRecord{
			{Address: hostAddr, BasicInfo: []byte("alpha-from-master")},
		}}
	})
	require.NoError(t, srv.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = srv.Close() })

	reg := prometheus.NewRegistry()
	c, err := Start(ctx,
		WithNetworks(false, true),
		WithMasterServers(srv.Addr().String()),
		WithListenAddr("127.0.0.1:0"),
		WithRelaySingleHost(false),
		WithMetricsRegisterer(reg),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.RefreshHostList(ctx, types.NetworkInternet, interfaces.RefreshOptions{
		AllowDiscovery:   true,
		GetExtraHostInfo: true,
	}))

	ev, ok := waitEvent(t, c).(types.HostListRefreshed)
	require.True(t, ok)
	assert.True(t, ev.MasterServerReached)
	require.Len(t, ev.Hosts, 1)

	got := ev.Hosts[0]
	assert.Equal(t, hostAddr, got.Address)
	assert.True(t, got.New)
	assert.Equal(t, []byte("alpha"), got.Data.BasicInfo, "直接数据取代主服务器数据")
	assert.Equal(t, []byte("alpha-extra"), got.Data.ExtraInfo)
	assert.Equal(t, types.ProvenanceDirectPing, got.Data.Provenance)
	assert.Equal(t, types.RefreshExtraHostInfo, got.Data.Result)

	hosts, err := c.Hosts(ctx, types.NetworkInternet)
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	n, err := testutil.GatherAndCount(reg, "hostdisco_discovery_refreshes_started_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "只有一条 internet/list 序列")

	t.Run("单主机刷新", func(t *testing.T) {
		host.SetHostInfo([]byte("alpha-v2"), nil)
		require.NoError(t, c.RefreshHost(ctx, types.NetworkInternet, hostAddr, interfaces.RefreshOptions{}))

		ev, ok := waitEvent(t, c).(types.SingleHostRefreshed)
		require.True(t, ok)
		assert.True(t, ev.Found)
		assert.False(t, ev.New)
		assert.Equal(t, []byte("alpha-v2"), ev.Data.BasicInfo)
	})
}

// TestClient_LANDiscovery 向广播目标发送 ping，发现应答的主机
func TestClient_LANDiscovery(t *testing.T) {
	ctx := context.Background()
	host := startHost(t, "beta", "beta-extra")

	c, err := Start(ctx,
		WithPreset(PresetNameLAN),
		WithLANBroadcast(host.LocalAddr().String()),
		WithListenAddr("127.0.0.1:0"),
		WithTimeouts(0, 300*time.Millisecond, 0),
		WithMetrics(false),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.DiscoverHostList(ctx, types.NetworkLAN, false))

	ev, ok := waitEvent(t, c).(types.HostListRefreshed)
	require.True(t, ok)
	assert.True(t, ev.Discovery)
	require.Len(t, ev.Hosts, 1)
	assert.Equal(t, host.LocalAddr(), ev.Hosts[0].Address)
	assert.Equal(t, []byte("beta"), ev.Hosts[0].Data.BasicInfo)
	assert.Empty(t, ev.Hosts[0].Data.ExtraInfo, "发现模式不收集扩展信息")
}

// TestClient_Cancel 取消后不派发事件，可以立即发起新请求
func TestClient_Cancel(t *testing.T) {
	ctx := context.Background()
	// 接受连接但从不应答的主服务器
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	master := types.AddressFromNet(ln.Addr())

	c, err := Start(ctx,
		WithNetworks(false, true),
		WithMasterServers(master.String()),
		WithListenAddr("127.0.0.1:0"),
		WithMetrics(false),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.RefreshHostList(ctx, types.NetworkInternet, interfaces.RefreshOptions{}))
	mode, err := c.Mode(ctx, types.NetworkInternet)
	require.NoError(t, err)
	assert.Equal(t, types.ModeRefreshList, mode)

	require.NoError(t, c.CancelHostRequests(ctx, types.NetworkInternet))
	select {
	case ev := <-c.Events():
		t.Fatalf("取消后不应派发事件: %T", ev)
	case <-time.After(100 * time.Millisecond):
	}

	added, err := c.SubscribeToMasterServer(ctx, types.MustParseAddress("192.0.2.2:27900"))
	require.NoError(t, err)
	assert.True(t, added)
	subs, err := c.MasterServers(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	removed, err := c.UnsubscribeFromMasterServer(ctx, master)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestPresets(t *testing.T) {
	for _, p := range AvailablePresets() {
		cfg, err := ConfigByPreset(p.Name)
		require.NoError(t, err, p.Name)
		assert.NoError(t, cfg.Validate(), p.Name)
		assert.True(t, IsValidPreset(p.Name))
	}
	assert.False(t, IsValidPreset("mobile"))

	cfg, err := ConfigByPreset(PresetNameHost)
	require.NoError(t, err)
	assert.True(t, cfg.Ping.Respond)
	assert.False(t, cfg.Discovery.EnableInternet)
}

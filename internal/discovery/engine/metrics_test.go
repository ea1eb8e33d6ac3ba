package engine

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.started(types.NetworkLAN, types.ModeRefresh)
		m.completed(types.NetworkLAN, types.ModeRefresh, outcomeHosts, time.Second)
		m.cancelled(types.NetworkLAN)
		m.masterAttempt(types.NetworkInternet)
		m.pong(types.NetworkLAN, types.PingRefresh)
		m.setHosts(types.NetworkLAN, 3)
	})
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg, "hostdisco")
	require.NoError(t, err)
	_, err = NewMetrics(reg, "hostdisco")
	assert.Error(t, err)
}

// TestMetrics_RefreshLifecycle 一次完整刷新更新计数器
func TestMetrics_RefreshLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "hostdisco")
	require.NoError(t, err)

	cfg := testConfig(types.NetworkInternet)
	cfg.MasterServers = []types.Address{m1, m2}
	h := newHarness(t, cfg)
	h.eng.metrics = m

	require.NoError(t, h.eng.RefreshAll(discoverAll))
	h.denyLast()
	h.sendList(h.acceptLast(), h1)
	h.eng.OnPong(h.lastBatch().ID, h1, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshesStarted.WithLabelValues("internet", "refresh-list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshesCompleted.WithLabelValues("internet", "refresh-list", outcomeHosts)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.masterAttempts.WithLabelValues("internet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pongs.WithLabelValues("internet", "refresh-list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hosts.WithLabelValues("internet")))

	require.NoError(t, h.eng.SingleHostRefresh(h2, interfaces.RefreshOptions{AllowDiscovery: true}))
	h.eng.Cancel()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshesCancelled.WithLabelValues("internet")))

	count, err := testutil.GatherAndCount(reg, "hostdisco_discovery_refresh_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

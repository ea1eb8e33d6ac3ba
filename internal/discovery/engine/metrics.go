package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-hostdisco/pkg/types"
)

// Metrics 发现引擎指标
//
// 同一进程的 LAN 与 Internet 引擎共享一份 Metrics，以 network 标签区分。
// nil *Metrics 的所有方法都是无操作。
type Metrics struct {
	refreshesStarted   *prometheus.CounterVec
	refreshesCompleted *prometheus.CounterVec
	refreshesCancelled *prometheus.CounterVec
	masterAttempts     *prometheus.CounterVec
	pongs              *prometheus.CounterVec
	hosts              *prometheus.GaugeVec
	flushDuration      *prometheus.HistogramVec
}

// NewMetrics 创建并注册指标
//
// reg 为 nil 时指标只在内存中累计，不注册。
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		refreshesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "refreshes_started_total",
			Help:      "Refresh operations accepted by the discovery engine.",
		}, []string{"network", "mode"}),
		refreshesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "refreshes_completed_total",
			Help:      "Refresh operations that dispatched a terminal event.",
		}, []string{"network", "mode", "outcome"}),
		refreshesCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "refreshes_cancelled_total",
			Help:      "Refresh operations discarded by Cancel.",
		}, []string{"network"}),
		masterAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "master_server_attempts_total",
			Help:      "Master server connect attempts.",
		}, []string{"network"}),
		pongs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pongs_total",
			Help:      "Pongs accepted for the active request.",
		}, []string{"network", "kind"}),
		hosts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "hosts",
			Help:      "Host records cached after the last flush.",
		}, []string{"network"}),
		flushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "refresh_duration_seconds",
			Help:      "Time from refresh start to flush.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"network", "mode"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.refreshesStarted, m.refreshesCompleted, m.refreshesCancelled,
			m.masterAttempts, m.pongs, m.hosts, m.flushDuration,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) started(n types.Network, mode types.DiscoveryMode) {
	if m == nil {
		return
	}
	m.refreshesStarted.WithLabelValues(n.String(), mode.String()).Inc()
}

func (m *Metrics) completed(n types.Network, mode types.DiscoveryMode, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.refreshesCompleted.WithLabelValues(n.String(), mode.String(), outcome).Inc()
	m.flushDuration.WithLabelValues(n.String(), mode.String()).Observe(took.Seconds())
}

func (m *Metrics) cancelled(n types.Network) {
	if m == nil {
		return
	}
	m.refreshesCancelled.WithLabelValues(n.String()).Inc()
}

func (m *Metrics) masterAttempt(n types.Network) {
	if m == nil {
		return
	}
	m.masterAttempts.WithLabelValues(n.String()).Inc()
}

func (m *Metrics) pong(n types.Network, kind types.PingKind) {
	if m == nil {
		return
	}
	m.pongs.WithLabelValues(n.String(), kind.String()).Inc()
}

func (m *Metrics) setHosts(n types.Network, count int) {
	if m == nil {
		return
	}
	m.hosts.WithLabelValues(n.String()).Set(float64(count))
}

// 完成结果标签
const (
	outcomeHosts    = "hosts"
	outcomeEmpty    = "empty"
	outcomeNotFound = "not_found"
	outcomeFailed   = "failed"
)

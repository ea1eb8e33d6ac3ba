package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否向 Prometheus 注册发现指标
	Enabled bool `json:"enabled"`

	// Namespace 指标命名空间
	// 默认值: "hostdisco"
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "hostdisco",
	}
}

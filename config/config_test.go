package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 4*time.Second, cfg.Discovery.InternetHostListTimeout.Duration())
	assert.Equal(t, 3*time.Second, cfg.Discovery.BasicHostInfoTimeout.Duration())
	assert.Equal(t, 4*time.Second, cfg.Discovery.ExtraHostInfoTimeout.Duration())
	assert.Equal(t, 250*time.Millisecond, cfg.Ping.Interval.Duration())
	assert.True(t, cfg.Discovery.RelaySingleHost)

	t.Log("✅ NewConfig 测试通过")
}

// TestDiscoveryConfig 测试发现配置
func TestDiscoveryConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *DiscoveryConfig)
		wantErr bool
	}{
		{"默认配置", func(c *DiscoveryConfig) {}, false},
		{"两个网络都禁用", func(c *DiscoveryConfig) { c.EnableLAN, c.EnableInternet = false, false }, true},
		{"列表超时为零", func(c *DiscoveryConfig) { c.InternetHostListTimeout = 0 }, true},
		{"基础超时为负", func(c *DiscoveryConfig) { c.BasicHostInfoTimeout = Duration(-time.Second) }, true},
		{"扩展超时为零", func(c *DiscoveryConfig) { c.ExtraHostInfoTimeout = 0 }, true},
		{"非法主服务器", func(c *DiscoveryConfig) { c.MasterServers = []string{"not-an-address"} }, true},
		{"合法主服务器", func(c *DiscoveryConfig) { c.MasterServers = []string{"10.0.0.1:27900", "[::1]:27900"} }, false},
		{"非法广播地址", func(c *DiscoveryConfig) { c.LANBroadcast = []string{"255.255.255.255"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDiscoveryConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestDiscoveryConfig_MasterServerOrder 测试主服务器保持配置顺序
func TestDiscoveryConfig_MasterServerOrder(t *testing.T) {
	cfg := DefaultDiscoveryConfig()
	cfg.MasterServers = []string{"10.0.0.3:1", "10.0.0.1:1", "10.0.0.2:1"}

	addrs, err := cfg.MasterServerAddresses()
	require.NoError(t, err)
	require.Len(t, addrs, 3)
	assert.Equal(t, "10.0.0.3:1", addrs[0].String())
	assert.Equal(t, "10.0.0.1:1", addrs[1].String())
	assert.Equal(t, "10.0.0.2:1", addrs[2].String())
}

// TestPingLinkStoreConfig 测试其余子配置的验证
func TestPingLinkStoreConfig(t *testing.T) {
	t.Run("Ping", func(t *testing.T) {
		cfg := DefaultPingConfig()
		assert.NoError(t, cfg.Validate())
		cfg.Interval = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Ping_NegativeRate", func(t *testing.T) {
		cfg := DefaultPingConfig()
		cfg.MaxRate = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("Link", func(t *testing.T) {
		cfg := DefaultLinkConfig()
		assert.NoError(t, cfg.Validate())
		cfg.MaxFrameSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Store", func(t *testing.T) {
		cfg := DefaultStoreConfig()
		assert.NoError(t, cfg.Validate())
		cfg.MaxHosts = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestFromJSON 测试从 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"discovery": {
			"master_servers": ["203.0.113.7:27900"],
			"basic_host_info_timeout": "1500ms",
			"project_id": "arena"
		},
		"ping": {"interval": 100000000}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"203.0.113.7:27900"}, cfg.Discovery.MasterServers)
	assert.Equal(t, 1500*time.Millisecond, cfg.Discovery.BasicHostInfoTimeout.Duration())
	assert.Equal(t, 100*time.Millisecond, cfg.Ping.Interval.Duration())
	assert.Equal(t, "arena", cfg.Discovery.ProjectID)
	// 未出现的字段保留默认值
	assert.Equal(t, 4*time.Second, cfg.Discovery.ExtraHostInfoTimeout.Duration())

	_, err = FromJSON([]byte(`{"ping": {"interval": "soon"}}`))
	assert.Error(t, err)

	t.Log("✅ FromJSON 测试通过")
}

// TestToJSON_RoundTrip 测试序列化后可重新加载
func TestToJSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.LANBroadcast = []string{"192.168.1.255:27015"}

	data, err := ToJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"4s"`)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

// TestLoadFile 测试从文件加载
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"store": {"max_hosts": 16}}`), 0o600))
	cfg, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Store.MaxHosts)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"store": {"max_hosts": 0}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.EnableLAN = false
	cfg.Discovery.EnableInternet = false
	cfg.Discovery.BasicHostInfoTimeout = 0
	cfg.Store.MaxHosts = -3

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.True(t, fixed.Discovery.EnableLAN)
	assert.Equal(t, 3*time.Second, fixed.Discovery.BasicHostInfoTimeout.Duration())
	assert.Equal(t, 1024, fixed.Store.MaxHosts)

	fresh, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NotNil(t, fresh)

	assert.Error(t, ValidateAll(nil))
}

// TestClone 测试深拷贝
func TestClone(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.MasterServers = []string{"10.0.0.1:1"}
	cp := cfg.Clone()
	cp.Discovery.MasterServers[0] = "10.0.0.2:2"
	assert.Equal(t, "10.0.0.1:1", cfg.Discovery.MasterServers[0])
}

package config

import "errors"

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复常见问题
//
// 可修复的问题：
//   - 超时或间隔非正数 -> 使用默认值
//   - 两个网络都禁用 -> 启用局域网
//   - 存储容量非正数 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := NewConfig()
	d := &c.Discovery
	if !d.EnableInternet && !d.EnableLAN {
		d.EnableLAN = true
	}
	if d.InternetHostListTimeout <= 0 {
		d.InternetHostListTimeout = def.Discovery.InternetHostListTimeout
	}
	if d.BasicHostInfoTimeout <= 0 {
		d.BasicHostInfoTimeout = def.Discovery.BasicHostInfoTimeout
	}
	if d.ExtraHostInfoTimeout <= 0 {
		d.ExtraHostInfoTimeout = def.Discovery.ExtraHostInfoTimeout
	}
	if d.TickInterval <= 0 {
		d.TickInterval = def.Discovery.TickInterval
	}
	if c.Ping.Interval <= 0 {
		c.Ping.Interval = def.Ping.Interval
	}
	if c.Ping.ListenAddr == "" {
		c.Ping.ListenAddr = def.Ping.ListenAddr
	}
	if c.Link.DialTimeout <= 0 {
		c.Link.DialTimeout = def.Link.DialTimeout
	}
	if c.Link.MaxFrameSize <= 0 {
		c.Link.MaxFrameSize = def.Link.MaxFrameSize
	}
	if c.Store.MaxHosts <= 0 {
		c.Store.MaxHosts = def.Store.MaxHosts
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

package config

import "errors"

// StoreConfig 主机记录存储配置
type StoreConfig struct {
	// MaxHosts 每个网络最多保留的主机记录数，超出时淘汰最久未更新的记录
	// 默认值: 1024
	MaxHosts int `json:"max_hosts"`
}

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{MaxHosts: 1024}
}

// Validate 验证存储配置
func (c StoreConfig) Validate() error {
	if c.MaxHosts <= 0 {
		return errors.New("max hosts must be positive")
	}
	return nil
}

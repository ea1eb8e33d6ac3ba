package hostdisco

import (
	"fmt"

	"github.com/dep2p/go-hostdisco/config"
)

// 预设名称常量
const (
	// PresetNameFull 局域网与互联网都启用
	PresetNameFull = "full"

	// PresetNameLAN 只启用局域网发现
	PresetNameLAN = "lan"

	// PresetNameInternet 只启用互联网发现
	PresetNameInternet = "internet"

	// PresetNameHost 作为主机应答 ping，同时保留局域网发现
	PresetNameHost = "host"
)

// PresetInfo 预设描述
type PresetInfo struct {
	Name        string
	Description string
}

// ConfigByPreset 按名称返回预设配置
func ConfigByPreset(name string) (*config.Config, error) {
	cfg := config.NewConfig()
	switch name {
	case PresetNameFull, "":
	case PresetNameLAN:
		cfg.Discovery.EnableInternet = false
	case PresetNameInternet:
		cfg.Discovery.EnableLAN = false
	case PresetNameHost:
		cfg.Discovery.EnableInternet = false
		cfg.Ping.Respond = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg, nil
}

// AvailablePresets 列出所有预设
func AvailablePresets() []PresetInfo {
	return []PresetInfo{
		{Name: PresetNameFull, Description: "局域网与互联网发现"},
		{Name: PresetNameLAN, Description: "只做局域网广播发现"},
		{Name: PresetNameInternet, Description: "只经由主服务器发现"},
		{Name: PresetNameHost, Description: "应答 ping 的主机，附带局域网发现"},
	}
}

// IsValidPreset 检查预设名称是否有效
func IsValidPreset(name string) bool {
	for _, p := range AvailablePresets() {
		if p.Name == name {
			return true
		}
	}
	return false
}

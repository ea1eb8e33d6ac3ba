package main

import (
	"os"
	"strings"

	"github.com/dep2p/go-hostdisco/config"
)

// 环境变量名（HOSTDISCO_ 前缀）
const (
	envPrefix        = "HOSTDISCO_"
	envPreset        = "PRESET"
	envMasterServers = "MASTER_SERVERS"
	envLANBroadcast  = "LAN_BROADCAST"
	envProjectID     = "PROJECT_ID"
	envListenAddr    = "LISTEN_ADDR"
)

// applyEnvOverrides 应用环境变量覆盖，返回环境变量指定的预设
func applyEnvOverrides(cfg *config.Config) string {
	if v := os.Getenv(envPrefix + envMasterServers); v != "" {
		cfg.Discovery.MasterServers = splitAndTrim(v, ",")
	}
	if v := os.Getenv(envPrefix + envLANBroadcast); v != "" {
		cfg.Discovery.LANBroadcast = splitAndTrim(v, ",")
	}
	if v, ok := os.LookupEnv(envPrefix + envProjectID); ok {
		cfg.Discovery.ProjectID = v
	}
	if v := os.Getenv(envPrefix + envListenAddr); v != "" {
		cfg.Ping.ListenAddr = v
	}
	return os.Getenv(envPrefix + envPreset)
}

// splitAndTrim 分割字符串并去除空白项
func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

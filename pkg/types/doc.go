// Package types 定义 hostdisco 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 hostdisco 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - address.go   - Address 主机地址（IP + 端口）
//   - enums.go     - Network, DiscoveryMode, DiscoveryStage, Provenance, RefreshResult, PingKind
//   - host.go      - RespondingHostData, HostRecord, HostResult
//   - events.go    - 终止事件（HostListRefreshed / SingleHostRefreshed / RefreshCancelledOrFailed）
//   - errors.go    - 公共错误定义
package types

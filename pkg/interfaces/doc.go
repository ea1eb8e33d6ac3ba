// Package interfaces 定义 hostdisco 的公共接口
//
// 发现引擎只依赖窄接口与外部协作者交互：
//   - transport.go      - 主服务器链路（连接、消息、断开）及其回调
//   - ping.go           - PingCoordinator（批量、带超时的 ping）及其回调
//   - listener.go       - 终止事件监听器
//   - discovery.go      - 发现引擎对外接口
//
// 所有回调都可能在任意 goroutine 上触发，引擎本身不是并发安全的，
// 由 internal/discovery/loop 负责把回调串行化到单一 goroutine。
package interfaces

// Package ping 实现基于 UDP 的 PingCoordinator
//
// Coordinator 负责：
//   - 批量 ping：每个批次一个 nonce，按 Interval 重发未响应的地址直到超时
//   - pong 匹配：按 nonce 找回批次，每个地址至多回调一次 OnPong
//   - 项目过滤：ProjectID 不同的 pong 被丢弃（主服务器代答除外）
//   - 发送限速：golang.org/x/time/rate 控制每秒发包数
//
// Responder 是协议的主机一侧，按配置的基础/扩展信息应答 ping，
// 同一个 UDP 套接字既发 ping 也回 pong。
//
// 所有回调在独立的派发 goroutine 上按决定顺序串行执行，
// 调用方可以在回调中再次调用 PingAddresses 或 CancelBatch。
package ping

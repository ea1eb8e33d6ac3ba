// Package mocks 提供统一的测试 Mock 实现
//
// # 协作者 Mock
//
//   - MockTransport: 模拟 interfaces.Transport，记录连接、消息与断开
//   - MockPingCoordinator: 模拟 interfaces.PingCoordinator，记录 ping 批次
//
// 两者都不会主动回调，测试直接调用引擎的回调方法推进流程。
//
// # 监听器
//
//   - RecordingListener: 记录所有终止事件
//   - MockDiscoveryListener: mockgen 生成，用于精确断言调用次数
package mocks

// Package engine 实现主机发现与刷新引擎
//
// Engine 是单线程、事件驱动的状态机：
//   - 调用方操作：RefreshAll、SingleHostRefresh、Cancel、OnTick
//   - 链路回调：OnConnectAccepted、OnConnectDenied、OnLinkClosed、OnMessage
//   - Ping 回调：OnPong、OnPingBatchTimeout、OnPingCancelled
//
// 同一时刻至多一个活动请求。请求的阶段只前进：
//
//	Unresponding → BasicHostInfo → [ExtraHostInfo] → Flushed
//
// flush 是唯一写入 HostRecordStore 并派发终止事件的位置，每个请求至多一次。
// Cancel 丢弃请求，不派发事件；之后到达的属于旧请求的回调按批次代号识别并忽略。
//
// Engine 不是并发安全的，所有调用必须在同一个 goroutine 上串行执行
// （见 internal/discovery/loop）。
package engine

// Package link 实现到主服务器的 TCP 链路
//
// Transport 实现 interfaces.Transport：ConnectTo 在后台拨号，
// 结果、消息和关闭都通过 TransportHandler 回调。每条链路上的消息
// 以 4 字节大端长度前缀分帧，超过 MaxFrameSize 的帧视为链路错误。
//
// Server 是主服务器一侧的最小实现：读取主机列表请求并返回主机记录列表，
// 供命令行 serve 模式和集成测试使用。
package link

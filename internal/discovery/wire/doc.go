// Package wire 定义发现协议的消息编码
//
// 所有消息都是 protobuf 线格式（google.golang.org/protobuf/encoding/protowire），
// 外层是带类型号的信封：
//
//	Envelope { 1: type (varint), 2: body (bytes) }
//
// 链路消息（经主服务器 TCP 链路）：
//   - HostListRequest: 客户端请求主机列表
//   - HostRecordList: 主服务器返回的主机记录列表
//
// 数据报消息（UDP ping 协议）：
//   - Ping / Pong
//
// Ping 载荷：
//   - RefreshTarget: 单主机刷新的目标地址
//   - RefreshHostReply: 主服务器代为回答的单主机信息
//
// 解码时跳过未知字段；类型不符、字段截断或地址非法都返回 ErrMalformed。
package wire

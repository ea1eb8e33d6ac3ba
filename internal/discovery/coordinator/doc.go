// Package coordinator 组装各网络的发现引擎
//
// # 模块概述
//
// Coordinator 为每个启用的网络（LAN / Internet）创建一个发现引擎，
// 各自持有独立的 HostRecordStore 和 ping 会话，共用一个事件循环、
// 一个 UDP ping 协调器和一条主服务器链路层。
//
// # 架构设计
//
//	┌───────────────────────────────────────────────────────────┐
//	│                     Coordinator（门面）                    │
//	│  RefreshHostList / RefreshHost / Cancel / Hosts / Events  │
//	└──────────────┬───────────────────────────┬────────────────┘
//	               │ loop.Do                   │
//	        ┌──────┴──────┐             ┌──────┴──────┐
//	        │ engine(LAN) │             │engine(Inet) │
//	        └──────┬──────┘             └──┬───────┬──┘
//	               │ ping.Session          │       │ link.Transport
//	               └──────────┬────────────┘       │
//	                    ┌─────┴─────┐        ┌─────┴─────┐
//	                    │ ping(UDP) │        │ link(TCP) │
//	                    └───────────┘        └───────────┘
//
// 所有引擎调用都在事件循环 goroutine 上执行；ping 与链路回调经
// loop 适配器投递回同一个 goroutine。
//
// # 线程安全
//
// 所有公开方法都是线程安全的，但不能在事件回调（Events 消费者除外）
// 中同步调用，因为它们会等待事件循环。
package coordinator

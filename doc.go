// Package hostdisco 提供游戏主机发现与刷新引擎
//
// 客户端按网络（局域网、互联网）各持有一个发现引擎。互联网引擎经由主服务器
// 取得主机列表，再直接 ping 每个主机取得基础信息和扩展信息；局域网引擎
// 直接向已知主机和广播地址发送 ping。每次请求以且仅以一个终止事件结束，
// 取消的请求不派发任何事件。
//
// # 快速开始
//
//	client, err := hostdisco.Start(ctx,
//	    hostdisco.WithMasterServers("203.0.113.7:27900"),
//	    hostdisco.WithProjectID("space-race"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.DiscoverHostList(ctx, types.NetworkInternet, true)
//	for ev := range client.Events() {
//	    switch ev := ev.(type) {
//	    case types.HostListRefreshed:
//	        fmt.Println(len(ev.Hosts), "hosts")
//	    }
//	}
//
// # 组件结构
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  Client  hostdisco.New() / hostdisco.Start()                 │
//	├──────────────────────────────────────────────────────────────┤
//	│  discovery/coordinator   每个网络一个 engine + hoststore      │
//	│  discovery/loop          单 goroutine 串行驱动引擎            │
//	├──────────────────────────────────────────────────────────────┤
//	│  core/ping   UDP ping 协调器 + 主机应答器                     │
//	│  core/link   主服务器 TCP 链路（长度前缀帧）                  │
//	└──────────────────────────────────────────────────────────────┘
//
// # 文件组织
//
//   - hostdisco.go: Client 及其操作
//   - options.go: 函数式选项
//   - presets.go: 预设配置
//   - fx.go: 模块装配
//   - errors.go: 公共错误
package hostdisco

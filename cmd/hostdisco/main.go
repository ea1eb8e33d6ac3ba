// Package main 提供 hostdisco 命令行入口
//
// 子命令：
//
//	hostdisco refresh            刷新已知主机列表
//	hostdisco discover           发现新主机
//	hostdisco host <ip:port>     刷新单个主机
//	hostdisco serve              作为主机应答 ping，并以主服务器身份提供主机列表
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-hostdisco"
	"github.com/dep2p/go-hostdisco/config"
	"github.com/dep2p/go-hostdisco/internal/core/link"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("hostdisco/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 配置优先级（从高到低）：命令行参数 > HOSTDISCO_* 环境变量 > 配置文件 > 预设
var (
	configFile   = flag.String("config", "", "JSON 配置文件路径")
	preset       = flag.String("preset", hostdisco.PresetNameFull, "预设配置 (full/lan/internet/host)")
	network      = flag.String("network", "internet", "目标网络 (lan/internet)")
	listenAddr   = flag.String("listen", "", "UDP ping 监听地址")
	masters      = flag.String("master", "", "主服务器列表，逗号分隔")
	lanBroadcast = flag.String("lan-broadcast", "", "局域网广播地址，逗号分隔")
	projectID    = flag.String("project", "", "项目标识")

	extraInfo   = flag.Bool("extra", false, "收集扩展主机信息")
	removeStale = flag.Bool("remove-stale", true, "移除本轮未响应的已知主机")
	wait        = flag.Duration("wait", 30*time.Second, "等待终止事件的上限")

	serveAddr  = flag.String("serve-addr", "", "serve 模式下主服务器 TCP 监听地址（为空则不提供主机列表）")
	basicInfo  = flag.String("basic-info", "", "serve 模式下应答的基础信息")
	extraReply = flag.String("extra-info", "", "serve 模式下应答的扩展信息")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Println(hostdisco.VersionInfo())
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		printHelp()
		return fmt.Errorf("缺少子命令")
	}
	cmd := args[0]

	n, err := types.ParseNetwork(*network)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd == "serve")
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("启动 hostdisco", "version", hostdisco.Version, "command", cmd)
	client, err := hostdisco.Start(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = client.Close() }()

	switch cmd {
	case "refresh":
		err = client.RefreshHostList(ctx, n, interfaces.RefreshOptions{
			GetExtraHostInfo: *extraInfo,
			RemoveStaleHosts: *removeStale,
		})
	case "discover":
		err = client.DiscoverHostList(ctx, n, *removeStale)
	case "host":
		if len(args) < 2 {
			return fmt.Errorf("host 子命令需要目标地址")
		}
		var addr types.Address
		addr, err = types.ParseAddress(args[1])
		if err != nil {
			return err
		}
		err = client.RefreshHost(ctx, n, addr, interfaces.RefreshOptions{
			AllowDiscovery:   true,
			GetExtraHostInfo: *extraInfo,
		})
	case "serve":
		return serve(ctx, client)
	default:
		printHelp()
		return fmt.Errorf("未知子命令: %s", cmd)
	}
	if err != nil {
		return err
	}
	return awaitEvent(ctx, client)
}

// buildOptions 合并配置文件、环境变量与命令行参数
func buildOptions(serving bool) ([]hostdisco.Option, error) {
	var cfg *config.Config
	presetName := *preset

	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	} else {
		if serving && !isFlagSet("preset") {
			presetName = hostdisco.PresetNameHost
		}
		if envPreset := os.Getenv(envPrefix + envPreset); envPreset != "" && !isFlagSet("preset") {
			presetName = envPreset
		}
		byPreset, err := hostdisco.ConfigByPreset(presetName)
		if err != nil {
			return nil, err
		}
		cfg = byPreset
	}
	applyEnvOverrides(cfg)

	if isFlagSet("listen") {
		cfg.Ping.ListenAddr = *listenAddr
	}
	if isFlagSet("master") {
		cfg.Discovery.MasterServers = splitAndTrim(*masters, ",")
	}
	if isFlagSet("lan-broadcast") {
		cfg.Discovery.LANBroadcast = splitAndTrim(*lanBroadcast, ",")
	}
	if isFlagSet("project") {
		cfg.Discovery.ProjectID = *projectID
	}
	// 命令行工具不暴露指标端点
	cfg.Metrics.Enabled = false

	opts := []hostdisco.Option{hostdisco.WithConfig(cfg)}
	if serving {
		opts = append(opts, hostdisco.WithHostInfo([]byte(*basicInfo), []byte(*extraReply)))
	}
	return opts, nil
}

// awaitEvent 等待一个终止事件并打印
func awaitEvent(ctx context.Context, client *hostdisco.Client) error {
	timer := time.NewTimer(*wait)
	defer timer.Stop()

	select {
	case ev, ok := <-client.Events():
		if !ok {
			return hostdisco.ErrClientClosed
		}
		return printEvent(ev)
	case <-timer.C:
		return fmt.Errorf("等待结果超时 (%s)", *wait)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serve 应答 ping，可选地以主服务器身份提供缓存的主机列表
func serve(ctx context.Context, client *hostdisco.Client) error {
	fmt.Printf("📦 %s\n", hostdisco.VersionInfo())
	fmt.Printf("应答 ping: %s\n", client.LocalAddr())

	if *serveAddr != "" {
		srv := link.NewServer(link.ConfigFromUnified(client.Config()), client.Coordinator().HostList)
		if err := srv.Listen(*serveAddr); err != nil {
			return fmt.Errorf("主服务器监听失败: %w", err)
		}
		defer func() { _ = srv.Close() }()
		fmt.Printf("主服务器: %s\n", srv.Addr())
	}

	fmt.Println("按 Ctrl+C 退出")
	<-ctx.Done()
	fmt.Println("\n正在关闭...")
	return nil
}

func printEvent(ev types.Event) error {
	switch ev := ev.(type) {
	case types.HostListRefreshed:
		fmt.Printf("[%s] 主机列表: %d 个主机，移除 %d 个\n", ev.Network, len(ev.Hosts), len(ev.Removed))
		for _, h := range ev.Hosts {
			printHost(h.Address, h.Data, h.New)
		}
	case types.SingleHostRefreshed:
		if !ev.Found {
			fmt.Printf("[%s] %s 无响应\n", ev.Network, ev.Address)
			return nil
		}
		printHost(ev.Address, ev.Data, ev.New)
	case types.RefreshCancelledOrFailed:
		return fmt.Errorf("[%s] 刷新失败: %w", ev.Network, ev.Reason)
	}
	return nil
}

func printHost(addr types.Address, d types.RespondingHostData, isNew bool) {
	mark := " "
	if isNew {
		mark = "+"
	}
	fmt.Printf(" %s %-22s %5dms  %-10s basic=%q extra=%q\n",
		mark, addr, d.RoundTripMs(), d.Provenance, d.BasicInfo, d.ExtraInfo)
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `hostdisco - 游戏主机发现与刷新

用法:
  hostdisco [参数] refresh | discover | host <ip:port> | serve

参数:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
环境变量:
  %sPRESET, %sMASTER_SERVERS, %sLAN_BROADCAST, %sPROJECT_ID, %sLISTEN_ADDR
  HOSTDISCO_LOG_LEVEL, HOSTDISCO_LOG_FORMAT
`, envPrefix, envPrefix, envPrefix, envPrefix, envPrefix)
}

package types

// ============================================================================
//                              Network - 网络类型
// ============================================================================

// Network 主机所在网络
type Network int

const (
	// NetworkLAN 局域网：直接探测
	NetworkLAN Network = iota
	// NetworkInternet 互联网：经由主服务器间接发现
	NetworkInternet
)

// String 返回网络的字符串表示
func (n Network) String() string {
	switch n {
	case NetworkLAN:
		return "lan"
	case NetworkInternet:
		return "internet"
	default:
		return "unknown"
	}
}

// ParseNetwork 解析网络名称
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "lan", "LAN":
		return NetworkLAN, nil
	case "internet", "Internet":
		return NetworkInternet, nil
	default:
		return 0, ErrUnknownNetwork
	}
}

// ============================================================================
//                              DiscoveryMode - 发现模式
// ============================================================================

// DiscoveryMode 引擎当前的发现模式
//
// 全引擎同一时刻只有一个值，决定哪种请求可以处于活跃状态。
type DiscoveryMode int

const (
	// ModeIdle 空闲
	ModeIdle DiscoveryMode = iota
	// ModeRefresh 单主机刷新
	ModeRefresh
	// ModeRefreshList 主机列表刷新
	ModeRefreshList
)

// String 返回模式的字符串表示
func (m DiscoveryMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRefresh:
		return "refresh"
	case ModeRefreshList:
		return "refresh-list"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              DiscoveryStage - 发现阶段
// ============================================================================

// DiscoveryStage 请求所处阶段
//
// 阶段只能前进：Unresponding < BasicHostInfo < ExtraHostInfo < Flushed。
type DiscoveryStage int

const (
	// StageUnresponding 尚无任何响应
	StageUnresponding DiscoveryStage = iota
	// StageBasicHostInfo 已获得基础主机信息
	StageBasicHostInfo
	// StageExtraHostInfo 正在收集扩展主机信息
	StageExtraHostInfo
	// StageFlushed 已提交，终止事件已派发
	StageFlushed
)

// String 返回阶段的字符串表示
func (s DiscoveryStage) String() string {
	switch s {
	case StageUnresponding:
		return "unresponding"
	case StageBasicHostInfo:
		return "basic-host-info"
	case StageExtraHostInfo:
		return "extra-host-info"
	case StageFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Provenance - 数据来源
// ============================================================================

// Provenance 主机信息的获取途径
//
// 间接结果是临时的，同一轮刷新中会被直接探测结果覆盖。
type Provenance int

const (
	// ProvenanceDirectPing 直接 ping 获得
	ProvenanceDirectPing Provenance = iota
	// ProvenanceIndirectFromMasterServer 主服务器转述获得
	ProvenanceIndirectFromMasterServer
)

// String 返回来源的字符串表示
func (p Provenance) String() string {
	switch p {
	case ProvenanceDirectPing:
		return "direct"
	case ProvenanceIndirectFromMasterServer:
		return "indirect"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              RefreshResult - 刷新结果
// ============================================================================

// RefreshResult 单个主机的刷新程度，只升不降
type RefreshResult int

const (
	// RefreshNoResponse 无响应
	RefreshNoResponse RefreshResult = iota
	// RefreshIndirectBasicHostInfo 间接获得基础信息
	RefreshIndirectBasicHostInfo
	// RefreshDirectBasicHostInfo 直接获得基础信息
	RefreshDirectBasicHostInfo
	// RefreshExtraHostInfo 获得扩展信息
	RefreshExtraHostInfo
)

// String 返回刷新结果的字符串表示
func (r RefreshResult) String() string {
	switch r {
	case RefreshNoResponse:
		return "no-response"
	case RefreshIndirectBasicHostInfo:
		return "indirect-basic"
	case RefreshDirectBasicHostInfo:
		return "direct-basic"
	case RefreshExtraHostInfo:
		return "extra"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              PingKind - Ping 类型
// ============================================================================

// PingKind Ping 批次的用途标签
type PingKind int

const (
	// PingRefresh 直接刷新单个主机
	PingRefresh PingKind = iota + 1
	// PingRefreshList 刷新主机列表
	PingRefreshList
	// PingMasterServerRefreshHost 请求主服务器转述某个主机
	PingMasterServerRefreshHost
	// PingExtraHostInfo 获取扩展主机信息
	PingExtraHostInfo
)

// String 返回 Ping 类型的字符串表示
func (k PingKind) String() string {
	switch k {
	case PingRefresh:
		return "refresh"
	case PingRefreshList:
		return "refresh-list"
	case PingMasterServerRefreshHost:
		return "master-server-refresh-host"
	case PingExtraHostInfo:
		return "extra-host-info"
	default:
		return "unknown"
	}
}

// IsValid 检查 Ping 类型是否有效
func (k PingKind) IsValid() bool {
	return k >= PingRefresh && k <= PingExtraHostInfo
}

// ============================================================================
//                              LinkCloseReason - 链路关闭原因
// ============================================================================

// LinkCloseReason 主服务器链路关闭原因
type LinkCloseReason int

const (
	// LinkClosedRequested 本地请求关闭（优雅）
	LinkClosedRequested LinkCloseReason = iota
	// LinkClosedRemote 对端关闭
	LinkClosedRemote
	// LinkClosedError 链路错误
	LinkClosedError
	// LinkClosedTimeout 链路超时
	LinkClosedTimeout
)

// String 返回关闭原因的字符串表示
func (r LinkCloseReason) String() string {
	switch r {
	case LinkClosedRequested:
		return "requested"
	case LinkClosedRemote:
		return "remote"
	case LinkClosedError:
		return "error"
	case LinkClosedTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// IsGraceful 是否为本地发起的优雅关闭
func (r LinkCloseReason) IsGraceful() bool {
	return r == LinkClosedRequested
}

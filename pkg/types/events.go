package types

// ============================================================================
//                              终止事件
// ============================================================================

// Event 终止事件
//
// 事件集合是封闭的：只有 HostListRefreshed、SingleHostRefreshed、
// RefreshCancelledOrFailed 三种。使用类型 switch 处理。
type Event interface {
	// EventNetwork 事件所属网络
	EventNetwork() Network

	isEvent()
}

// HostListRefreshed 主机列表刷新完成
//
// 找不到任何主机不是错误：Hosts 为空时依然派发本事件。
type HostListRefreshed struct {
	// Network 所属网络
	Network Network

	// Hosts 去重后的最终结果，按地址排序
	Hosts []HostResult

	// Removed 本轮被移除的陈旧主机
	Removed []Address

	// Discovery 本轮是否允许发现新主机
	Discovery bool

	// MasterServerReached 是否成功连接过主服务器（仅供参考）
	MasterServerReached bool
}

// EventNetwork 实现 Event
func (e HostListRefreshed) EventNetwork() Network { return e.Network }

func (HostListRefreshed) isEvent() {}

// SingleHostRefreshed 单主机刷新完成
type SingleHostRefreshed struct {
	// Network 所属网络
	Network Network

	// Address 目标地址
	Address Address

	// Found 是否得到响应；为 false 时 Data 为零值
	Found bool

	// Data 主机数据
	Data RespondingHostData

	// New 是否为新发现的主机
	New bool

	// Removed 是否作为陈旧主机被移除
	Removed bool
}

// EventNetwork 实现 Event
func (e SingleHostRefreshed) EventNetwork() Network { return e.Network }

func (SingleHostRefreshed) isEvent() {}

// RefreshCancelledOrFailed 刷新失败
//
// Cancel() 不会派发本事件；只有内部失败（如主机列表消息无法解析）才会。
type RefreshCancelledOrFailed struct {
	// Network 所属网络
	Network Network

	// Mode 失败时的发现模式
	Mode DiscoveryMode

	// Reason 失败原因
	Reason error
}

// EventNetwork 实现 Event
func (e RefreshCancelledOrFailed) EventNetwork() Network { return e.Network }

func (RefreshCancelledOrFailed) isEvent() {}

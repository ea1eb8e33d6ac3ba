package types

import (
	"bytes"
	"time"
)

// ============================================================================
//                              RespondingHostData - 响应主机数据
// ============================================================================

// RespondingHostData 单个地址的主机数据
//
// BasicInfo / ExtraInfo 对发现引擎是不透明的字节块，由主机自行定义格式。
type RespondingHostData struct {
	// BasicInfo 基础主机信息
	BasicInfo []byte

	// ExtraInfo 扩展主机信息
	ExtraInfo []byte

	// RoundTripTime 往返时间
	RoundTripTime time.Duration

	// Provenance 数据来源
	Provenance Provenance

	// Result 刷新程度
	Result RefreshResult
}

// UpdateToBasic 将刷新结果提升到基础信息级别
//
// 已经更高的结果不会被降级。
func (d *RespondingHostData) UpdateToBasic(indirect bool) {
	target := RefreshDirectBasicHostInfo
	if indirect {
		target = RefreshIndirectBasicHostInfo
	}
	if d.Result < target {
		d.Result = target
	}
}

// UpdateToExtra 将刷新结果提升到扩展信息级别
func (d *RespondingHostData) UpdateToExtra() {
	if d.Result < RefreshExtraHostInfo {
		d.Result = RefreshExtraHostInfo
	}
}

// Responded 是否得到过任何响应
func (d RespondingHostData) Responded() bool {
	return d.Result != RefreshNoResponse
}

// RoundTripMs 往返时间（毫秒）
func (d RespondingHostData) RoundTripMs() int64 {
	return d.RoundTripTime.Milliseconds()
}

// Clone 深拷贝
func (d RespondingHostData) Clone() RespondingHostData {
	c := d
	c.BasicInfo = bytes.Clone(d.BasicInfo)
	c.ExtraInfo = bytes.Clone(d.ExtraInfo)
	return c
}

// Merge 以 update 覆盖当前数据
//
// 空的信息块不会清除已有信息，这样一次不完整的刷新不会抹掉旧数据。
// 主服务器转述的数据没有测得的往返时间，保留旧值。
func (d RespondingHostData) Merge(update RespondingHostData) RespondingHostData {
	out := d.Clone()
	if len(update.BasicInfo) > 0 {
		out.BasicInfo = bytes.Clone(update.BasicInfo)
	}
	if len(update.ExtraInfo) > 0 {
		out.ExtraInfo = bytes.Clone(update.ExtraInfo)
	}
	if update.Responded() {
		if update.Provenance != ProvenanceIndirectFromMasterServer {
			out.RoundTripTime = update.RoundTripTime
		}
		out.Provenance = update.Provenance
		out.Result = update.Result
	}
	return out
}

// Equal 比较两份数据是否相同
func (d RespondingHostData) Equal(o RespondingHostData) bool {
	return d.RoundTripTime == o.RoundTripTime &&
		d.Provenance == o.Provenance &&
		d.Result == o.Result &&
		bytes.Equal(d.BasicInfo, o.BasicInfo) &&
		bytes.Equal(d.ExtraInfo, o.ExtraInfo)
}

// ============================================================================
//                              HostRecord - 主机缓存记录
// ============================================================================

// HostRecord HostRecordStore 中的一条缓存记录
type HostRecord struct {
	// Address 主机地址
	Address Address

	// Data 主机数据
	Data RespondingHostData

	// UpdatedAt 最后一次提交时间
	UpdatedAt time.Time
}

// Clone 深拷贝
func (r HostRecord) Clone() HostRecord {
	r.Data = r.Data.Clone()
	return r
}

// ============================================================================
//                              HostResult - 刷新结果条目
// ============================================================================

// HostResult 终止事件中的单个主机结果
type HostResult struct {
	// Address 主机地址
	Address Address

	// Data 本轮刷新得到的数据
	Data RespondingHostData

	// New 是否为本轮新发现的主机
	New bool
}

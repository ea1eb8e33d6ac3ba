package request

import (
	"fmt"
	"sort"
	"time"

	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// ============================================================================
//                              Kind - 请求变体
// ============================================================================

// Kind 请求变体
type Kind int

const (
	// KindSingle 单主机请求
	KindSingle Kind = iota
	// KindMulti 多主机请求
	KindMulti
)

// String 返回变体名称
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ============================================================================
//                              Request - 发现请求
// ============================================================================

// entry 单个地址在本请求中的暂存数据
type entry struct {
	data types.RespondingHostData

	// known 暂存时该地址是否已在 HostRecordStore 中
	known bool

	// direct 是否收到过直接 Pong（首次响应标记）
	direct bool
}

// Request 一次发现请求
//
// 不变式：stage 只前进；一个地址在 responding 中至多出现一次。
type Request struct {
	kind  Kind
	opts  interfaces.RefreshOptions
	stage types.DiscoveryStage

	// single
	target          types.Address
	previouslyKnown bool

	// multi: 请求开始时缓存中的地址，未直接响应即为陈旧候选
	expected map[types.Address]struct{}

	responding map[types.Address]*entry
	order      []types.Address

	masterServerReached bool
	startedAt           time.Time
}

// NewSingle 创建单主机请求
func NewSingle(target types.Address, previouslyKnown bool, opts interfaces.RefreshOptions, now time.Time) *Request {
	return &Request{
		kind:            KindSingle,
		opts:            opts,
		stage:           types.StageUnresponding,
		target:          target,
		previouslyKnown: previouslyKnown,
		responding:      make(map[types.Address]*entry),
		startedAt:       now,
	}
}

// NewMulti 创建多主机请求
//
// expected 是请求开始时缓存中的全部地址。
func NewMulti(expected []types.Address, opts interfaces.RefreshOptions, now time.Time) *Request {
	r := &Request{
		kind:       KindMulti,
		opts:       opts,
		stage:      types.StageUnresponding,
		expected:   make(map[types.Address]struct{}, len(expected)),
		responding: make(map[types.Address]*entry),
		startedAt:  now,
	}
	for _, a := range expected {
		r.expected[a] = struct{}{}
	}
	return r
}

// Kind 请求变体
func (r *Request) Kind() Kind { return r.kind }

// Options 刷新选项
func (r *Request) Options() interfaces.RefreshOptions { return r.opts }

// Stage 当前阶段
func (r *Request) Stage() types.DiscoveryStage { return r.stage }

// StartedAt 请求创建时间
func (r *Request) StartedAt() time.Time { return r.startedAt }

// Target 单主机请求的目标地址
func (r *Request) Target() types.Address { return r.target }

// PreviouslyKnown 单主机请求开始前目标是否已缓存
func (r *Request) PreviouslyKnown() bool { return r.previouslyKnown }

// Expected 多主机请求开始时缓存的地址（排序）
func (r *Request) Expected() []types.Address {
	out := make([]types.Address, 0, len(r.expected))
	for a := range r.expected {
		out = append(out, a)
	}
	types.SortAddresses(out)
	return out
}

// IsExpected 地址是否在请求开始时已缓存
func (r *Request) IsExpected(addr types.Address) bool {
	if r.kind == KindSingle {
		return addr == r.target && r.previouslyKnown
	}
	_, ok := r.expected[addr]
	return ok
}

// SetMasterServerReached 标记成功连接过主服务器
func (r *Request) SetMasterServerReached() { r.masterServerReached = true }

// MasterServerReached 是否成功连接过主服务器
func (r *Request) MasterServerReached() bool { return r.masterServerReached }

// ============================================================================
//                              阶段推进
// ============================================================================

// Advance 推进到指定阶段
//
// 推进到当前阶段是无操作；后退返回 ErrStageRegression 且不修改状态。
func (r *Request) Advance(to types.DiscoveryStage) error {
	if to < r.stage {
		return fmt.Errorf("%w: %s -> %s", ErrStageRegression, r.stage, to)
	}
	r.stage = to
	return nil
}

// Flushed 是否已 flush
func (r *Request) Flushed() bool { return r.stage == types.StageFlushed }

// ============================================================================
//                              响应暂存
// ============================================================================

// Accepts 地址能否加入本请求
//
// 已缓存的地址总是可以；未知地址只在允许发现时可以。
// 单主机请求只接受目标地址。
func (r *Request) Accepts(addr types.Address, known bool) bool {
	if r.kind == KindSingle && addr != r.target {
		return false
	}
	return known || r.opts.AllowDiscovery
}

// StageIndirect 暂存来自主服务器的间接数据
//
// 已有直接响应的地址只保留直接数据。返回 true 表示地址首次加入响应集合。
func (r *Request) StageIndirect(addr types.Address, basic []byte, known bool) bool {
	e, ok := r.responding[addr]
	if !ok {
		e = &entry{known: known}
		r.responding[addr] = e
		r.order = append(r.order, addr)
	}
	if e.direct {
		return !ok
	}
	if len(basic) > 0 {
		e.data.BasicInfo = append([]byte(nil), basic...)
	}
	e.data.Provenance = types.ProvenanceIndirectFromMasterServer
	e.data.UpdateToBasic(true)
	return !ok
}

// RecordPong 记录直接 Pong
//
// 首次响应写入直接数据并覆盖任何间接数据；重复响应只刷新往返时间。
// 返回是否为该地址本请求内的首次直接响应。
func (r *Request) RecordPong(addr types.Address, rtt time.Duration, basic []byte, known bool) bool {
	e, ok := r.responding[addr]
	if !ok {
		e = &entry{known: known}
		r.responding[addr] = e
		r.order = append(r.order, addr)
	}
	if e.direct {
		e.data.RoundTripTime = rtt
		return false
	}
	e.direct = true
	e.data.RoundTripTime = rtt
	e.data.Provenance = types.ProvenanceDirectPing
	if len(basic) > 0 {
		e.data.BasicInfo = append([]byte(nil), basic...)
	}
	if e.data.Result < types.RefreshDirectBasicHostInfo {
		e.data.Result = types.RefreshDirectBasicHostInfo
	}
	return true
}

// RecordExtra 记录扩展信息
//
// 没有产生过基础信息的地址被跳过，返回 false。
func (r *Request) RecordExtra(addr types.Address, rtt time.Duration, extra []byte) bool {
	e, ok := r.responding[addr]
	if !ok || !e.data.Responded() {
		return false
	}
	if len(extra) > 0 {
		e.data.ExtraInfo = append([]byte(nil), extra...)
	}
	if e.direct {
		e.data.RoundTripTime = rtt
	}
	e.data.UpdateToExtra()
	return true
}

// Data 地址的暂存数据
func (r *Request) Data(addr types.Address) (types.RespondingHostData, bool) {
	e, ok := r.responding[addr]
	if !ok {
		return types.RespondingHostData{}, false
	}
	return e.data.Clone(), true
}

// IsResponding 地址是否在响应集合中
func (r *Request) IsResponding(addr types.Address) bool {
	_, ok := r.responding[addr]
	return ok
}

// IsFirstResponse 地址是否还没有直接响应过
func (r *Request) IsFirstResponse(addr types.Address) bool {
	e, ok := r.responding[addr]
	return !ok || !e.direct
}

// Responding 响应集合，按加入顺序
func (r *Request) Responding() []types.Address {
	return append([]types.Address(nil), r.order...)
}

// DirectResponders 收到过直接 Pong 的地址，按加入顺序
func (r *Request) DirectResponders() []types.Address {
	out := make([]types.Address, 0, len(r.order))
	for _, a := range r.order {
		if r.responding[a].direct {
			out = append(out, a)
		}
	}
	return out
}

// ExtraInfoTargets 扩展信息阶段要 ping 的地址
//
// 多主机请求只取直接响应的主机；单主机请求在目标有任何数据时取目标。
func (r *Request) ExtraInfoTargets() []types.Address {
	if r.kind == KindMulti {
		return r.DirectResponders()
	}
	if e, ok := r.responding[r.target]; ok && e.data.Responded() {
		return []types.Address{r.target}
	}
	return nil
}

// HasAnyData 是否有任何地址产生过数据（直接或间接）
func (r *Request) HasAnyData() bool {
	for _, e := range r.responding {
		if e.data.Responded() {
			return true
		}
	}
	return false
}

// ============================================================================
//                              Flush 计划
// ============================================================================

// Commit 一条待写入缓存的记录
type Commit struct {
	Address types.Address
	Data    types.RespondingHostData
	New     bool
}

// Plan flush 时对缓存的全部变更与事件内容
type Plan struct {
	// Commits 写入缓存的记录
	Commits []Commit

	// Removals 作为陈旧主机移除的地址（排序）
	Removals []types.Address

	// Results 终止事件中的结果（只含直接响应的主机，按地址排序）
	Results []types.HostResult
}

// BuildPlan 计算 flush 计划
//
// 规则：
//   - 直接响应的主机总是写入并出现在结果中。
//   - 只有间接数据的主机：多主机请求在 RemoveStaleHosts 时不保留；否则已缓存的
//     就地更新，未知的在允许发现时插入。
//   - 陈旧主机：请求开始前已缓存，且 probed 为 true（确实发出过探测）。
//     多主机请求要求本轮没有直接响应；单主机请求要求没有任何数据。
//
// 单主机请求的事件内容见 SingleResult。
func (r *Request) BuildPlan(probed bool) Plan {
	var plan Plan
	for _, a := range r.order {
		e := r.responding[a]
		if !e.data.Responded() {
			continue
		}
		isNew := !e.known
		if e.direct {
			plan.Commits = append(plan.Commits, Commit{Address: a, Data: e.data.Clone(), New: isNew})
			plan.Results = append(plan.Results, types.HostResult{Address: a, Data: e.data.Clone(), New: isNew})
			continue
		}
		if r.kind == KindMulti && r.opts.RemoveStaleHosts {
			continue
		}
		if e.known || r.opts.AllowDiscovery {
			plan.Commits = append(plan.Commits, Commit{Address: a, Data: e.data.Clone(), New: isNew})
		}
	}

	if r.opts.RemoveStaleHosts && probed {
		for _, a := range r.staleCandidates() {
			if r.answered(a) {
				continue
			}
			plan.Removals = append(plan.Removals, a)
		}
		types.SortAddresses(plan.Removals)
	}

	sortResults(plan.Results)
	return plan
}

// answered 地址本轮是否算作已响应
func (r *Request) answered(addr types.Address) bool {
	e, ok := r.responding[addr]
	if !ok {
		return false
	}
	if r.kind == KindSingle {
		return e.data.Responded()
	}
	return e.direct
}

func (r *Request) staleCandidates() []types.Address {
	if r.kind == KindSingle {
		if r.previouslyKnown {
			return []types.Address{r.target}
		}
		return nil
	}
	return r.Expected()
}

// SingleResult 单主机请求的事件内容
//
// 有直接数据时使用直接数据；否则退回间接数据（Found 仍为 true）；都没有则 notFound。
func (r *Request) SingleResult() (data types.RespondingHostData, found bool, isNew bool) {
	e, ok := r.responding[r.target]
	if !ok || !e.data.Responded() {
		return types.RespondingHostData{}, false, false
	}
	return e.data.Clone(), true, !r.previouslyKnown && r.opts.AllowDiscovery
}

func sortResults(results []types.HostResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Address.Less(results[j].Address) })
}

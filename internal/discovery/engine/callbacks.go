package engine

import (
	"time"

	"github.com/dep2p/go-hostdisco/internal/discovery/masterserver"
	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/interfaces"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// ============================================================================
//                              链路回调
// ============================================================================

// OnConnectAccepted 主服务器接受连接：发送主机列表请求
func (e *Engine) OnConnectAccepted(id interfaces.AttemptID, addr types.Address) {
	if e.connector == nil || !e.connector.Accepted(id, addr) {
		return
	}
	if e.mode != types.ModeRefreshList || e.req == nil {
		e.connector.Abort()
		return
	}
	e.req.SetMasterServerReached()
	logger.Debug("已连接主服务器", "network", e.cfg.Network, "addr", addr)

	msg := wire.HostListRequest{ProjectID: e.cfg.ProjectID}.Marshal()
	if err := e.transport.SendMessage(addr, msg); err != nil {
		logger.Warn("发送主机列表请求失败", "addr", addr, "err", err)
		e.connector.Drop()
		e.tryNextMasterServer()
	}
}

// OnConnectDenied 主服务器拒绝连接：回退到下一个
func (e *Engine) OnConnectDenied(id interfaces.AttemptID) {
	if e.connector == nil || !e.connector.Denied(id) {
		return
	}
	if e.awaitingHostList() {
		e.tryNextMasterServer()
	}
}

// OnLinkClosed 链路关闭：收到列表前的意外关闭触发回退
func (e *Engine) OnLinkClosed(addr types.Address, reason types.LinkCloseReason) {
	if e.connector == nil {
		return
	}
	if e.connector.LinkClosed(addr, reason) == masterserver.CloseFallback && e.awaitingHostList() {
		e.tryNextMasterServer()
	}
}

// OnMessage 处理主服务器消息（主机记录列表）
func (e *Engine) OnMessage(addr types.Address, msg []byte) {
	if !e.awaitingHostList() || e.connector == nil || !e.connector.IsConnected(addr) {
		logger.Debug("丢弃非预期的链路消息", "network", e.cfg.Network, "addr", addr, "mode", e.mode)
		return
	}

	list, err := wire.UnmarshalHostRecordList(msg)
	if err != nil {
		logger.Warn("主机列表无法解析，本次刷新失败", "network", e.cfg.Network, "addr", addr, "err", err)
		e.fail(err)
		return
	}

	e.connector.MarkRecordListReceived()
	_ = e.req.Advance(types.StageBasicHostInfo)

	var added []types.Address
	skipped := 0
	for _, rec := range list.Records {
		known := e.store.Has(rec.Address)
		if !e.req.Accepts(rec.Address, known) {
			skipped++
			continue
		}
		if e.req.StageIndirect(rec.Address, rec.BasicInfo, known) {
			added = append(added, rec.Address)
		}
	}
	logger.Debug("收到主机列表",
		"network", e.cfg.Network,
		"master", addr,
		"records", len(list.Records),
		"added", len(added),
		"skipped", skipped)

	started := e.startBatch(types.PingRefreshList, added, nil, e.cfg.BasicHostInfoTimeout, false)
	e.connector.CloseLink()
	if !started {
		e.advance()
	}
}

// awaitingHostList 是否处于等待主机列表的状态
func (e *Engine) awaitingHostList() bool {
	return e.mode == types.ModeRefreshList && e.req != nil && e.req.Stage() == types.StageUnresponding
}

// ============================================================================
//                              Ping 回调
// ============================================================================

// OnPong 处理 pong
//
// 不属于当前请求的批次（已取消、已结束或旧代号）被静默忽略。
func (e *Engine) OnPong(id interfaces.BatchID, addr types.Address, rtt time.Duration, payload []byte) {
	b, ok := e.batches[id]
	if !ok || b.gen != e.gen || e.req == nil {
		return
	}
	if _, targeted := b.targets[addr]; !targeted && !b.openEnded {
		logger.Debug("忽略非目标地址的 pong", "batch", id, "addr", addr)
		return
	}
	delete(b.waiting, addr)
	e.metrics.pong(e.cfg.Network, b.kind)

	switch b.kind {
	case types.PingRefreshList:
		e.onListPong(addr, rtt, payload)
	case types.PingRefresh:
		e.onRefreshPong(addr, rtt, payload)
	case types.PingMasterServerRefreshHost:
		e.onRelayPong(addr, payload)
	case types.PingExtraHostInfo:
		e.onExtraPong(addr, rtt, payload)
	}

	// 处理过程中批次可能已被移除（flush、阶段切换）
	if cur, still := e.batches[id]; still && cur == b && len(b.waiting) == 0 && !b.openEnded {
		e.finishBatch(id)
	}
}

// OnPingBatchTimeout 批次超时
func (e *Engine) OnPingBatchTimeout(id interfaces.BatchID, unresponded []types.Address) {
	b, ok := e.batches[id]
	if !ok || b.gen != e.gen {
		return
	}
	logger.Debug("ping 批次超时", "network", e.cfg.Network, "batch", id, "kind", b.kind, "unresponded", len(unresponded))
	delete(e.batches, id)
	e.advance()
}

// OnPingCancelled 批次被协调器取消
//
// 引擎自己取消的批次已经注销，不会走到这里；外部取消按超时处理。
func (e *Engine) OnPingCancelled(id interfaces.BatchID) {
	b, ok := e.batches[id]
	if !ok || b.gen != e.gen {
		return
	}
	logger.Debug("ping 批次被取消", "network", e.cfg.Network, "batch", id, "kind", b.kind)
	delete(e.batches, id)
	e.advance()
}

// finishBatch 所有目标都已响应，提前结束批次
func (e *Engine) finishBatch(id interfaces.BatchID) {
	delete(e.batches, id)
	e.pinger.CancelBatch(id)
	e.advance()
}

// onListPong 列表刷新的直接 pong
func (e *Engine) onListPong(addr types.Address, rtt time.Duration, basic []byte) {
	if e.req.Stage() != types.StageBasicHostInfo {
		return
	}
	known := e.store.Has(addr)
	if !e.req.IsResponding(addr) && !e.req.Accepts(addr, known) {
		return
	}
	if !e.req.RecordPong(addr, rtt, basic, known) {
		logger.Debug("重复 pong，只刷新往返时间", "addr", addr, "rtt", rtt)
	}
}

// onRefreshPong 单主机刷新的直接 pong：直接数据到手，其余批次不再需要
func (e *Engine) onRefreshPong(addr types.Address, rtt time.Duration, basic []byte) {
	if addr != e.req.Target() || e.req.Stage() >= types.StageExtraHostInfo {
		return
	}
	if !e.req.RecordPong(addr, rtt, basic, e.req.PreviouslyKnown()) {
		return
	}
	_ = e.req.Advance(types.StageBasicHostInfo)
	e.dropBatches()
	e.advance()
}

// onRelayPong 主服务器代答：只作为首次接触信号，必须跟进一次直接 ping
func (e *Engine) onRelayPong(from types.Address, payload []byte) {
	if e.req.Stage() >= types.StageExtraHostInfo {
		return
	}
	reply, err := wire.UnmarshalRefreshHostReply(payload)
	if err != nil {
		logger.Debug("无法解析主服务器代答", "master", from, "err", err)
		return
	}
	target := e.req.Target()
	if reply.Address != target || !reply.Found {
		return
	}
	if !e.req.IsFirstResponse(target) {
		return
	}
	e.req.StageIndirect(target, reply.BasicInfo, e.req.PreviouslyKnown())
	_ = e.req.Advance(types.StageBasicHostInfo)

	if e.followUp {
		return
	}
	e.followUp = true
	logger.Debug("主服务器确认主机存在，跟进直接 ping", "master", from, "addr", target)
	payloadOut := wire.RefreshTarget{Address: target}.Marshal()
	e.startBatch(types.PingRefresh, []types.Address{target}, payloadOut, e.cfg.BasicHostInfoTimeout, false)
}

// onExtraPong 扩展信息 pong
func (e *Engine) onExtraPong(addr types.Address, rtt time.Duration, extra []byte) {
	if e.req.Stage() != types.StageExtraHostInfo {
		return
	}
	if !e.req.RecordExtra(addr, rtt, extra) {
		logger.Debug("跳过没有基础信息的扩展信息", "addr", addr)
	}
}

package engine

import (
	"fmt"
	"time"

	"github.com/dep2p/go-hostdisco/internal/discovery/request"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// ============================================================================
//                              Flush
// ============================================================================

// flush 提交当前请求并派发唯一的终止事件
//
// 这是写入 HostRecordStore 的唯一位置。请求在派发前就已注销，
// 监听器在回调中发起新的刷新是安全的。
func (e *Engine) flush() {
	req := e.req
	if req == nil || req.Flushed() {
		return
	}
	mode := e.mode
	plan := req.BuildPlan(e.probed)

	now := e.clock.Now()
	for _, c := range plan.Commits {
		if _, err := e.store.Upsert(types.HostRecord{Address: c.Address, Data: c.Data, UpdatedAt: now}); err != nil {
			logger.Warn("写入主机记录失败", "network", e.cfg.Network, "addr", c.Address, "err", err)
		}
	}
	var removed []types.Address
	for _, a := range plan.Removals {
		if e.store.Remove(a) {
			removed = append(removed, a)
		}
	}

	_ = req.Advance(types.StageFlushed)
	e.teardown()
	e.metrics.setHosts(e.cfg.Network, e.store.Len())

	took := now.Sub(req.StartedAt())
	switch req.Kind() {
	case request.KindSingle:
		e.dispatchSingle(req, removed, took)
	case request.KindMulti:
		e.dispatchList(req, plan, removed, took)
	default:
		panic(fmt.Sprintf("engine: unknown request kind %v in mode %v", req.Kind(), mode))
	}
}

func (e *Engine) dispatchSingle(req *request.Request, removed []types.Address, took time.Duration) {
	data, found, isNew := req.SingleResult()
	ev := types.SingleHostRefreshed{
		Network: e.cfg.Network,
		Address: req.Target(),
		Found:   found,
		Data:    data,
		New:     isNew,
		Removed: len(removed) > 0,
	}
	outcome := outcomeHosts
	if !found {
		outcome = outcomeNotFound
	}
	e.metrics.completed(e.cfg.Network, types.ModeRefresh, outcome, took)
	logger.Debug("单主机刷新完成", "network", e.cfg.Network, "addr", ev.Address, "found", found, "removed", ev.Removed)
	e.listener.OnSingleHostRefreshed(ev)
}

func (e *Engine) dispatchList(req *request.Request, plan request.Plan, removed []types.Address, took time.Duration) {
	ev := types.HostListRefreshed{
		Network:             e.cfg.Network,
		Hosts:               plan.Results,
		Removed:             removed,
		Discovery:           req.Options().AllowDiscovery,
		MasterServerReached: req.MasterServerReached(),
	}
	outcome := outcomeHosts
	if len(ev.Hosts) == 0 {
		outcome = outcomeEmpty
	}
	e.metrics.completed(e.cfg.Network, types.ModeRefreshList, outcome, took)
	logger.Info("主机列表刷新完成",
		"network", e.cfg.Network,
		"hosts", len(ev.Hosts),
		"removed", len(removed),
		"masterServerReached", ev.MasterServerReached)
	e.listener.OnHostListRefreshed(ev)
}

// fail 以失败结束当前请求：不写缓存，派发 RefreshCancelledOrFailed
func (e *Engine) fail(cause error) {
	req := e.req
	if req == nil || req.Flushed() {
		return
	}
	mode := e.mode
	_ = req.Advance(types.StageFlushed)
	e.teardown()

	e.metrics.completed(e.cfg.Network, mode, outcomeFailed, e.clock.Since(req.StartedAt()))
	e.listener.OnRefreshCancelledOrFailed(types.RefreshCancelledOrFailed{
		Network: e.cfg.Network,
		Mode:    mode,
		Reason:  fmt.Errorf("%w: %v", ErrHostListDecode, cause),
	})
}

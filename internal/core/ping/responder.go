package ping

import (
	"sync"

	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// RelayLookup 主服务器角色下查询已知主机
type RelayLookup func(addr types.Address) (basic []byte, found bool)

// Responder 主机一侧的 ping 应答器
//
// 基础/扩展信息对协调器是不透明的，由宿主程序随时更新。
// 设置了 RelayLookup 时还会以主服务器身份应答 MasterServerRefreshHost。
type Responder struct {
	projectID string

	mu     sync.RWMutex
	basic  []byte
	extra  []byte
	lookup RelayLookup
}

// NewResponder 创建应答器
func NewResponder(projectID string) *Responder {
	return &Responder{projectID: projectID}
}

// SetHostInfo 更新应答内容
func (r *Responder) SetHostInfo(basic, extra []byte) {
	r.mu.Lock()
	r.basic = append([]byte(nil), basic...)
	r.extra = append([]byte(nil), extra...)
	r.mu.Unlock()
}

// SetRelayLookup 设置主服务器查询，nil 表示不代答
func (r *Responder) SetRelayLookup(fn RelayLookup) {
	r.mu.Lock()
	r.lookup = fn
	r.mu.Unlock()
}

// Respond 为 ping 生成 pong，false 表示不应答
func (r *Responder) Respond(from types.Address, p wire.Ping) (wire.Pong, bool) {
	r.mu.RLock()
	basic, extra, lookup := r.basic, r.extra, r.lookup
	r.mu.RUnlock()

	pong := wire.Pong{
		Nonce:     p.Nonce,
		Kind:      p.Kind,
		ProjectID: r.projectID,
		Attempt:   p.Attempt,
	}

	switch p.Kind {
	case types.PingRefresh, types.PingRefreshList:
		pong.BasicInfo = basic
	case types.PingExtraHostInfo:
		pong.BasicInfo = basic
		pong.ExtraInfo = extra
	case types.PingMasterServerRefreshHost:
		if lookup == nil {
			return wire.Pong{}, false
		}
		target, err := wire.UnmarshalRefreshTarget(p.Payload)
		if err != nil {
			logger.Debug("无法解析代答目标", "from", from, "err", err)
			return wire.Pong{}, false
		}
		info, found := lookup(target.Address)
		pong.Payload = wire.RefreshHostReply{
			Address:   target.Address,
			Found:     found,
			BasicInfo: info,
		}.Marshal()
	default:
		return wire.Pong{}, false
	}
	return pong, true
}

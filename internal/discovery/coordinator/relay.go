package coordinator

import (
	"context"
	"time"

	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// lookupTimeout 代答查询等待事件循环的上限
const lookupTimeout = time.Second

// LookupBasic 查询缓存主机的基础信息，供主服务器角色代答 MasterServerRefreshHost
func (c *Coordinator) LookupBasic(addr types.Address) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	rec, ok := c.Lookup(ctx, addr)
	if !ok || len(rec.Data.BasicInfo) == 0 {
		return nil, false
	}
	return rec.Data.BasicInfo, true
}

// HostList 以缓存内容应答主机列表请求
//
// 两个网络的记录合并后按地址去重，互联网记录优先。
func (c *Coordinator) HostList(_ wire.HostListRequest) wire.HostRecordList {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	var out wire.HostRecordList
	_ = c.loop.Do(ctx, func() {
		seen := make(map[types.Address]struct{})
		for _, n := range []types.Network{types.NetworkInternet, types.NetworkLAN} {
			e, ok := c.engines[n]
			if !ok {
				continue
			}
			for _, rec := range e.Store().Snapshot() {
				if _, dup := seen[rec.Address]; dup {
					continue
				}
				seen[rec.Address] = struct{}{}
				out.Records = append(out.Records, wire.HostRecord{
					Address:   rec.Address,
					BasicInfo: rec.Data.BasicInfo,
				})
			}
		}
	})
	return out
}

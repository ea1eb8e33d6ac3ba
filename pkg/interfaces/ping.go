// Package interfaces 定义 hostdisco 公共接口
//
// 本文件定义 PingCoordinator 接口。
package interfaces

import (
	"time"

	"github.com/dep2p/go-hostdisco/pkg/types"
)

// BatchID Ping 批次 ID
type BatchID uint64

// PingCoordinator 批量 ping 协调器
//
// 对每个未完成批次，协调器保证最终只回调 OnPingBatchTimeout 或 OnPingCancelled
// 之一；批次内每个地址至多回调一次 OnPong。
type PingCoordinator interface {
	// PingAddresses 向一组地址发起带标签、带超时的 ping
	//
	// payload 随每个 ping 发送，timeout 到期后回调 OnPingBatchTimeout。
	PingAddresses(addrs []types.Address, kind types.PingKind, payload []byte, timeout time.Duration) (BatchID, error)

	// CancelBatch 取消批次，之后回调 OnPingCancelled
	CancelBatch(id BatchID)
}

// PingHandler Ping 结果回调
type PingHandler interface {
	// OnPong 收到某地址的 pong
	OnPong(id BatchID, addr types.Address, rtt time.Duration, payload []byte)

	// OnPingBatchTimeout 批次超时，unresponded 为未响应的地址
	OnPingBatchTimeout(id BatchID, unresponded []types.Address)

	// OnPingCancelled 批次被取消
	OnPingCancelled(id BatchID)
}

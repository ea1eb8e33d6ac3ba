package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-hostdisco/pkg/types"
)

// ============================================================================
//                              链路消息
// ============================================================================

// HostListRequest 客户端向主服务器请求主机列表
type HostListRequest struct {
	// ProjectID 只列出该项目的主机
	ProjectID string
}

// Marshal 编码为信封
func (m HostListRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.ProjectID)
	return Seal(MsgHostListRequest, b)
}

// UnmarshalHostListRequest 从信封解码
func UnmarshalHostListRequest(data []byte) (HostListRequest, error) {
	var m HostListRequest
	body, err := OpenAs(data, MsgHostListRequest)
	if err != nil {
		return m, err
	}
	err = walk(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.ProjectID = v
			return n, true
		}
		return 0, false
	})
	return m, err
}

// HostRecord 主服务器保存的一条主机记录
type HostRecord struct {
	Address   types.Address
	BasicInfo []byte
}

// HostRecordList 主服务器返回的主机记录列表
type HostRecordList struct {
	Records []HostRecord
}

// Marshal 编码为信封
func (m HostRecordList) Marshal() []byte {
	var b []byte
	for _, r := range m.Records {
		var rb []byte
		rb = appendString(rb, 1, r.Address.String())
		rb = appendBytes(rb, 2, r.BasicInfo)
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	return Seal(MsgHostRecordList, b)
}

// UnmarshalHostRecordList 从信封解码
//
// 任何一条记录的地址非法都使整条消息无效。
func UnmarshalHostRecordList(data []byte) (HostRecordList, error) {
	var m HostRecordList
	body, err := OpenAs(data, MsgHostRecordList)
	if err != nil {
		return m, err
	}
	var recErr error
	err = walk(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num != 1 || typ != protowire.BytesType {
			return 0, false
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, true
		}
		rec, err := unmarshalHostRecord(v)
		if err != nil && recErr == nil {
			recErr = err
		}
		m.Records = append(m.Records, rec)
		return n, true
	})
	if err != nil {
		return HostRecordList{}, err
	}
	if recErr != nil {
		return HostRecordList{}, recErr
	}
	return m, nil
}

func unmarshalHostRecord(data []byte) (HostRecord, error) {
	var (
		rec  HostRecord
		addr string
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			addr = v
			return n, true
		case num == 2 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			rec.BasicInfo = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return rec, err
	}
	a, err := types.ParseAddress(addr)
	if err != nil {
		return rec, fmt.Errorf("%w: record address: %v", ErrMalformed, err)
	}
	rec.Address = a
	return rec, nil
}

// ============================================================================
//                              数据报消息
// ============================================================================

// Ping ping 数据报
type Ping struct {
	// Nonce 批次内唯一标识，pong 原样带回
	Nonce []byte

	// Kind ping 类型
	Kind types.PingKind

	// ProjectID 发送方项目
	ProjectID string

	// Attempt 重发序号，从 0 开始
	Attempt uint32

	// Payload 附带的请求载荷
	Payload []byte
}

// Marshal 编码为信封
func (m Ping) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, m.Nonce)
	b = appendVarint(b, 2, uint64(m.Kind))
	b = appendString(b, 3, m.ProjectID)
	b = appendVarint(b, 4, uint64(m.Attempt))
	b = appendBytes(b, 5, m.Payload)
	return Seal(MsgPing, b)
}

// Pong pong 数据报
type Pong struct {
	// Nonce 对应 ping 的 Nonce
	Nonce []byte

	// Kind 对应 ping 的类型
	Kind types.PingKind

	// ProjectID 应答方项目
	ProjectID string

	// BasicInfo 基础主机信息
	BasicInfo []byte

	// ExtraInfo 扩展主机信息（仅 ExtraHostInfo ping）
	ExtraInfo []byte

	// Payload 应答载荷（如 RefreshHostReply）
	Payload []byte

	// Attempt 回显所应答 ping 的 Attempt
	Attempt uint32
}

// Marshal 编码为信封
func (m Pong) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, m.Nonce)
	b = appendVarint(b, 2, uint64(m.Kind))
	b = appendString(b, 3, m.ProjectID)
	b = appendBytes(b, 4, m.BasicInfo)
	b = appendBytes(b, 5, m.ExtraInfo)
	b = appendBytes(b, 6, m.Payload)
	b = appendVarint(b, 7, uint64(m.Attempt))
	return Seal(MsgPong, b)
}

// Datagram 解码后的数据报，Ping 和 Pong 恰有一个非 nil
type Datagram struct {
	Ping *Ping
	Pong *Pong
}

// UnmarshalDatagram 解码 ping 或 pong
func UnmarshalDatagram(data []byte) (Datagram, error) {
	t, body, err := Open(data)
	if err != nil {
		return Datagram{}, err
	}
	switch t {
	case MsgPing:
		p, err := unmarshalPing(body)
		if err != nil {
			return Datagram{}, err
		}
		return Datagram{Ping: &p}, nil
	case MsgPong:
		p, err := unmarshalPong(body)
		if err != nil {
			return Datagram{}, err
		}
		return Datagram{Pong: &p}, nil
	default:
		return Datagram{}, fmt.Errorf("%w: %s is not a datagram", ErrUnexpectedType, t)
	}
}

func unmarshalPing(body []byte) (Ping, error) {
	var m Ping
	err := walk(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.Nonce = v
			return n, true
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Kind = types.PingKind(v)
			return n, true
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.ProjectID = v
			return n, true
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Attempt = uint32(v)
			return n, true
		case num == 5 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.Payload = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return m, err
	}
	if !m.Kind.IsValid() {
		return m, fmt.Errorf("%w: ping kind %d", ErrMalformed, int(m.Kind))
	}
	return m, nil
}

func unmarshalPong(body []byte) (Pong, error) {
	var m Pong
	err := walk(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.Nonce = v
			return n, true
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Kind = types.PingKind(v)
			return n, true
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.ProjectID = v
			return n, true
		case num == 4 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.BasicInfo = v
			return n, true
		case num == 5 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.ExtraInfo = v
			return n, true
		case num == 6 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.Payload = v
			return n, true
		case num == 7 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Attempt = uint32(v)
			return n, true
		}
		return 0, false
	})
	return m, err
}

// ============================================================================
//                              Ping 载荷
// ============================================================================

// RefreshTarget 单主机刷新 ping 的载荷，携带目标地址
//
// 直接 ping 超时时，引擎据此找回目标，不依赖 ping 机制提供地址。
type RefreshTarget struct {
	Address types.Address
}

// Marshal 编码（不带信封）
func (m RefreshTarget) Marshal() []byte {
	return appendString(nil, 1, m.Address.String())
}

// UnmarshalRefreshTarget 解码
func UnmarshalRefreshTarget(data []byte) (RefreshTarget, error) {
	var addr string
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			addr = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return RefreshTarget{}, err
	}
	a, err := types.ParseAddress(addr)
	if err != nil {
		return RefreshTarget{}, fmt.Errorf("%w: refresh target: %v", ErrMalformed, err)
	}
	return RefreshTarget{Address: a}, nil
}

// RefreshHostReply 主服务器对 MasterServerRefreshHost ping 的应答载荷
type RefreshHostReply struct {
	// Address 被询问的主机
	Address types.Address

	// Found 主服务器是否知道该主机
	Found bool

	// BasicInfo 主服务器记录的基础信息
	BasicInfo []byte
}

// Marshal 编码（不带信封）
func (m RefreshHostReply) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Address.String())
	b = appendBool(b, 2, m.Found)
	b = appendBytes(b, 3, m.BasicInfo)
	return b
}

// UnmarshalRefreshHostReply 解码
func UnmarshalRefreshHostReply(data []byte) (RefreshHostReply, error) {
	var (
		m    RefreshHostReply
		addr string
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			addr = v
			return n, true
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Found = protowire.DecodeBool(v)
			return n, true
		case num == 3 && typ == protowire.BytesType:
			v, n := consumeBytesCopy(b)
			m.BasicInfo = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return m, err
	}
	a, err := types.ParseAddress(addr)
	if err != nil {
		return m, fmt.Errorf("%w: reply address: %v", ErrMalformed, err)
	}
	m.Address = a
	return m, nil
}

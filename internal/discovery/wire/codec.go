package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MsgType 信封中的消息类型
type MsgType uint64

const (
	// MsgHostListRequest 主机列表请求
	MsgHostListRequest MsgType = 1
	// MsgHostRecordList 主机记录列表
	MsgHostRecordList MsgType = 2
	// MsgPing ping 数据报
	MsgPing MsgType = 3
	// MsgPong pong 数据报
	MsgPong MsgType = 4
)

// String 返回类型名称
func (t MsgType) String() string {
	switch t {
	case MsgHostListRequest:
		return "HostListRequest"
	case MsgHostRecordList:
		return "HostRecordList"
	case MsgPing:
		return "Ping"
	case MsgPong:
		return "Pong"
	default:
		return fmt.Sprintf("MsgType(%d)", uint64(t))
	}
}

// ============================================================================
//                              信封
// ============================================================================

const (
	envType protowire.Number = 1
	envBody protowire.Number = 2
)

// Seal 把消息体封装进信封
func Seal(t MsgType, body []byte) []byte {
	b := make([]byte, 0, len(body)+12)
	b = protowire.AppendTag(b, envType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t))
	b = protowire.AppendTag(b, envBody, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b
}

// Open 拆开信封，返回类型和消息体
func Open(data []byte) (MsgType, []byte, error) {
	var (
		t       MsgType
		body    []byte
		hasType bool
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == envType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			t, hasType = MsgType(v), n >= 0
			return n, true
		case num == envBody && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			body = v
			return n, true
		}
		return 0, false
	})
	if err != nil {
		return 0, nil, err
	}
	if !hasType {
		return 0, nil, fmt.Errorf("%w: envelope without type", ErrMalformed)
	}
	return t, body, nil
}

// OpenAs 拆开信封并校验类型
func OpenAs(data []byte, want MsgType) ([]byte, error) {
	t, body, err := Open(data)
	if err != nil {
		return nil, err
	}
	if t != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedType, t, want)
	}
	return body, nil
}

// ============================================================================
//                              字段遍历
// ============================================================================

// fieldFunc 处理一个字段，返回消费的字节数（负数为 protowire 错误码）
//
// known 为 false 表示不认识该字段，由 walk 跳过。
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (n int, known bool)

// walk 依次遍历消息的每个字段
func walk(data []byte, fn fieldFunc) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		m, known := fn(num, typ, data)
		if !known {
			m = protowire.ConsumeFieldValue(num, typ, data)
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// consumeBytesCopy 读取 bytes 字段并复制，避免引用底层缓冲区
func consumeBytesCopy(b []byte) ([]byte, int) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, n
	}
	return append([]byte(nil), v...), n
}

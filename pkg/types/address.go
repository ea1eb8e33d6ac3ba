package types

import (
	"fmt"
	"net"
	"net/netip"
	"sort"
)

// ============================================================================
//                              Address - 主机地址
// ============================================================================

// Address 主机端点地址（IP + 端口）
//
// Address 是所有发现数据的主键，可比较、可作为 map 键使用。
// 零值表示空地址。
type Address struct {
	netip.AddrPort
}

// AddressFrom 从 netip.AddrPort 创建地址
//
// IPv4-mapped IPv6 地址会被还原为 IPv4，保证同一主机只有一种表示。
func AddressFrom(ap netip.AddrPort) Address {
	return Address{netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())}
}

// ParseAddress 解析 "ip:port" 格式的地址
func ParseAddress(s string) (Address, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if ap.Port() == 0 {
		return Address{}, fmt.Errorf("%w: %q: port is zero", ErrInvalidAddress, s)
	}
	return AddressFrom(ap), nil
}

// MustParseAddress 解析地址，失败时 panic
//
// 仅用于测试和常量初始化。
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromUDP 从 *net.UDPAddr 创建地址
func AddressFromUDP(addr *net.UDPAddr) Address {
	if addr == nil {
		return Address{}
	}
	return AddressFrom(addr.AddrPort())
}

// AddressFromNet 从 net.Addr 创建地址，不支持的类型返回空地址
func AddressFromNet(addr net.Addr) Address {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return AddressFromUDP(a)
	case *net.TCPAddr:
		return AddressFrom(a.AddrPort())
	default:
		if addr == nil {
			return Address{}
		}
		ap, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			return Address{}
		}
		return AddressFrom(ap)
	}
}

// IsEmpty 检查是否为空地址
func (a Address) IsEmpty() bool {
	return !a.IsValid()
}

// UDPAddr 转换为 *net.UDPAddr
func (a Address) UDPAddr() *net.UDPAddr {
	return net.UDPAddrFromAddrPort(a.AddrPort)
}

// Less 地址排序比较
func (a Address) Less(b Address) bool {
	return a.Compare(b.AddrPort) < 0
}

// SortAddresses 就地排序地址切片
func SortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
}

package types

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"IPv4", "203.0.113.7:27900", "203.0.113.7:27900", false},
		{"IPv6", "[2001:db8::1]:7777", "[2001:db8::1]:7777", false},
		{"IPv4-mapped 还原", "[::ffff:192.0.2.1]:7777", "192.0.2.1:7777", false},
		{"端口为零", "192.0.2.1:0", "", true},
		{"缺少端口", "192.0.2.1", "", true},
		{"主机名", "example.com:80", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestAddressFromNet(t *testing.T) {
	udp := &net.UDPAddr{IP: net.ParseIP("192.0.2.5"), Port: 7777}
	assert.Equal(t, MustParseAddress("192.0.2.5:7777"), AddressFromNet(udp))

	tcp := &net.TCPAddr{IP: net.ParseIP("192.0.2.6"), Port: 27900}
	assert.Equal(t, MustParseAddress("192.0.2.6:27900"), AddressFromNet(tcp))

	assert.True(t, AddressFromNet(nil).IsEmpty())
	assert.True(t, Address{}.IsEmpty())
}

func TestSortAddresses(t *testing.T) {
	addrs := []Address{
		MustParseAddress("198.51.100.2:7777"),
		MustParseAddress("198.51.100.1:7778"),
		MustParseAddress("198.51.100.1:7777"),
	}
	SortAddresses(addrs)
	assert.Equal(t, []Address{
		MustParseAddress("198.51.100.1:7777"),
		MustParseAddress("198.51.100.1:7778"),
		MustParseAddress("198.51.100.2:7777"),
	}, addrs)
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("lan")
	require.NoError(t, err)
	assert.Equal(t, NetworkLAN, n)

	n, err = ParseNetwork("Internet")
	require.NoError(t, err)
	assert.Equal(t, NetworkInternet, n)
	assert.Equal(t, "internet", n.String())

	_, err = ParseNetwork("wan")
	assert.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestRespondingHostData_Upgrade(t *testing.T) {
	var d RespondingHostData
	assert.False(t, d.Responded())

	d.UpdateToBasic(true)
	assert.Equal(t, RefreshIndirectBasicHostInfo, d.Result)

	d.UpdateToBasic(false)
	assert.Equal(t, RefreshDirectBasicHostInfo, d.Result)

	d.UpdateToExtra()
	d.UpdateToBasic(true)
	assert.Equal(t, RefreshExtraHostInfo, d.Result, "结果只升不降")
}

func TestRespondingHostData_Merge(t *testing.T) {
	old := RespondingHostData{
		BasicInfo:     []byte("old-basic"),
		ExtraInfo:     []byte("old-extra"),
		RoundTripTime: 40 * time.Millisecond,
		Result:        RefreshExtraHostInfo,
	}

	t.Run("空信息块不清除旧数据", func(t *testing.T) {
		got := old.Merge(RespondingHostData{
			BasicInfo:     []byte("new-basic"),
			RoundTripTime: 10 * time.Millisecond,
			Result:        RefreshDirectBasicHostInfo,
		})
		assert.Equal(t, []byte("new-basic"), got.BasicInfo)
		assert.Equal(t, []byte("old-extra"), got.ExtraInfo)
		assert.Equal(t, 10*time.Millisecond, got.RoundTripTime)
		assert.Equal(t, RefreshDirectBasicHostInfo, got.Result)
	})

	t.Run("间接数据保留测得的往返时间", func(t *testing.T) {
		got := old.Merge(RespondingHostData{
			BasicInfo:  []byte("listed"),
			Provenance: ProvenanceIndirectFromMasterServer,
			Result:     RefreshIndirectBasicHostInfo,
		})
		assert.Equal(t, []byte("listed"), got.BasicInfo)
		assert.Equal(t, 40*time.Millisecond, got.RoundTripTime)
		assert.Equal(t, ProvenanceIndirectFromMasterServer, got.Provenance)
		assert.Equal(t, RefreshIndirectBasicHostInfo, got.Result)
	})

	t.Run("无响应不覆盖元数据", func(t *testing.T) {
		got := old.Merge(RespondingHostData{})
		assert.True(t, got.Equal(old))
	})

	t.Run("深拷贝", func(t *testing.T) {
		got := old.Merge(RespondingHostData{})
		got.BasicInfo[0] = 'X'
		assert.Equal(t, []byte("old-basic"), old.BasicInfo)
	})
}

func TestEvents_Network(t *testing.T) {
	events := []Event{
		HostListRefreshed{Network: NetworkLAN},
		SingleHostRefreshed{Network: NetworkInternet},
		RefreshCancelledOrFailed{Network: NetworkInternet},
	}
	assert.Equal(t, NetworkLAN, events[0].EventNetwork())
	assert.Equal(t, NetworkInternet, events[1].EventNetwork())
	assert.Equal(t, NetworkInternet, events[2].EventNetwork())
}

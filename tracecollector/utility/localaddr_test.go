package utility

import (
	"net/netip"
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
)

func TestContainsAddr(t *testing.T) {
	ifaces := psnet.InterfaceStatList{
		{Name: "lo", Flags: []string{"up", "loopback"}, Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
		{Name: "veth0", Flags: []string{"up"}, Addrs: psnet.InterfaceAddrList{{Addr: "10.10.0.11/24"}, {Addr: "fe80::1/64"}}},
	}

	assert.True(t, containsAddr(ifaces, netip.MustParseAddr("10.10.0.11")))
	assert.True(t, containsAddr(ifaces, netip.MustParseAddr("127.0.0.1")))
	assert.False(t, containsAddr(ifaces, netip.MustParseAddr("10.10.0.12")))
}

func TestParseInterfaceAddr(t *testing.T) {
	ip, ok := parseInterfaceAddr("10.10.0.10/24")
	assert.True(t, ok)
	assert.Equal(t, "10.10.0.10", ip.String())

	ip, ok = parseInterfaceAddr("10.10.0.10")
	assert.True(t, ok)
	assert.Equal(t, "10.10.0.10", ip.String())

	_, ok = parseInterfaceAddr("garbage")
	assert.False(t, ok)
}

func TestHasFlag(t *testing.T) {
	assert.True(t, hasFlag([]string{"up", "broadcast"}, "UP"))
	assert.False(t, hasFlag([]string{"broadcast"}, "up"))
}

func TestHasLocalAddressLoopback(t *testing.T) {
	ok, err := HasLocalAddress(netip.MustParseAddr("127.0.0.1"))
	if err != nil {
		t.Skipf("interface listing unavailable: %v", err)
	}
	assert.True(t, ok)
}

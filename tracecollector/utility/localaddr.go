// tracecollector/utility/localaddr.go
package utility

import (
	"fmt"
	"net/netip"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// HasLocalAddress reports whether addr is assigned to one of the host's
// interfaces. Connection attempts are bound to the source address, so a
// foreign source can never produce traffic.
func HasLocalAddress(addr netip.Addr) (bool, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return false, fmt.Errorf("list interfaces: %w", err)
	}
	return containsAddr(ifaces, addr), nil
}

func containsAddr(ifaces psnet.InterfaceStatList, addr netip.Addr) bool {
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			if ip, ok := parseInterfaceAddr(a.Addr); ok && ip == addr {
				return true
			}
		}
	}
	return false
}

// LocalIPv4Addrs lists IPv4 addresses of interfaces that are up, keyed by
// interface name. Loopback is skipped.
func LocalIPv4Addrs() (map[string][]netip.Addr, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	out := make(map[string][]netip.Addr)
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		for _, a := range iface.Addrs {
			ip, ok := parseInterfaceAddr(a.Addr)
			if !ok || !ip.Is4() {
				continue
			}
			out[iface.Name] = append(out[iface.Name], ip)
		}
	}
	return out, nil
}

// parseInterfaceAddr accepts both "10.0.0.1/24" and "10.0.0.1".
func parseInterfaceAddr(s string) (netip.Addr, bool) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Addr(), true
	}
	ip, err := netip.ParseAddr(s)
	return ip, err == nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

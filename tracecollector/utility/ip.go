// tracecollector/utility/ip.go
package utility

import (
	"encoding/binary"
	"net/netip"
)

// WordToIPv4 converts the low 32 bits of an address word, as the probe stored
// it (network-order bytes loaded in host order), to dotted-quad text.
func WordToIPv4(word uint64) string {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], uint32(word))
	return netip.AddrFrom4(b).String()
}

// IPv4ToWord is the inverse of WordToIPv4. Non-IPv4 addresses map to 0.
func IPv4ToWord(addr netip.Addr) uint64 {
	if !addr.Is4() {
		return 0
	}
	b := addr.As4()
	return uint64(binary.NativeEndian.Uint32(b[:]))
}

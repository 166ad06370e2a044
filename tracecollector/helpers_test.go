package tracecollector

import (
	"net/netip"

	"fwreach/tracecollector/utility"
)

// rawRecord builds a probe record for an IPv4 flow.
func rawRecord(flags uint64, src, dst string, hook, verdict uint64) *RawRecord {
	r := &RawRecord{
		Flags:     flags,
		IPVersion: 4,
		NetNS:     4026531840,
		Hook:      hook,
		Verdict:   verdict,
	}
	copy(r.IfName[:], "veth0")
	copy(r.TableName[:], "filter")
	r.Saddr[0] = utility.IPv4ToWord(netip.MustParseAddr(src))
	r.Daddr[0] = utility.IPv4ToWord(netip.MustParseAddr(dst))
	return r
}

// hookSample encodes an interface event with firewall hook information.
func hookSample(src, dst string, hook Hook, verdict Verdict) []byte {
	return Encode(rawRecord(FlagIf|FlagIPTable, src, dst, uint64(hook), uint64(verdict)))
}

// hookEvent is hookSample, decoded.
func hookEvent(src, dst string, hook Hook, verdict Verdict) Event {
	ev, ok := Decode(hookSample(src, dst, hook, verdict))
	if !ok {
		panic("fixture did not decode")
	}
	return ev
}

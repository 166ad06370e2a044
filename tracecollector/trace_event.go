// tracecollector/trace_event.go
package tracecollector

import (
	"bytes"
	"encoding/binary"

	"fwreach/tracecollector/utility"
)

const (
	IfNameSize       = 16 // IFNAMSIZ, uapi/linux/if.h
	TableNameMaxSize = 32 // XT_TABLE_MAXNAMELEN, uapi/linux/netfilter/x_tables.h
)

// Content flags set by the probe on every record.
const (
	FlagIf      uint64 = 1 << 0 // interface traversal
	FlagIPTable uint64 = 1 << 1 // hook, verdict and table fields are filled in
)

// RawRecord mirrors the C struct emitted by the probe program. All integers
// are in host byte order; the IPv4 address sits in the low 32 bits of the
// first address word.
type RawRecord struct {
	Flags     uint64
	IfName    [IfNameSize]byte
	NetNS     uint64
	IPVersion uint64
	ICMPType  uint64
	ICMPID    uint64
	ICMPSeq   uint64
	Saddr     [2]uint64
	Daddr     [2]uint64
	Hook      uint64
	Verdict   uint64
	TableName [TableNameMaxSize]byte
}

// RecordSize is the encoded size of a RawRecord (144 bytes).
var RecordSize = binary.Size(RawRecord{})

// Hook is a netfilter hook, in uapi/linux/netfilter.h order.
type Hook uint8

const (
	HookPrerouting Hook = iota
	HookInput
	HookForward
	HookOutput
	HookPostrouting
	HookUnknown
)

var hookNames = [...]string{"PREROUTING", "INPUT", "FORWARD", "OUTPUT", "POSTROUTING"}

// HookAt resolves a hook index from the probe. Out-of-range indices yield
// HookUnknown.
func HookAt(index uint64) Hook {
	if index >= uint64(len(hookNames)) {
		return HookUnknown
	}
	return Hook(index)
}

func (h Hook) String() string {
	if int(h) < len(hookNames) {
		return hookNames[h]
	}
	return "UNKNOWN"
}

// Verdict is a netfilter verdict, in uapi/linux/netfilter.h order.
type Verdict uint8

const (
	VerdictDrop Verdict = iota
	VerdictAccept
	VerdictStolen
	VerdictQueue
	VerdictRepeat
	VerdictStop
	VerdictUnknown
)

var verdictNames = [...]string{"DROP", "ACCEPT", "STOLEN", "QUEUE", "REPEAT", "STOP"}

// VerdictAt resolves a verdict index from the probe. Out-of-range indices
// yield VerdictUnknown.
func VerdictAt(index uint64) Verdict {
	if index >= uint64(len(verdictNames)) {
		return VerdictUnknown
	}
	return Verdict(index)
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "UNKNOWN"
}

// Event is a decoded IPv4 interface-traversal record.
type Event struct {
	Flags       uint64
	IfName      string
	NetNS       uint64
	ICMPType    uint64
	ICMPID      uint64
	ICMPSeq     uint64
	Source      string // dotted quad
	Destination string // dotted quad

	// Only meaningful when HasIPTable reports true.
	Hook      Hook
	Verdict   Verdict
	TableName string
}

// HasIPTable reports whether the event carries firewall hook information.
func (e Event) HasIPTable() bool {
	return e.Flags&FlagIPTable != 0
}

// Flow renders the event's address pair as "src -> dst".
func (e Event) Flow() string {
	return e.Source + " -> " + e.Destination
}

// Decode parses one raw sample. It returns false for samples that carry no
// reachability information: short samples, records without the interface
// flag and non-IPv4 records. Decode never fails otherwise.
func Decode(sample []byte) (Event, bool) {
	if len(sample) < RecordSize {
		return Event{}, false
	}

	var raw RawRecord
	if err := binary.Read(bytes.NewReader(sample[:RecordSize]), binary.NativeEndian, &raw); err != nil {
		return Event{}, false
	}
	return DecodeRecord(&raw)
}

// DecodeRecord is Decode for an already parsed record.
func DecodeRecord(raw *RawRecord) (Event, bool) {
	if raw.Flags&FlagIf == 0 {
		return Event{}, false
	}
	if raw.IPVersion != 4 {
		return Event{}, false
	}

	ev := Event{
		Flags:       raw.Flags,
		IfName:      cString(raw.IfName[:]),
		NetNS:       raw.NetNS,
		ICMPType:    raw.ICMPType,
		ICMPID:      raw.ICMPID,
		ICMPSeq:     raw.ICMPSeq,
		Source:      utility.WordToIPv4(raw.Saddr[0]),
		Destination: utility.WordToIPv4(raw.Daddr[0]),
		Hook:        HookUnknown,
		Verdict:     VerdictUnknown,
	}
	if ev.HasIPTable() {
		ev.Hook = HookAt(raw.Hook)
		ev.Verdict = VerdictAt(raw.Verdict)
		ev.TableName = cString(raw.TableName[:])
	}
	return ev, true
}

// Encode serialises a record in the probe's layout. Used to build replay
// streams and test fixtures.
func Encode(raw *RawRecord) []byte {
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	// Writing a fixed-size struct to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.NativeEndian, raw)
	return buf.Bytes()
}

// cString returns the text before the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

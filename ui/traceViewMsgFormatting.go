// ui/traceViewMsgFormatting.go
package ui

import (
	"bytes"
	"strings"
	"sync"

	"fwreach/tracecollector"
)

const (
	flowColWidth    = 34 // "255.255.255.255 -> 255.255.255.255"
	hookColWidth    = 12
	verdictColWidth = 8
	tableColWidth   = 8
)

// pool holds reusable *bytes.Buffer instances
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// TraceHeader is the column header matching FormatTraceMsg rows.
func TraceHeader() string {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	buf.WriteString("| ")
	writePadded(buf, "FLOW", flowColWidth)
	buf.WriteString(" | ")
	writePadded(buf, "HOOK", hookColWidth)
	buf.WriteString(" | ")
	writePadded(buf, "VERDICT", verdictColWidth)
	buf.WriteString(" | ")
	writePadded(buf, "TABLE", tableColWidth)
	buf.WriteString(" | IFACE")
	return buf.String()
}

// FormatTraceMsg builds one fixed-width "flow | hook | verdict" row. With
// tags set the verdict is wrapped in tview colour tags (red for DROP, green
// otherwise).
func FormatTraceMsg(ev tracecollector.Event, tags bool) string {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	buf.WriteString("| ")
	writePadded(buf, ev.Flow(), flowColWidth)
	buf.WriteString(" | ")
	writePadded(buf, ev.Hook.String(), hookColWidth)
	buf.WriteString(" | ")

	verdict := ev.Verdict.String()
	if tags {
		if ev.Verdict == tracecollector.VerdictDrop {
			buf.WriteString("[red]")
		} else {
			buf.WriteString("[green]")
		}
		buf.WriteString(verdict)
		buf.WriteString("[-]")
		writePadding(buf, verdictColWidth-len(verdict))
	} else {
		writePadded(buf, verdict, verdictColWidth)
	}
	buf.WriteString(" | ")
	writePadded(buf, ev.TableName, tableColWidth)
	buf.WriteString(" | ")
	buf.WriteString(ev.IfName)

	// Extract result string (copies once) and return buffer to pool
	result := strings.TrimRight(buf.String(), " ")
	bufPool.Put(buf)
	return result
}

// writePadded writes s left-aligned in a field of width w
func writePadded(buf *bytes.Buffer, s string, w int) {
	buf.WriteString(s)
	writePadding(buf, w-len(s))
}

// writePadding writes n spaces (n ≤ 0 → no op)
func writePadding(buf *bytes.Buffer, n int) {
	for n > 0 {
		const chunk = "          " // 10 spaces
		if n >= len(chunk) {
			buf.WriteString(chunk)
			n -= len(chunk)
		} else {
			buf.WriteString(chunk[:n])
			return
		}
	}
}

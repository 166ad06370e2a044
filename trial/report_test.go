package trial

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
)

func TestPrinterResultLines(t *testing.T) {
	ep, err := utility.ParseEndpoints("10.10.0.10", "10.10.0.11:8080")
	require.NoError(t, err)

	tests := []struct {
		verdict tracecollector.Reachability
		want    string
		notWant string
	}{
		{tracecollector.Reachable, "is REACHABLE", "UNREACHABLE"},
		{tracecollector.Unreachable, "is UNREACHABLE", "is REACHABLE"},
		{tracecollector.Pending, "[ERROR]", "REACHABLE"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewPrinter(&buf).Result(ep, Result{Verdict: tt.verdict, Elapsed: 1234567 * time.Nanosecond})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[len(lines)-3], tt.want)
		assert.NotContains(t, lines[len(lines)-3], tt.notWant)
		assert.Contains(t, lines[len(lines)-1], "Finished in: 1234.5670 µs")
	}
}

func TestPrinterInfo(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Info("Doing startup checks")
	assert.Equal(t, "[INFO] Doing startup checks\n", buf.String())
}

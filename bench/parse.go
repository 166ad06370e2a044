// bench/parse.go
package bench

import (
	"regexp"
	"strconv"
	"strings"

	fwerrors "fwreach/errors"
)

// Observed outcomes as written to the report.
const (
	StatusReachable   = "REACHABLE"
	StatusUnreachable = "UNREACHABLE"
	StatusUnknown     = "UNKNOWN"
)

var latencyRe = regexp.MustCompile(`\d+\.\d+`)

// ParseOutput recovers the observed verdict and latency (µs) from a driver's
// stdout. The verdict is read from the third line from the end and the
// latency from the last line.
func ParseOutput(out []byte) (status string, micros float64, err error) {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) < 3 {
		return "", 0, fwerrors.Errorf(fwerrors.KindTrial, "driver output too short (%d lines)", len(lines))
	}

	m := latencyRe.FindString(lines[len(lines)-1])
	if m == "" {
		return "", 0, fwerrors.Errorf(fwerrors.KindTrial, "no latency in %q", lines[len(lines)-1])
	}
	micros, err = strconv.ParseFloat(m, 64)
	if err != nil {
		return "", 0, fwerrors.Wrap(err, fwerrors.KindTrial, "parse latency")
	}

	result := lines[len(lines)-3]
	switch {
	case strings.Contains(result, StatusUnreachable):
		status = StatusUnreachable
	case strings.Contains(result, StatusReachable):
		status = StatusReachable
	default:
		status = StatusUnknown
	}
	return status, micros, nil
}

package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fwreach/tracecollector"
)

func TestExpected(t *testing.T) {
	tests := []struct {
		source string
		target string
		want   tracecollector.Reachability
	}{
		{"10.10.0.11", "10.10.0.10:8080", tracecollector.Reachable},   // scenario A
		{"10.10.0.10", "10.10.0.11:8080", tracecollector.Unreachable}, // scenario B
		{"10.10.0.20", "10.10.0.12:8080", tracecollector.Unreachable}, // scenario C
		{"10.10.0.12", "10.10.0.11:8080", tracecollector.Reachable},
		{"10.10.0.20", "10.10.0.11:8080", tracecollector.Reachable},
		{"10.10.0.10", "10.10.0.12:8080", tracecollector.Reachable},
		{"10.10.0.11", "10.10.0.12:8080", tracecollector.Reachable},
		{"10.10.0.10", "10.10.0.20:8080", tracecollector.Reachable},
		{"10.10.0.12", "10.10.0.20:8080", tracecollector.Reachable},
		{"10.10.0.20", "10.10.0.10:8080", tracecollector.Reachable},
		{"10.10.0.99", "10.10.0.99:8080", tracecollector.Pending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Expected(tt.source, tt.target), "%s -> %s", tt.source, tt.target)
	}
}

func TestExpectedCoversDefaultPool(t *testing.T) {
	pool := DefaultConfig().Pool
	for _, target := range pool.Targets {
		for _, source := range candidates(pool.Sources, target) {
			assert.True(t, Expected(source, target).Terminal(), "%s -> %s", source, target)
		}
	}
}

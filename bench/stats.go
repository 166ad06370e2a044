// bench/stats.go
package bench

import (
	"io"
	"math"
	"slices"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary aggregates a finished run.
type Summary struct {
	Trials   int
	Matches  int
	Unknown  int
	Min      time.Duration
	Avg      time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
	Accuracy float64 // percent of trials whose verdict matched the oracle
}

// Summarize computes accuracy and latency percentiles over records.
func Summarize(records []TrialRecord) Summary {
	s := Summary{Trials: len(records)}
	if len(records) == 0 {
		return s
	}

	lat := make([]time.Duration, 0, len(records))
	var total time.Duration
	for _, r := range records {
		if r.Match() {
			s.Matches++
		}
		if r.Observed == StatusUnknown {
			s.Unknown++
		}
		d := time.Duration(math.Round(r.Micros * float64(time.Microsecond)))
		lat = append(lat, d)
		total += d
	}
	slices.Sort(lat)

	n := len(lat)
	s.Min = lat[0]
	s.Max = lat[n-1]
	s.Avg = total / time.Duration(n)
	s.P50 = lat[n*50/100]
	s.P95 = lat[n*95/100]
	s.P99 = lat[n*99/100]
	s.Accuracy = 100 * float64(s.Matches) / float64(n)
	return s
}

// Print writes the summary in a human-readable form.
func (s Summary) Print(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "--- Benchmark Results ---\n")
	p.Fprintf(w, "Trials: %d\n", s.Trials)
	p.Fprintf(w, "Matched oracle: %d (%.2f%%)\n", s.Matches, s.Accuracy)
	p.Fprintf(w, "Unknown verdicts: %d\n", s.Unknown)
	if s.Trials == 0 {
		return
	}
	p.Fprintf(w, "Average latency: %v\n", s.Avg)
	p.Fprintf(w, "Min latency: %v\n", s.Min)
	p.Fprintf(w, "P50 latency: %v\n", s.P50)
	p.Fprintf(w, "P95 latency: %v\n", s.P95)
	p.Fprintf(w, "P99 latency: %v\n", s.P99)
	p.Fprintf(w, "Max latency: %v\n", s.Max)
}

// bench/report.go
package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// TrialRecord is one row of the benchmark report.
type TrialRecord struct {
	Iteration int
	Expected  string
	Observed  string
	Micros    float64
}

// Match reports whether the observed verdict is the expected one.
func (r TrialRecord) Match() bool {
	return r.Expected == r.Observed
}

var reportHeader = []string{"iteration", "expected", "result", "exec_time"}

// WriteReport writes records as CSV with the report header.
func WriteReport(w io.Writer, records []TrialRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Iteration),
			r.Expected,
			r.Observed,
			strconv.FormatFloat(r.Micros, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportPath is where a variant's report is stored under dir.
func ReportPath(dir, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("tests_%s_measurement.csv", variant))
}

// SaveReport writes the report file, creating its directory.
func SaveReport(path string, records []TrialRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteReport(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

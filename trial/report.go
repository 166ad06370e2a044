// trial/report.go
package trial

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
)

// Printer writes the human-readable stdout of a trial. fwbench relies on the
// result line containing REACHABLE or UNREACHABLE and on the last line ending
// with the latency; colours are dropped automatically when w is not a tty.
type Printer struct {
	w     io.Writer
	info  lipgloss.Style
	fail  lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	faint lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		info:  r.NewStyle().Foreground(lipgloss.Color("4")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")),
		good:  r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")),
		faint: r.NewStyle().Faint(true),
	}
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.info.Render("[INFO]"), fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.fail.Render("[ERROR]"), fmt.Sprintf(format, args...))
}

func (p *Printer) Rule(title string) {
	dashes := strings.Repeat("-", 20)
	fmt.Fprintln(p.w, p.faint.Render(dashes+" "+title+" "+dashes))
}

// Result prints the verdict block followed by the execution time line.
func (p *Printer) Result(ep *utility.Endpoints, res Result) {
	p.Rule("RESULT")
	switch res.Verdict {
	case tracecollector.Reachable:
		p.Info("Destination %s from %s is %s", ep.TargetSpec, ep.SourceText(), p.good.Render(res.Verdict.String()))
	case tracecollector.Unreachable:
		p.Info("Destination %s from %s is %s", ep.TargetSpec, ep.SourceText(), p.bad.Render(res.Verdict.String()))
	default:
		p.Error("No verdict for %s from %s (%s)", ep.TargetSpec, ep.SourceText(), res.Verdict)
	}
	p.Rule("EXECUTION TIME")
	p.Info("Finished in: %.4f µs", res.Microseconds())
}

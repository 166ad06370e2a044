// ui/ui.go
// Package ui provides the terminal views of watch mode: a tview layout with
// the system log, the trace rows of the watched flow and accepted/dropped
// counters, plus the huh source-address prompt.
package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"fwreach/tracecollector"
)

const MaxLines = 100 // keep the last 100 entries, exported

// ChannelWriter funnels log lines into our System Log pane. It is used as
// the zap sink while the TUI owns the terminal.
type ChannelWriter struct{ Ch chan string }

// Write implements the io.Writer interface for our channel.
func (w ChannelWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	w.Ch <- msg
	return len(p), nil
}

// Sync satisfies zapcore.WriteSyncer; lines are delivered on Write.
func (w ChannelWriter) Sync() error { return nil }

// Views groups the panes returned by SetupUI.
type Views struct {
	Sys      *tview.TextView
	Trace    *tview.TextView
	Accepted *tview.TextView
	Dropped  *tview.TextView
}

// SetupUI creates and configures the tview application, views, and layout.
// 'q' or Esc stops the application and then calls onQuit.
func SetupUI(title string, onQuit func()) (*tview.Application, *tview.Flex, Views) {
	app := tview.NewApplication()

	newLog := func(title string) *tview.TextView {
		v := tview.NewTextView().
			SetDynamicColors(true).
			SetScrollable(true).
			SetChangedFunc(func() { app.Draw() })
		v.SetBorder(true).SetTitle(title)
		return v
	}
	newCounter := func(title string) *tview.TextView {
		v := tview.NewTextView().
			SetTextAlign(tview.AlignCenter).
			SetChangedFunc(func() { app.Draw() })
		v.SetBorder(true).SetTitle(title)
		v.SetText("0 events")
		return v
	}

	views := Views{
		Sys:      newLog(" System Log "),
		Trace:    newLog(" Trace Events: " + title + " "),
		Accepted: newCounter(" Accepted "),
		Dropped:  newCounter(" Dropped "),
	}

	hint := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("q / Esc to quit")

	bottomFlex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(views.Accepted, 0, 1, false).
		AddItem(views.Dropped, 0, 1, false).
		AddItem(hint, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(views.Sys, 0, 2, false).
		AddItem(views.Trace, 0, 4, true).
		AddItem(bottomFlex, 3, 1, false)

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if isQuitKey(ev) {
			app.Stop()
			if onQuit != nil {
				onQuit()
			}
			return nil
		}
		return ev
	})

	return app, layout, views
}

func isQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'))
}

// PumpTextview reads lines from a channel and updates a tview.TextView, keeping only MaxLines.
func PumpTextview(app *tview.Application, view *tview.TextView, ch <-chan string, buffer *[]string) {
	for line := range ch {
		*buffer = appendBounded(*buffer, line)
		text := strings.Join(*buffer, "\n")
		app.QueueUpdateDraw(func() {
			view.SetText(text)
			view.ScrollToEnd()
		})
	}
}

// PumpTraceView renders every event as a coloured trace row.
func PumpTraceView(app *tview.Application, view *tview.TextView, ch <-chan tracecollector.Event) {
	lines := []string{TraceHeader()}
	for ev := range ch {
		lines = appendBounded(lines, FormatTraceMsg(ev, true))
		text := strings.Join(lines, "\n")
		app.QueueUpdateDraw(func() {
			view.SetText(text)
			view.ScrollToEnd()
		})
	}
}

// PumpCounterView reads WatchStat snapshots and updates both counter views.
func PumpCounterView(app *tview.Application, accepted, dropped *tview.TextView, ch <-chan tracecollector.WatchStat) {
	for stat := range ch {
		app.QueueUpdateDraw(func() {
			accepted.SetText(formatCount(stat.Accepted))
			dropped.SetText(formatCount(stat.Dropped))
		})
	}
}

func formatCount(n uint64) string {
	if n == 1 {
		return "1 event"
	}
	return fmt.Sprintf("%d events", n)
}

// appendBounded appends line and drops the oldest entries beyond MaxLines.
func appendBounded(buf []string, line string) []string {
	buf = append(buf, line)
	if len(buf) > MaxLines {
		buf = buf[len(buf)-MaxLines:]
	}
	return buf
}

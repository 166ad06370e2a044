// tracecollector/verdict.go
package tracecollector

import (
	"sync"
	"sync/atomic"
)

// Reachability is the outcome of one trial.
type Reachability int32

const (
	Pending Reachability = iota
	Reachable
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "REACHABLE"
	case Unreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether r is a final outcome.
func (r Reachability) Terminal() bool {
	return r == Reachable || r == Unreachable
}

// Flow is a source/destination pair in dotted-quad form.
type Flow struct {
	Source      string
	Destination string
}

// Matches reports whether ev belongs to the flow and carries hook
// information. It does not look at the hook itself.
func (f Flow) Matches(ev Event) bool {
	return ev.HasIPTable() && ev.Source == f.Source && ev.Destination == f.Destination
}

func (f Flow) String() string {
	return f.Source + " -> " + f.Destination
}

// Engine latches a reachability verdict from the first INPUT-hook event seen
// for a source/destination pair. It belongs to a single trial.
//
// Observe must be called from one goroutine; State and Done are safe from any.
type Engine struct {
	flow Flow

	state    atomic.Int32
	done     chan struct{}
	doneOnce sync.Once
	decisive Event
}

// NewEngine returns a Pending engine for the given dotted-quad addresses.
func NewEngine(source, destination string) *Engine {
	return &Engine{
		flow: Flow{Source: source, Destination: destination},
		done: make(chan struct{}),
	}
}

// Flow returns the pair the engine watches.
func (e *Engine) Flow() Flow {
	return e.flow
}

// Observe feeds one decoded event. It returns true only for the event that
// moved the engine out of Pending.
func (e *Engine) Observe(ev Event) bool {
	if Reachability(e.state.Load()).Terminal() {
		return false
	}
	if !e.flow.Matches(ev) || ev.Hook != HookInput {
		return false
	}

	next := Reachable
	if ev.Verdict == VerdictDrop {
		next = Unreachable
	}
	if !e.state.CompareAndSwap(int32(Pending), int32(next)) {
		return false
	}
	e.decisive = ev
	e.doneOnce.Do(func() { close(e.done) })
	return true
}

// State returns the current verdict.
func (e *Engine) State() Reachability {
	return Reachability(e.state.Load())
}

// Done is closed once the verdict is terminal.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Decisive returns the event that latched the verdict. Only valid after Done.
func (e *Engine) Decisive() Event {
	<-e.done
	return e.decisive
}

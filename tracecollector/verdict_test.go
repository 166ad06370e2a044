package tracecollector

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	src = "10.10.0.10"
	dst = "10.10.0.11"
)

func TestEngineStartsPending(t *testing.T) {
	e := NewEngine(src, dst)
	assert.Equal(t, Pending, e.State())
	assert.Equal(t, "UNKNOWN", e.State().String())
	select {
	case <-e.Done():
		t.Fatal("done closed before any event")
	default:
	}
}

func TestEngineVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    Reachability
	}{
		{"drop", VerdictDrop, Unreachable},
		{"accept", VerdictAccept, Reachable},
		{"stolen", VerdictStolen, Reachable},
		{"queue", VerdictQueue, Reachable},
		{"repeat", VerdictRepeat, Reachable},
		{"stop", VerdictStop, Reachable},
		{"unknown", VerdictUnknown, Reachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(src, dst)
			assert.True(t, e.Observe(hookEvent(src, dst, HookInput, tt.verdict)))
			assert.Equal(t, tt.want, e.State())
			<-e.Done()
			assert.Equal(t, tt.verdict, e.Decisive().Verdict)
		})
	}
}

func TestEngineIgnoresOtherHooks(t *testing.T) {
	for _, hook := range []Hook{HookPrerouting, HookForward, HookOutput, HookPostrouting, HookUnknown} {
		e := NewEngine(src, dst)
		assert.False(t, e.Observe(hookEvent(src, dst, hook, VerdictDrop)), hook.String())
		assert.Equal(t, Pending, e.State(), hook.String())
	}
}

func TestEngineIgnoresOtherFlows(t *testing.T) {
	e := NewEngine(src, dst)

	assert.False(t, e.Observe(hookEvent(dst, src, HookInput, VerdictDrop)))
	assert.False(t, e.Observe(hookEvent(src, "10.10.0.12", HookInput, VerdictDrop)))
	assert.False(t, e.Observe(hookEvent("10.10.0.20", dst, HookInput, VerdictDrop)))
	assert.Equal(t, Pending, e.State())
}

func TestEngineIgnoresEventsWithoutHookInfo(t *testing.T) {
	e := NewEngine(src, dst)
	ev, ok := Decode(Encode(rawRecord(FlagIf, src, dst, uint64(HookInput), uint64(VerdictDrop))))
	assert.True(t, ok)

	assert.False(t, e.Observe(ev))
	assert.Equal(t, Pending, e.State())
}

func TestEngineLatchesFirstVerdict(t *testing.T) {
	e := NewEngine(src, dst)

	assert.True(t, e.Observe(hookEvent(src, dst, HookInput, VerdictAccept)))
	assert.False(t, e.Observe(hookEvent(src, dst, HookInput, VerdictDrop)))
	assert.False(t, e.Observe(hookEvent(src, dst, HookInput, VerdictAccept)))
	assert.Equal(t, Reachable, e.State())
	assert.Equal(t, VerdictAccept, e.Decisive().Verdict)

	e = NewEngine(src, dst)
	assert.True(t, e.Observe(hookEvent(src, dst, HookInput, VerdictDrop)))
	assert.False(t, e.Observe(hookEvent(src, dst, HookInput, VerdictAccept)))
	assert.Equal(t, Unreachable, e.State())
}

func TestEngineTransitionsAtMostOnce(t *testing.T) {
	stream := []Event{
		hookEvent(src, dst, HookPrerouting, VerdictAccept),
		hookEvent(src, dst, HookOutput, VerdictDrop),
		hookEvent(src, dst, HookInput, VerdictDrop),
		hookEvent(src, dst, HookInput, VerdictAccept),
		hookEvent(src, dst, HookInput, VerdictDrop),
	}

	e := NewEngine(src, dst)
	transitions := 0
	for _, ev := range stream {
		if e.Observe(ev) {
			transitions++
		}
	}
	assert.Equal(t, 1, transitions)
	assert.Equal(t, Unreachable, e.State())
}

func TestEngineStateVisibleAcrossGoroutines(t *testing.T) {
	e := NewEngine(src, dst)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-e.Done()
		assert.Equal(t, Reachable, e.State())
	}()

	e.Observe(hookEvent(src, dst, HookInput, VerdictAccept))
	wg.Wait()
}

func TestReachabilityStrings(t *testing.T) {
	assert.Equal(t, "REACHABLE", Reachable.String())
	assert.Equal(t, "UNREACHABLE", Unreachable.String())
	assert.False(t, Pending.Terminal())
	assert.True(t, Reachable.Terminal())
	assert.True(t, Unreachable.Terminal())
}

func TestFlow(t *testing.T) {
	f := Flow{Source: src, Destination: dst}
	assert.Equal(t, "10.10.0.10 -> 10.10.0.11", f.String())
	assert.True(t, f.Matches(hookEvent(src, dst, HookOutput, VerdictAccept)))
	assert.False(t, f.Matches(hookEvent(dst, src, HookInput, VerdictAccept)))
}

package trial

import (
	"context"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
)

// fakeNetwork turns each probe into the trace records a kernel running the
// given policy would emit for the attempt.
type fakeNetwork struct {
	src  *tracecollector.MemorySource
	ep   *utility.Endpoints
	drop func(source, target string) bool

	calls    atomic.Int64
	inFlight atomic.Int64
}

func (n *fakeNetwork) Probe(ctx context.Context) error {
	n.calls.Add(1)
	n.inFlight.Add(1)
	defer n.inFlight.Add(-1)

	s, d := n.ep.SourceText(), n.ep.TargetText()
	verdict := tracecollector.VerdictAccept
	if n.drop(s, n.ep.TargetSpec) {
		verdict = tracecollector.VerdictDrop
	}
	n.src.Push(
		record(tracecollector.FlagIf, s, d, 0, 0),
		record(tracecollector.FlagIf|tracecollector.FlagIPTable, s, d, tracecollector.HookPrerouting, tracecollector.VerdictAccept),
		record(tracecollector.FlagIf|tracecollector.FlagIPTable, s, d, tracecollector.HookInput, verdict),
	)
	if verdict == tracecollector.VerdictDrop {
		return ErrProbeTimeout
	}
	// return path, must never decide the trial
	n.src.Push(record(tracecollector.FlagIf|tracecollector.FlagIPTable, s, d, tracecollector.HookOutput, tracecollector.VerdictDrop))
	return nil
}

// topologyDrops is the firewall policy of the validation lab.
func topologyDrops(source, target string) bool {
	return (target == "10.10.0.11:8080" && source == "10.10.0.10") ||
		(target == "10.10.0.12:8080" && source == "10.10.0.20")
}

func record(flags uint64, src, dst string, hook tracecollector.Hook, verdict tracecollector.Verdict) []byte {
	raw := &tracecollector.RawRecord{
		Flags:     flags,
		IPVersion: 4,
		Hook:      uint64(hook),
		Verdict:   uint64(verdict),
	}
	copy(raw.TableName[:], "filter")
	raw.Saddr[0] = utility.IPv4ToWord(netip.MustParseAddr(src))
	raw.Daddr[0] = utility.IPv4ToWord(netip.MustParseAddr(dst))
	return tracecollector.Encode(raw)
}

// stubProber returns err after delay and counts its calls.
type stubProber struct {
	mu       sync.Mutex
	err      error
	delay    time.Duration
	calls    int
	finished int
}

func (p *stubProber) Probe(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	delay, err := p.delay, p.err
	p.mu.Unlock()

	time.Sleep(delay)

	p.mu.Lock()
	p.finished++
	p.mu.Unlock()
	return err
}

func (p *stubProber) counts() (calls, finished int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.finished
}

// scriptedProber pushes emit(n) into src on its n-th call (1-based); the
// first call is the startup check.
type scriptedProber struct {
	src  *tracecollector.MemorySource
	emit func(call int) [][]byte

	mu    sync.Mutex
	calls int
}

func (p *scriptedProber) Probe(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()

	if samples := p.emit(n); len(samples) > 0 {
		p.src.Push(samples...)
	}
	return ErrProbeTimeout
}

// cancellingSource returns batch together with cancelling the trial context,
// as if the deadline expired while the records were being read.
type cancellingSource struct {
	batch  [][]byte
	cancel context.CancelFunc
}

func (s *cancellingSource) NextBatch(ctx context.Context) ([][]byte, error) {
	s.cancel()
	batch := s.batch
	s.batch = nil
	return batch, nil
}

func (s *cancellingSource) Drain() (int, error) { return 0, nil }

func (s *cancellingSource) Close() error { return nil }

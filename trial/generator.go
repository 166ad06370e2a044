// trial/generator.go
package trial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	fwerrors "fwreach/errors"
	"fwreach/logging"
	"fwreach/tracecollector/utility"
)

const (
	DefaultProbeTimeout  = time.Second
	DefaultProbeInterval = time.Second

	// curlExitTimeout is curl's "operation timed out" exit status.
	curlExitTimeout = 28
)

// ErrProbeTimeout marks a connection attempt that ran out of time. Under a
// DROP policy this is the expected outcome.
var ErrProbeTimeout = errors.New("probe timed out")

// Prober issues one bounded connection attempt from the source to the target.
type Prober interface {
	Probe(ctx context.Context) error
}

// DialProber opens a TCP connection bound to the source address.
type DialProber struct {
	Endpoints *utility.Endpoints
	Timeout   time.Duration
}

func (p *DialProber) Probe(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	d := net.Dialer{
		LocalAddr: &net.TCPAddr{IP: p.Endpoints.Source.AsSlice()},
		Timeout:   timeout,
	}
	conn, err := d.DialContext(ctx, "tcp4", p.Endpoints.DialAddress())
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrProbeTimeout, err)
		}
		return err
	}
	return conn.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// CurlProber shells out to curl, the way the measurement has traditionally
// been driven.
type CurlProber struct {
	Endpoints *utility.Endpoints
	Timeout   time.Duration
	Binary    string // defaults to "curl"
}

// Command returns the argv of one attempt.
func (p *CurlProber) Command() []string {
	bin := p.Binary
	if bin == "" {
		bin = "curl"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return []string{
		bin,
		"--silent", "--output", os.DevNull,
		"--interface", p.Endpoints.SourceText(),
		p.Endpoints.TargetSpec,
		"-m", strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64),
	}
}

func (p *CurlProber) Probe(ctx context.Context) error {
	argv := p.Command()
	err := exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == curlExitTimeout {
		return fmt.Errorf("%w: curl exit %d", ErrProbeTimeout, curlExitTimeout)
	}
	return err
}

// Sanity performs the single upfront attempt. Success and timeouts pass;
// anything else (typically failing to bind the source address) is a fatal
// precondition failure.
func Sanity(ctx context.Context, p Prober) error {
	err := p.Probe(ctx)
	if err == nil || errors.Is(err, ErrProbeTimeout) {
		return nil
	}
	return fwerrors.Wrap(err, fwerrors.KindPrecondition, "failed interface bind")
}

// Generator keeps issuing attempts until its context is cancelled. Outcomes
// are only counted.
type Generator struct {
	prober   Prober
	interval time.Duration
	log      *zap.SugaredLogger

	attempts atomic.Uint64
	timeouts atomic.Uint64
	failures atomic.Uint64
}

// NewGenerator returns a generator spacing attempts by interval.
func NewGenerator(p Prober, interval time.Duration, log *zap.SugaredLogger) *Generator {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Generator{prober: p, interval: interval, log: log}
}

// Run returns once ctx is cancelled and the attempt in flight, if any, has
// finished on its own timeout.
func (g *Generator) Run(ctx context.Context) error {
	attemptCtx := context.WithoutCancel(ctx)
	pause := time.NewTimer(g.interval)
	defer pause.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := g.prober.Probe(attemptCtx)
		g.attempts.Add(1)
		switch {
		case err == nil:
		case errors.Is(err, ErrProbeTimeout):
			g.timeouts.Add(1)
		default:
			g.failures.Add(1)
			g.log.Debugw("traffic attempt failed", "err", err)
		}

		pause.Reset(g.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-pause.C:
		}
	}
}

// GeneratorStats are the attempt counters of a generator.
type GeneratorStats struct {
	Attempts uint64
	Timeouts uint64
	Failures uint64
}

func (g *Generator) Stats() GeneratorStats {
	return GeneratorStats{
		Attempts: g.attempts.Load(),
		Timeouts: g.timeouts.Load(),
		Failures: g.failures.Load(),
	}
}

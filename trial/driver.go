// trial/driver.go
package trial

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	fwerrors "fwreach/errors"
	"fwreach/logging"
	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
)

// Config describes one trial.
type Config struct {
	Endpoints     *utility.Endpoints
	Prober        Prober
	ProbeInterval time.Duration
	Deadline      time.Duration // 0 waits for a verdict forever
	Logger        *zap.SugaredLogger
}

// Result is the outcome of one trial. A Pending verdict means no decision
// was reached before the deadline or an interrupt.
type Result struct {
	Verdict   tracecollector.Reachability
	Elapsed   time.Duration
	Decisive  *tracecollector.Event
	Decoded   uint64
	Generator GeneratorStats
}

// Microseconds returns the decision latency in microseconds.
func (r Result) Microseconds() float64 {
	return float64(r.Elapsed.Nanoseconds()) / 1e3
}

// Driver runs a trial against a trace source. A driver is single use: each
// trial gets its own engine and generator.
type Driver struct {
	cfg Config
	src tracecollector.Source
	log *zap.SugaredLogger
}

func NewDriver(cfg Config, src tracecollector.Source) *Driver {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Driver{cfg: cfg, src: src, log: cfg.Logger}
}

// Run performs the startup check, discards the traffic it produced, then
// polls the source while the traffic generator runs in the background, until
// a verdict latches. The generator has fully stopped when Run returns.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.cfg.Endpoints == nil || d.cfg.Prober == nil {
		return Result{}, fwerrors.New(fwerrors.KindInternal, "driver needs endpoints and a prober")
	}
	ep := d.cfg.Endpoints

	d.log.Infow("startup check", "flow", ep.String())
	if err := Sanity(ctx, d.cfg.Prober); err != nil {
		return Result{}, err
	}
	// the startup attempt must not decide the trial
	discarded, err := d.src.Drain()
	if err != nil {
		return Result{}, d.sourceError(err)
	}
	d.log.Debugw("discarded startup traffic", "records", discarded)

	engine := tracecollector.NewEngine(ep.SourceText(), ep.TargetText())
	gen := NewGenerator(d.cfg.Prober, d.cfg.ProbeInterval, d.log)

	genCtx, stopGen := context.WithCancel(ctx)
	defer stopGen()
	var g errgroup.Group
	g.Go(func() error { return gen.Run(genCtx) })

	pollCtx := ctx
	if d.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, d.cfg.Deadline)
		defer cancel()
	}

	start := time.Now()
	decoded, pollErr := d.poll(pollCtx, engine)
	elapsed := time.Since(start)

	stopGen()
	if err := g.Wait(); err != nil && pollErr == nil {
		pollErr = err
	}

	res := Result{
		Verdict:   engine.State(),
		Elapsed:   elapsed,
		Decoded:   decoded,
		Generator: gen.Stats(),
	}
	if res.Verdict.Terminal() {
		ev := engine.Decisive()
		res.Decisive = &ev
	}
	d.log.Infow("trial finished",
		"verdict", res.Verdict.String(),
		"elapsed_us", res.Microseconds(),
		"decoded", res.Decoded,
		"attempts", res.Generator.Attempts,
	)
	return res, pollErr
}

// poll feeds decoded events to engine until it latches. A batch is always
// decoded before the context is checked. Running out of time is not an
// error: the engine simply stays Pending.
func (d *Driver) poll(ctx context.Context, engine *tracecollector.Engine) (uint64, error) {
	var decoded uint64
	for !engine.State().Terminal() {
		batch, err := d.src.NextBatch(ctx)
		for _, sample := range batch {
			ev, ok := tracecollector.Decode(sample)
			if !ok {
				continue
			}
			decoded++
			if engine.Observe(ev) {
				d.log.Debugw("verdict latched", "hook", ev.Hook, "verdict", ev.Verdict, "table", ev.TableName, "ifname", ev.IfName)
				return decoded, nil
			}
		}

		if ctx.Err() != nil {
			d.log.Warnw("no verdict reached", "reason", ctx.Err())
			return decoded, nil
		}
		if err != nil {
			return decoded, d.sourceError(err)
		}
	}
	return decoded, nil
}

func (d *Driver) sourceError(err error) error {
	if errors.Is(err, tracecollector.ErrSourceClosed) {
		return fwerrors.Wrap(err, fwerrors.KindUnavailable, "trace source")
	}
	return fwerrors.Wrap(err, fwerrors.KindInternal, "poll trace source")
}

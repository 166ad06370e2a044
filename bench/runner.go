// bench/runner.go
package bench

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	fwerrors "fwreach/errors"
	"fwreach/logging"
)

// Runner executes trials strictly one after another so that concurrent
// drivers never share the kernel trace stream.
type Runner struct {
	cfg     Config
	exec    Executor
	rng     *rand.Rand
	metrics *Metrics
	log     *zap.SugaredLogger
}

// NewRunner prepares a run. A zero seed picks a time-based one.
func NewRunner(cfg Config, exec Executor, metrics *Metrics, log *zap.SugaredLogger) *Runner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{
		cfg:     cfg,
		exec:    exec,
		rng:     rand.New(rand.NewSource(seed)),
		metrics: metrics,
		log:     log,
	}
}

// Run performs every trial and returns the records in iteration order. The
// first failing trial aborts the run; the records gathered so far are
// returned alongside the error but are not meant to be persisted.
func (r *Runner) Run(ctx context.Context) ([]TrialRecord, error) {
	records := make([]TrialRecord, 0, r.cfg.Trials)
	step := max(r.cfg.Trials/10, 1)

	for i := 1; i <= r.cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		source, target := r.cfg.Pool.Pick(r.rng)
		out, err := r.exec.Run(ctx, source, target)
		if err != nil {
			return records, fwerrors.Wrapf(err, fwerrors.KindTrial, "trial %d (%s -> %s)", i, source, target)
		}
		status, micros, err := ParseOutput(out)
		if err != nil {
			return records, fwerrors.Wrapf(err, fwerrors.KindTrial, "trial %d (%s -> %s)", i, source, target)
		}

		rec := TrialRecord{
			Iteration: i,
			Expected:  Expected(source, target).String(),
			Observed:  status,
			Micros:    micros,
		}
		records = append(records, rec)
		if r.metrics != nil {
			r.metrics.Observe(rec)
		}
		if !rec.Match() {
			r.log.Warnw("verdict mismatch", "iteration", i, "source", source, "target", target,
				"expected", rec.Expected, "observed", rec.Observed)
		}
		if i%step == 0 || i == r.cfg.Trials {
			r.log.Infow("progress", "done", i, "total", r.cfg.Trials,
				"percent", float64(i)*100/float64(r.cfg.Trials))
		}
	}
	return records, nil
}

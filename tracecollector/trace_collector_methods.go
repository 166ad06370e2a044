// tracecollector/trace_collector_methods.go
package tracecollector

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/cilium/ebpf/perf"
	"github.com/cilium/ebpf/ringbuf"
	"golang.org/x/sync/errgroup"
)

// NextBatch waits up to one poll interval for the first record, then drains
// whatever is already queued without waiting, up to the batch size.
func (c *collector) NextBatch(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.pollInterval)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.rd.SetDeadline(deadline)

	var batch [][]byte
	for len(batch) < c.batchSize {
		sample, lost, err := c.rd.read()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return batch, nil
			}
			if errors.Is(err, perf.ErrClosed) || errors.Is(err, ringbuf.ErrClosed) {
				return batch, ErrSourceClosed
			}
			c.readErrors.Add(1)
			c.log.Warnw("trace read failed", "err", err)
			return batch, nil
		}

		if lost > 0 {
			c.lost.Add(lost)
			c.log.Warnw("probe dropped samples", "lost", lost)
			continue
		}

		c.samples.Add(1)
		batch = append(batch, sample)
		if len(batch) == 1 {
			c.rd.SetDeadline(time.Now())
		}
	}
	return batch, nil
}

// Drain discards the records already sitting in the buffer.
func (c *collector) Drain() (int, error) {
	c.rd.SetDeadline(time.Now())
	var n int
	for {
		_, lost, err := c.rd.read()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return n, nil
			}
			if errors.Is(err, perf.ErrClosed) || errors.Is(err, ringbuf.ErrClosed) {
				return n, ErrSourceClosed
			}
			c.readErrors.Add(1)
			return n, err
		}
		if lost > 0 {
			c.lost.Add(lost)
			continue
		}
		n++
	}
}

// Stats returns a snapshot of the collector counters.
func (c *collector) Stats() Stats {
	return Stats{
		Links:      len(c.links),
		Samples:    c.samples.Load(),
		Lost:       c.lost.Load(),
		ReadErrors: c.readErrors.Load(),
	}
}

// Close detaches the probes and releases the reader and collection.
func (c *collector) Close() error {
	var errs []error
	if c.rd != nil {
		errs = append(errs, c.rd.Close())
	}
	for _, l := range c.links {
		errs = append(errs, l.Close())
	}
	c.links = nil
	if c.coll != nil {
		c.coll.Close()
	}
	return errors.Join(errs...)
}

// WatchStat counts the rows Watch emitted, split by verdict.
type WatchStat struct {
	Accepted uint64
	Dropped  uint64
}

// Watch streams every hook event of flow to events until ctx is cancelled or
// the source closes. Return-path (OUTPUT) events are skipped. When stats is
// non-nil a WatchStat snapshot is pushed to it every second.
func Watch(ctx context.Context, src Source, flow Flow, events chan<- Event, stats chan<- WatchStat) error {
	var st WatchStat
	statCh := make(chan WatchStat, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for {
			batch, err := src.NextBatch(gctx)
			if err != nil {
				if errors.Is(err, ErrSourceClosed) || gctx.Err() != nil {
					return nil
				}
				return err
			}
			for _, sample := range batch {
				ev, ok := Decode(sample)
				if !ok || !flow.Matches(ev) || ev.Hook == HookOutput {
					continue
				}
				if ev.Verdict == VerdictDrop {
					st.Dropped++
				} else {
					st.Accepted++
				}
				select {
				case events <- ev:
				case <-gctx.Done():
					return nil
				}
				// keep only the latest snapshot for the stats pump
				select {
				case <-statCh:
				default:
				}
				statCh <- st
			}
		}
	})

	if stats != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			var latest WatchStat
			for {
				select {
				case <-gctx.Done():
					return nil
				case latest = <-statCh:
				case <-ticker.C:
					select {
					case stats <- latest:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}

	return g.Wait()
}

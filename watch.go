// watch.go
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
	"fwreach/trial"
	"fwreach/ui"
)

// watch streams the hook events of the flow until interrupted, while the
// generator keeps traffic flowing. It never latches a verdict.
func watch(ctx context.Context, opts options, ep *utility.Endpoints, prober trial.Prober,
	src tracecollector.Source, out *trial.Printer, sysChan chan string, log *zap.SugaredLogger,
) int {
	if err := trial.Sanity(ctx, prober); err != nil {
		out.Error("%v", err)
		return 1
	}
	discarded, err := src.Drain()
	if err != nil {
		out.Error("%v", err)
		return 1
	}
	log.Debugw("discarded startup traffic", "records", discarded)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	flow := tracecollector.Flow{Source: ep.SourceText(), Destination: ep.TargetText()}
	events := make(chan tracecollector.Event, 200)
	var stats chan tracecollector.WatchStat
	if opts.tui {
		stats = make(chan tracecollector.WatchStat, 1)
	}

	gen := trial.NewGenerator(prober, opts.interval, log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gen.Run(gctx) })
	g.Go(func() error {
		defer close(events)
		if stats != nil {
			defer close(stats)
		}
		return tracecollector.Watch(gctx, src, flow, events, stats)
	})

	if opts.tui {
		if err := runTUI(ctx, cancel, flow, events, stats, sysChan, log); err != nil {
			out.Error("failed to start UI: %v", err)
		}
	} else {
		fmt.Println(ui.TraceHeader())
		fmt.Println(strings.Repeat("-", len(ui.TraceHeader())))
		for ev := range events {
			fmt.Println(ui.FormatTraceMsg(ev, false))
		}
	}

	cancel()
	err = g.Wait()
	gs := gen.Stats()
	log.Infow("watch finished", "flow", flow.String(), "attempts", gs.Attempts, "timeouts", gs.Timeouts)
	if err != nil && !errors.Is(err, context.Canceled) {
		out.Error("watch failed: %v", err)
		return 1
	}
	return 0
}

// runTUI blocks until the user quits or the watch loop ends.
func runTUI(ctx context.Context, cancel context.CancelFunc, flow tracecollector.Flow,
	events <-chan tracecollector.Event, stats <-chan tracecollector.WatchStat,
	sysChan chan string, log *zap.SugaredLogger,
) error {
	app, layout, views := ui.SetupUI(flow.String(), cancel)

	// Buffer to keep only the last MaxLines entries for logs
	var sysLines []string
	go ui.PumpTextview(app, views.Sys, sysChan, &sysLines)
	go ui.PumpTraceView(app, views.Trace, events)
	go ui.PumpCounterView(app, views.Accepted, views.Dropped, stats)

	// Signals and a failing watch loop both end the UI
	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	log.Infow("watching flow", "flow", flow.String())
	return app.SetRoot(layout, true).Run()
}

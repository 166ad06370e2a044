// cmd/fwbench/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fwreach/bench"
	fwerrors "fwreach/errors"
	"fwreach/logging"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] VARIANT\n\nVariants: %s\n\nFlags:\n",
		os.Args[0], strings.Join(bench.VariantNames(), ", "))
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML file overriding the benchmark defaults")
	sudo := flag.Bool("sudo", false, "run the driver through sudo")
	driver := flag.String("driver", "", "path to the fwreach binary")
	trials := flag.Int("trials", 0, "number of trials")
	seed := flag.Int64("seed", 0, "seed for pair selection (0 = time based)")
	results := flag.String("results", "", "directory for the CSV report")
	metricsFile := flag.String("metrics", "", "write Prometheus metrics to this file")
	deadline := flag.Duration("deadline", 0, "per-trial verdict deadline passed to the driver")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	log := logging.New(*logLevel, os.Stderr)
	defer log.Sync()

	if flag.NArg() != 1 {
		usage()
		return 1
	}
	variant := flag.Arg(0)

	cfg := bench.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = bench.LoadConfig(*configPath); err != nil {
			log.Errorw("invalid config", "err", err)
			return 1
		}
	}

	// flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sudo":
			cfg.Sudo = *sudo
		case "driver":
			cfg.Driver = *driver
		case "trials":
			cfg.Trials = *trials
		case "seed":
			cfg.Seed = *seed
		case "results":
			cfg.ResultsDir = *results
		case "metrics":
			cfg.MetricsFile = *metricsFile
		case "deadline":
			cfg.TrialDeadline = *deadline
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Errorw("invalid configuration", "err", err)
		return 1
	}

	args, err := cfg.DriverArgs(variant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec := &bench.ProcessExecutor{Driver: cfg.Driver, Args: args, Sudo: cfg.Sudo}
	metrics := bench.NewMetrics(variant)
	log.Infow("benchmark starting", "variant", variant, "config", cfg.String())

	start := time.Now()
	records, err := bench.NewRunner(cfg, exec, metrics, log).Run(ctx)
	if err != nil {
		if fwerrors.IsKind(err, fwerrors.KindTrial) {
			log.Errorw("trial failed, no report written", "err", err, "completed", len(records))
		} else {
			log.Errorw("benchmark interrupted, no report written", "err", err, "completed", len(records))
		}
		return 1
	}
	log.Infow("benchmark finished", "trials", len(records), "took", time.Since(start).Round(time.Millisecond))

	path := bench.ReportPath(cfg.ResultsDir, variant)
	if err := bench.SaveReport(path, records); err != nil {
		log.Errorw("save report", "path", path, "err", err)
		return 1
	}
	log.Infow("report written", "path", path)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Errorw("write metrics", "path", cfg.MetricsFile, "err", err)
			return 1
		}
		log.Infow("metrics written", "path", cfg.MetricsFile)
	}

	bench.Summarize(records).Print(os.Stdout)
	return 0
}

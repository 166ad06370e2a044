// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cilium/ebpf/rlimit"

	fwerrors "fwreach/errors"
	"fwreach/logging"
	"fwreach/tracecollector"
	"fwreach/tracecollector/utility"
	"fwreach/trial"
	"fwreach/ui"
)

type options struct {
	obj          string
	prober       string
	deadline     time.Duration
	probeTimeout time.Duration
	interval     time.Duration
	watch        bool
	tui          bool
	selectSource bool
	logLevel     string
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] SOURCE_IP TARGET_IP[:PORT]\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.StringVar(&opts.obj, "obj", "", "compiled probe program (default: "+utility.DefaultProbeObject+" next to the executable)")
	flag.StringVar(&opts.prober, "prober", "dial", "traffic generator: dial or curl")
	flag.DurationVar(&opts.deadline, "deadline", 0, "give up after this long without a verdict (0 waits forever)")
	flag.DurationVar(&opts.probeTimeout, "probe-timeout", trial.DefaultProbeTimeout, "timeout of one connection attempt")
	flag.DurationVar(&opts.interval, "interval", trial.DefaultProbeInterval, "pause between connection attempts")
	flag.BoolVar(&opts.watch, "watch", false, "stream every hook event of the flow instead of latching a verdict")
	flag.BoolVar(&opts.tui, "tui", false, "show watch mode in a terminal UI (implies -watch)")
	flag.BoolVar(&opts.selectSource, "select", false, "pick the source address interactively; only TARGET is given")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if opts.tui {
		opts.watch = true
	}

	out := trial.NewPrinter(os.Stdout)

	source, target, ok := positional(opts.selectSource, flag.Args())
	if !ok {
		usage()
		return 1
	}
	if opts.selectSource {
		var err error
		if source, err = ui.SelectSourceAddress(); err != nil {
			out.Error("%v", err)
			return 1
		}
	}

	var sysChan chan string
	log := logging.New(opts.logLevel, os.Stderr)
	if opts.tui {
		sysChan = make(chan string, 200)
		log = logging.New(opts.logLevel, ui.ChannelWriter{Ch: sysChan})
	}
	defer log.Sync()

	if !opts.watch {
		out.Info("Doing startup checks")
	}
	ep, err := utility.ParseEndpoints(source, target)
	if err != nil {
		out.Error("%v", err)
		return 1
	}

	prober, err := newProber(opts, ep)
	if err != nil {
		out.Error("%v", err)
		return 1
	}

	// Remove memory lock limits for eBPF
	if err := rlimit.RemoveMemlock(); err != nil {
		out.Error("failed to remove memlock limit: %v", err)
		return 1
	}

	obj, err := utility.ResolveProbeObject(opts.obj)
	if err != nil {
		out.Error("locate probe program: %v", err)
		return 1
	}
	coll, err := tracecollector.New(tracecollector.Options{ObjectPath: obj, Logger: log})
	if err != nil {
		out.Error("%v", err)
		return 1
	}
	defer coll.Close()
	log.Infow("probe attached", "object", obj, "links", coll.Stats().Links)

	// Handle graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.watch {
		return watch(ctx, opts, ep, prober, coll, out, sysChan, log)
	}

	out.Info("Please wait, testing firewall policy %s", ep)
	driver := trial.NewDriver(trial.Config{
		Endpoints:     ep,
		Prober:        prober,
		ProbeInterval: opts.interval,
		Deadline:      opts.deadline,
		Logger:        log,
	}, coll)

	res, err := driver.Run(ctx)
	if err != nil {
		out.Error("%v", err)
		log.Debugw("trial failed", "kind", fwerrors.GetKind(err).String())
		return 1
	}
	out.Result(ep, res)

	st := coll.Stats()
	log.Infow("collector stats", "samples", st.Samples, "lost", st.Lost, "read_errors", st.ReadErrors)
	return 0
}

// positional returns SOURCE and TARGET. With -select only TARGET is given.
func positional(selectSource bool, args []string) (source, target string, ok bool) {
	switch {
	case selectSource && len(args) == 1:
		return "", args[0], true
	case !selectSource && len(args) == 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

func newProber(opts options, ep *utility.Endpoints) (trial.Prober, error) {
	switch opts.prober {
	case "dial":
		local, err := utility.HasLocalAddress(ep.Source)
		if err != nil {
			return nil, fwerrors.Wrap(err, fwerrors.KindPrecondition, "check source address")
		}
		if !local {
			return nil, fwerrors.Errorf(fwerrors.KindPrecondition, "failed interface bind: %s is not assigned to any local interface", ep.SourceText())
		}
		return &trial.DialProber{Endpoints: ep, Timeout: opts.probeTimeout}, nil
	case "curl":
		return &trial.CurlProber{Endpoints: ep, Timeout: opts.probeTimeout}, nil
	default:
		return nil, fwerrors.Errorf(fwerrors.KindValidation, "unknown prober %q (want dial or curl)", opts.prober)
	}
}

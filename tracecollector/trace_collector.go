// tracecollector/trace_collector.go
package tracecollector

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/perf"
	"github.com/cilium/ebpf/ringbuf"
	"go.uber.org/zap"

	fwerrors "fwreach/errors"
	"fwreach/logging"
)

// DefaultEventsMap is the map the probe publishes records to.
const DefaultEventsMap = "route_evt"

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultBatchSize    = 64
	perfBufferPages     = 64
)

// ErrSourceClosed is returned by NextBatch once the source has been closed.
var ErrSourceClosed = errors.New("trace source closed")

// Options configure a kernel-backed collector.
type Options struct {
	ObjectPath   string        // compiled probe program (ELF)
	EventsMap    string        // defaults to DefaultEventsMap
	PollInterval time.Duration // upper bound for one NextBatch call
	BatchSize    int           // max records per NextBatch call
	Logger       *zap.SugaredLogger
}

// Collector is a Source backed by a loaded probe program.
type Collector interface {
	Source
	Stats() Stats
}

// Stats are running counters of a collector.
type Stats struct {
	Links      int
	Samples    uint64
	Lost       uint64
	ReadErrors uint64
}

// sampleReader hides the difference between perf and ring buffers.
type sampleReader interface {
	SetDeadline(t time.Time)
	Close() error
	read() (sample []byte, lost uint64, err error)
}

type perfSampleReader struct{ *perf.Reader }

func (r perfSampleReader) read() ([]byte, uint64, error) {
	rec, err := r.Read()
	return rec.RawSample, rec.LostSamples, err
}

type ringSampleReader struct{ *ringbuf.Reader }

func (r ringSampleReader) read() ([]byte, uint64, error) {
	rec, err := r.Read()
	return rec.RawSample, 0, err
}

type collector struct {
	obj          string           // probe object path
	coll         *ebpf.Collection // loaded programs and maps
	links        []link.Link      // kprobe/kretprobe links
	rd           sampleReader     // perf or ring buffer reader
	pollInterval time.Duration
	batchSize    int
	log          *zap.SugaredLogger

	samples    atomic.Uint64
	lost       atomic.Uint64
	readErrors atomic.Uint64
}

// New loads the probe program, attaches every kprobe and kretprobe it
// declares and opens a reader on the events map.
func New(opts Options) (Collector, error) {
	if strings.TrimSpace(opts.ObjectPath) == "" {
		return nil, fwerrors.New(fwerrors.KindValidation, "probe object path is required")
	}
	if opts.EventsMap == "" {
		opts.EventsMap = DefaultEventsMap
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	spec, err := ebpf.LoadCollectionSpec(opts.ObjectPath)
	if err != nil {
		return nil, fwerrors.Wrapf(err, fwerrors.KindUnavailable, "load spec %s", opts.ObjectPath)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fwerrors.Wrap(err, fwerrors.KindUnavailable, "create collection")
	}

	c := &collector{
		obj:          opts.ObjectPath,
		coll:         coll,
		pollInterval: opts.PollInterval,
		batchSize:    opts.BatchSize,
		log:          opts.Logger,
	}

	for _, name := range slices.Sorted(maps.Keys(spec.Programs)) {
		kind, symbol, ok := parseProbeSection(spec.Programs[name].SectionName)
		if !ok {
			continue
		}
		lnk, err := attachProbe(kind, symbol, coll.Programs[name])
		if err != nil {
			c.Close()
			return nil, fwerrors.Wrapf(err, fwerrors.KindUnavailable, "attach %s %s", kind, symbol)
		}
		c.log.Debugw("probe attached", "program", name, "kind", kind, "symbol", symbol)
		c.links = append(c.links, lnk)
	}
	if len(c.links) == 0 {
		c.Close()
		return nil, fwerrors.Errorf(fwerrors.KindUnavailable, "no kprobe programs in %s", opts.ObjectPath)
	}

	events, ok := coll.Maps[opts.EventsMap]
	if !ok {
		c.Close()
		return nil, fwerrors.Errorf(fwerrors.KindUnavailable, "map %q not found in %s", opts.EventsMap, opts.ObjectPath)
	}

	switch events.Type() {
	case ebpf.RingBuf:
		rd, err := ringbuf.NewReader(events)
		if err != nil {
			c.Close()
			return nil, fwerrors.Wrap(err, fwerrors.KindUnavailable, "ringbuf reader")
		}
		c.rd = ringSampleReader{rd}
	case ebpf.PerfEventArray:
		rd, err := perf.NewReader(events, perfBufferPages*os.Getpagesize())
		if err != nil {
			c.Close()
			return nil, fwerrors.Wrap(err, fwerrors.KindUnavailable, "perf reader")
		}
		c.rd = perfSampleReader{rd}
	default:
		c.Close()
		return nil, fwerrors.Errorf(fwerrors.KindUnavailable, "map %q has unsupported type %s", opts.EventsMap, events.Type())
	}

	return c, nil
}

// parseProbeSection splits "kprobe/sym" or "kretprobe/sym".
func parseProbeSection(section string) (kind, symbol string, ok bool) {
	kind, symbol, found := strings.Cut(section, "/")
	if !found || symbol == "" {
		return "", "", false
	}
	switch kind {
	case "kprobe", "kretprobe":
		return kind, symbol, true
	default:
		return "", "", false
	}
}

func attachProbe(kind, symbol string, prog *ebpf.Program) (link.Link, error) {
	if prog == nil {
		return nil, fmt.Errorf("program for %s not loaded", symbol)
	}
	if kind == "kretprobe" {
		return link.Kretprobe(symbol, prog, nil)
	}
	return link.Kprobe(symbol, prog, nil)
}

// bench/picker.go
package bench

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
)

// Pool is the set of lab addresses trials are drawn from.
type Pool struct {
	Sources []string `yaml:"sources"`
	Targets []string `yaml:"targets"` // host:port
}

// Validate checks that every target leaves at least one other source and
// that the oracle knows the verdict of every pair Pick can draw.
func (p Pool) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("pool has no targets")
	}
	for _, t := range p.Targets {
		if len(candidates(p.Sources, t)) == 0 {
			return fmt.Errorf("no source distinct from target %s", t)
		}
		for _, src := range candidates(p.Sources, t) {
			if !Expected(src, t).Terminal() {
				return fmt.Errorf("no expected verdict for %s -> %s", src, t)
			}
		}
	}
	return nil
}

// Pick draws a target, then a source different from the target host.
func (p Pool) Pick(rng *rand.Rand) (source, target string) {
	target = p.Targets[rng.Intn(len(p.Targets))]
	srcs := candidates(p.Sources, target)
	return srcs[rng.Intn(len(srcs))], target
}

func candidates(sources []string, target string) []string {
	host, _, _ := strings.Cut(target, ":")
	return slices.DeleteFunc(slices.Clone(sources), func(s string) bool { return s == host })
}

// bench/config.go
package bench

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	fwerrors "fwreach/errors"
)

// Variants maps a variant name to the driver flags it adds.
var Variants = map[string][]string{
	"execution": nil,
	"curl":      {"-prober", "curl"},
}

// VariantNames returns the known variants, sorted.
func VariantNames() []string {
	names := make([]string, 0, len(Variants))
	for n := range Variants {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Config controls a benchmark run. Zero fields in a config file keep their
// defaults.
type Config struct {
	Trials        int           `yaml:"trials"`
	Driver        string        `yaml:"driver"`
	Sudo          bool          `yaml:"sudo"`
	ResultsDir    string        `yaml:"results_dir"`
	Seed          int64         `yaml:"seed"`
	TrialDeadline time.Duration `yaml:"trial_deadline"`
	MetricsFile   string        `yaml:"metrics_file"`
	Pool          Pool          `yaml:"pool"`
}

// DefaultConfig is the validation lab setup.
func DefaultConfig() Config {
	return Config{
		Trials:     1000,
		Driver:     "./fwreach",
		ResultsDir: "results",
		Pool: Pool{
			Sources: []string{"10.10.0.10", "10.10.0.11", "10.10.0.12", "10.10.0.20"},
			Targets: []string{"10.10.0.10:8080", "10.10.0.11:8080", "10.10.0.12:8080", "10.10.0.20:8080"},
		},
	}
}

// LoadConfig overlays the YAML file at path on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fwerrors.Wrapf(err, fwerrors.KindValidation, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fwerrors.Wrapf(err, fwerrors.KindValidation, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks the config before any trial runs.
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return fwerrors.Errorf(fwerrors.KindValidation, "trials must be positive, got %d", c.Trials)
	}
	if strings.TrimSpace(c.Driver) == "" {
		return fwerrors.New(fwerrors.KindValidation, "driver path is required")
	}
	if c.TrialDeadline < 0 {
		return fwerrors.Errorf(fwerrors.KindValidation, "trial deadline must not be negative")
	}
	if err := c.Pool.Validate(); err != nil {
		return fwerrors.Wrap(err, fwerrors.KindValidation, "pool")
	}
	return nil
}

// DriverArgs returns the driver flags for variant.
func (c Config) DriverArgs(variant string) ([]string, error) {
	flags, ok := Variants[variant]
	if !ok {
		return nil, fwerrors.Errorf(fwerrors.KindValidation, "unknown variant %q (want one of %s)",
			variant, strings.Join(VariantNames(), ", "))
	}
	args := slices.Clone(flags)
	if c.TrialDeadline > 0 {
		args = append(args, "-deadline", c.TrialDeadline.String())
	}
	return args, nil
}

func (c Config) String() string {
	return fmt.Sprintf("trials=%d driver=%s sudo=%t results=%s", c.Trials, c.Driver, c.Sudo, c.ResultsDir)
}

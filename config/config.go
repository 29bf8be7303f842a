package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/core/factory"
	"github.com/kilianp07/energylp/core/freq"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/objective"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. ELP_OBJECTIVE__MODE=carbon.
const EnvPrefix = "ELP_"

// ErrUnsupportedFormat is returned for files that are neither yaml nor json.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Config is a complete optimisation scenario.
type Config struct {
	Objective objective.Config       `json:"objective"`
	Flags     assets.Flags           `json:"flags"`
	FreqMins  int                    `json:"freq_mins"`
	Solver    SolverConfig           `json:"solver"`
	Assets    []factory.ModuleConfig `json:"assets"`
	Data      DataConfig             `json:"data"`
	Metrics   metrics.Config         `json:"metrics"`
	Logging   LoggingConfig          `json:"logging"`
	Output    OutputConfig           `json:"output"`
	Server    ServerConfig           `json:"server"`
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	if c.FreqMins == 0 {
		c.FreqMins = freq.DefaultMinutes
	}
	c.Objective.SetDefaults()
	c.Solver.SetDefaults()
	c.Logging.SetDefaults()
	c.Output.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := freq.New(c.FreqMins); err != nil {
		return err
	}
	if err := c.Objective.Validate(); err != nil {
		return err
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	known := make(map[string]bool)
	for _, t := range assets.Types() {
		known[t] = true
	}
	for i, a := range c.Assets {
		if !known[a.Type] {
			return fmt.Errorf("config: asset %d: %w: %q", i, assets.ErrUnknownAssetType, a.Type)
		}
	}
	if c.Data.Series != nil {
		if err := c.Data.Validate(); err != nil {
			return err
		}
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

// Scenario checks that the configuration describes a complete scenario,
// with assets and interval data. A server configuration needs neither.
func (c Config) Scenario() error {
	if len(c.Assets) == 0 {
		return fmt.Errorf("config: at least one asset is required")
	}
	return c.Data.Validate()
}

// Freq returns the interval length.
func (c Config) Freq() (freq.Freq, error) {
	return freq.New(c.FreqMins)
}

func parser(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads a scenario file, applies ELP_ environment overrides and
// defaults, loads an external data file when one is referenced, and
// validates the result.
func Load(path string) (*Config, error) {
	p, err := parser(path)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if cfg.Data.Path != "" && !filepath.IsAbs(cfg.Data.Path) {
		cfg.Data.Path = filepath.Join(filepath.Dir(path), cfg.Data.Path)
	}
	if err := cfg.Data.load(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DataConfig holds the interval series inline or points to a yaml or json
// file holding them.
type DataConfig struct {
	Path   string          `json:"path"`
	Series *intervals.Data `json:"series"`
}

func (c *DataConfig) load() error {
	if c.Path == "" || c.Series != nil {
		return nil
	}
	p, err := parser(c.Path)
	if err != nil {
		return err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(c.Path), p); err != nil {
		return fmt.Errorf("config: data: %w", err)
	}
	var d intervals.Data
	if err := k.UnmarshalWithConf("", &d, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return fmt.Errorf("config: data: %w", err)
	}
	c.Series = &d
	return nil
}

// Validate checks that exactly one data source is configured.
func (c DataConfig) Validate() error {
	if c.Series == nil {
		return fmt.Errorf("config: data requires series or a path")
	}
	d := *c.Series
	d.SetDefaults()
	return d.Validate()
}

// SolverConfig tunes the branch-and-bound simplex solver.
type SolverConfig struct {
	Tolerance        float64 `json:"tolerance"`
	MaxNodes         int     `json:"max_nodes"`
	TimeLimitSeconds int     `json:"time_limit_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = 1e-9
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = 5000
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 60
	}
}

// Validate checks the solver limits.
func (c SolverConfig) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("config: solver tolerance must be positive, got %v", c.Tolerance)
	}
	if c.MaxNodes <= 0 {
		return fmt.Errorf("config: solver max_nodes must be positive, got %d", c.MaxNodes)
	}
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("config: solver time_limit_seconds must not be negative, got %d", c.TimeLimitSeconds)
	}
	return nil
}

// TimeLimit bounds one solve.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

// OutputConfig selects where and how the result table is written.
type OutputConfig struct {
	// Path is the destination file; empty writes to stdout.
	Path   string `json:"path"`
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "csv"
	}
}

// Validate checks the output format.
func (c OutputConfig) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("config: unknown output format %s", c.Format)
	}
	return nil
}

// ServerConfig configures the HTTP API of the serve command.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on the optimise route.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks the listen address.
func (c ServerConfig) Validate() error {
	if !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("config: server addr must be host:port, got %q", c.Addr)
	}
	return nil
}

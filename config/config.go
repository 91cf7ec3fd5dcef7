// Package config reads analysis settings from a TOML file. Settings given
// explicitly on the command line take precedence over the file.
//
//	domain = "zones"
//	overflow = "ideal"
//	thresholds = [100, 1000]
//	timeout = "5s"
//
//	[requires]
//	count = ["n >= 0"]
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("invalid configuration")

// Duration decodes TOML strings such as "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// Settings are the effective parameters of an analysis run.
type Settings struct {
	Domain          string              `toml:"domain"`
	Overflow        string              `toml:"overflow"`
	Thresholds      []int64             `toml:"thresholds"`
	MaxIterations   int                 `toml:"max-iterations"`
	NarrowingPasses int                 `toml:"narrowing"`
	Workers         int                 `toml:"workers"`
	Timeout         Duration            `toml:"timeout"`
	Enums           bool                `toml:"enums"`
	// Requires maps function names to their preconditions.
	Requires map[string][]string `toml:"requires"`
}

var (
	domains   = map[string]bool{"intervals": true, "zones": true}
	overflows = map[string]bool{"": true, "wrap": true, "ideal": true}
)

func (s Settings) Validate() error {
	switch {
	case !domains[s.Domain]:
		return fmt.Errorf("domain %q: %w", s.Domain, ErrInvalid)
	case !overflows[s.Overflow]:
		return fmt.Errorf("overflow %q: %w", s.Overflow, ErrInvalid)
	case s.MaxIterations < 0, s.NarrowingPasses < 0, s.Workers < 0:
		return fmt.Errorf("negative bound: %w", ErrInvalid)
	case s.Timeout.Duration < 0:
		return fmt.Errorf("timeout %s: %w", s.Timeout, ErrInvalid)
	}
	return nil
}

// Config is a decoded configuration file.
type Config struct {
	file Settings
	meta toml.MetaData
}

// Load decodes the configuration file at path.
func Load(path string) (*Config, error) {
	c := &Config{}
	meta, err := toml.DecodeFile(path, &c.file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s: %w", path, undecoded[0], ErrInvalid)
	}
	c.meta = meta
	return c, nil
}

// IsDefined checks whether the file sets the given key.
func (c *Config) IsDefined(key ...string) bool {
	return c != nil && c.meta.IsDefined(key...)
}

// Merge overlays the settings of the file onto s. Keys for which explicit
// returns true keep their value in s. A nil Config leaves s unchanged.
func (c *Config) Merge(s Settings, explicit func(key string) bool) (Settings, error) {
	use := func(key string) bool {
		return c.IsDefined(key) && !explicit(key)
	}

	if use("domain") {
		s.Domain = c.file.Domain
	}
	if use("overflow") {
		s.Overflow = c.file.Overflow
	}
	if use("thresholds") {
		s.Thresholds = c.file.Thresholds
	}
	if use("max-iterations") {
		s.MaxIterations = c.file.MaxIterations
	}
	if use("narrowing") {
		s.NarrowingPasses = c.file.NarrowingPasses
	}
	if use("workers") {
		s.Workers = c.file.Workers
	}
	if use("timeout") {
		s.Timeout = c.file.Timeout
	}
	if use("enums") {
		s.Enums = c.file.Enums
	}
	if c.IsDefined("requires") {
		s.Requires = c.file.Requires
	}

	return s, s.Validate()
}

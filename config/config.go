// Package config reads the settings of the lrtab command from a TOML file.
//
//	variant = "lalr1"
//	max_states = 10000
//	trace_level = "error"
//	report = false
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/lrtab/grammar"
	"github.com/npillmayer/schuko/tracing"
)

type Config struct {
	Variant    string `toml:"variant"`
	MaxStates  int    `toml:"max_states"`
	TraceLevel string `toml:"trace_level"`
	Report     bool   `toml:"report"`
}

func Default() *Config {
	return &Config{
		Variant:    grammar.VariantLALR1.String(),
		MaxStates:  grammar.DefaultMaxStates,
		TraceLevel: "error",
	}
}

// Read decodes a configuration over the defaults. Keys the configuration doesn't know are errors.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	meta, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %v", strings.Join(keys, ", "))
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ReadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	_, err := grammar.ParseVariant(c.Variant)
	if err != nil {
		return err
	}
	if c.MaxStates <= 0 {
		return fmt.Errorf("max_states must be positive: %v", c.MaxStates)
	}
	switch strings.ToLower(c.TraceLevel) {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("unknown trace level: %v", c.TraceLevel)
	}
	return nil
}

func (c *Config) BuildVariant() (grammar.Variant, error) {
	return grammar.ParseVariant(c.Variant)
}

func (c *Config) BuildOptions() []grammar.BuildOption {
	opts := []grammar.BuildOption{
		grammar.MaxStates(c.MaxStates),
	}
	if c.Report {
		opts = append(opts, grammar.EnableReporting())
	}
	return opts
}

func (c *Config) Level() tracing.TraceLevel {
	return tracing.TraceLevelFromString(c.TraceLevel)
}

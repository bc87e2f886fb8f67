// Package config loads and validates the tool configuration: dialect
// selection, rule parameters, pattern lists and runtime knobs, merged
// from built-in defaults and an optional testlint.toml.
package config

import (
	"fmt"
	"runtime"

	"testlint/internal/diag"
	"testlint/internal/dialect"
	"testlint/internal/rules"
)

// Config is the resolved tool configuration. The zero value is not
// usable; start from Default and overlay a file with Load.
type Config struct {
	// Path is the file this configuration came from; empty when running
	// on built-in defaults.
	Path string

	// Dialect Unknown means classify every file from its content.
	Dialect       dialect.Kind
	Jobs          int
	FailOn        rules.FailOn
	MaxAssertions int

	// Pattern list replacements; nil keeps the dialect preset list.
	Assertions []string
	Waits      []string
	IO         []string
	Helpers    []string
	// Extra lists append to whichever list is in effect.
	ExtraAssertions []string
	ExtraWaits      []string
	ExtraIO         []string
	ExtraHelpers    []string

	// Enabled, when non-nil, restricts evaluation to exactly these rules.
	Enabled map[diag.Code]bool
	// Disabled rules never evaluate; their diagnostics are dropped even
	// when another stage produced them.
	Disabled map[diag.Code]bool
	// Severity rewrites the default severity per rule id.
	Severity map[diag.Code]diag.Severity

	Cache CacheConfig
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	Enabled bool
	// Dir overrides the default cache directory when set.
	Dir string
}

// Default returns the built-in configuration: auto dialect detection,
// fail on errors, at most three assertions per test.
func Default() *Config {
	return &Config{
		Dialect:       dialect.Unknown,
		FailOn:        rules.FailOnError,
		MaxAssertions: 3,
	}
}

// Error is a fatal configuration problem. Analysis must not start on it;
// there is no silent fallback to defaults.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("%s: invalid configuration: %s", e.Path, e.Reason)
}

func (c *Config) errf(format string, args ...any) error {
	return &Error{Path: c.Path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration before any file is processed.
func (c *Config) Validate() error {
	if c.MaxAssertions < 1 {
		return c.errf("max_assertions must be at least 1, got %d", c.MaxAssertions)
	}
	if c.Jobs < 0 {
		return c.errf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Assertions != nil && len(c.Assertions)+len(c.ExtraAssertions) == 0 {
		return c.errf("assertion pattern set is empty; at least one assertion pattern is required")
	}
	return nil
}

// EffectiveJobs resolves the worker count: zero means one per CPU.
func (c *Config) EffectiveJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

// Preset resolves the dialect preset for a kind and applies the pattern
// replacements and extensions from this configuration.
func (c *Config) Preset(k dialect.Kind) dialect.Preset {
	p := dialect.ForKind(k)
	p.Patterns.Assertions = mergeList(p.Patterns.Assertions, c.Assertions, c.ExtraAssertions)
	p.Patterns.TimeWaits = mergeList(p.Patterns.TimeWaits, c.Waits, c.ExtraWaits)
	p.Patterns.IOCalls = mergeList(p.Patterns.IOCalls, c.IO, c.ExtraIO)
	p.Patterns.FixtureHelpers = mergeList(p.Patterns.FixtureHelpers, c.Helpers, c.ExtraHelpers)
	return p
}

func mergeList(preset, replace, extra []string) []string {
	base := preset
	if replace != nil {
		base = replace
	}
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// Rules returns the rule list this configuration evaluates.
func (c *Config) Rules() []rules.Rule {
	rs := rules.Filter(rules.Defaults(), c.Enabled)
	if len(c.Disabled) == 0 {
		return rs
	}
	out := make([]rules.Rule, 0, len(rs))
	for _, r := range rs {
		if !c.Disabled[r.Code] {
			out = append(out, r)
		}
	}
	return out
}

// Params returns the rule engine parameters.
func (c *Config) Params() rules.Params {
	return rules.Params{MaxAssertions: c.MaxAssertions}
}

// Policy returns the severity policy applied to every diagnostic.
func (c *Config) Policy() rules.Policy {
	return rules.Policy{Severity: c.Severity, Disabled: c.Disabled}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"testlint/internal/diag"
	"testlint/internal/dialect"
	"testlint/internal/rules"
)

// FileName is the configuration file discovery looks for.
const FileName = "testlint.toml"

type fileSchema struct {
	Lint lintSchema `toml:"lint"`
}

type lintSchema struct {
	Dialect       string            `toml:"dialect"`
	Jobs          int               `toml:"jobs"`
	FailOn        string            `toml:"fail_on"`
	MaxAssertions int               `toml:"max_assertions"`
	EnabledRules  []string          `toml:"enabled_rules"`
	Rules         map[string]string `toml:"rules"`
	Patterns      patternsSchema    `toml:"patterns"`
	Cache         cacheSchema       `toml:"cache"`
}

type patternsSchema struct {
	Assertions      []string `toml:"assertions"`
	ExtraAssertions []string `toml:"extra_assertions"`
	Waits           []string `toml:"waits"`
	ExtraWaits      []string `toml:"extra_waits"`
	IO              []string `toml:"io"`
	ExtraIO         []string `toml:"extra_io"`
	Helpers         []string `toml:"helpers"`
	ExtraHelpers    []string `toml:"extra_helpers"`
}

type cacheSchema struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Load reads a testlint.toml, overlays it onto the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	var schema fileSchema
	meta, err := toml.DecodeFile(path, &schema)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg := Default()
	cfg.Path = path
	if err := applySchema(cfg, &schema, meta); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applySchema(cfg *Config, schema *fileSchema, meta toml.MetaData) error {
	l := &schema.Lint
	if meta.IsDefined("lint", "dialect") {
		k, err := dialect.ParseKind(l.Dialect)
		if err != nil {
			return &Error{Path: cfg.Path, Reason: err.Error()}
		}
		cfg.Dialect = k
	}
	if meta.IsDefined("lint", "jobs") {
		cfg.Jobs = l.Jobs
	}
	if meta.IsDefined("lint", "fail_on") {
		fo, ok := rules.ParseFailOn(l.FailOn)
		if !ok {
			return &Error{Path: cfg.Path, Reason: fmt.Sprintf("unknown fail_on %q (want error, warning, info or never)", l.FailOn)}
		}
		cfg.FailOn = fo
	}
	if meta.IsDefined("lint", "max_assertions") {
		cfg.MaxAssertions = l.MaxAssertions
	}
	if meta.IsDefined("lint", "enabled_rules") {
		cfg.Enabled = make(map[diag.Code]bool, len(l.EnabledRules))
		for _, id := range l.EnabledRules {
			code, ok := diag.ParseCode(id)
			if !ok {
				return &Error{Path: cfg.Path, Reason: fmt.Sprintf("unknown rule id %q in enabled_rules", id)}
			}
			cfg.Enabled[code] = true
		}
	}
	for id, value := range l.Rules {
		code, ok := diag.ParseCode(id)
		if !ok {
			return &Error{Path: cfg.Path, Reason: fmt.Sprintf("unknown rule id %q in [lint.rules]", id)}
		}
		if value == "off" {
			if cfg.Disabled == nil {
				cfg.Disabled = make(map[diag.Code]bool)
			}
			cfg.Disabled[code] = true
			continue
		}
		sev, ok := diag.ParseSeverity(value)
		if !ok {
			return &Error{Path: cfg.Path, Reason: fmt.Sprintf("rule %s: unknown severity %q (want error, warning, info or off)", id, value)}
		}
		if cfg.Severity == nil {
			cfg.Severity = make(map[diag.Code]diag.Severity)
		}
		cfg.Severity[code] = sev
	}

	pat := &l.Patterns
	if meta.IsDefined("lint", "patterns", "assertions") {
		cfg.Assertions = pat.Assertions
	}
	if meta.IsDefined("lint", "patterns", "waits") {
		cfg.Waits = pat.Waits
	}
	if meta.IsDefined("lint", "patterns", "io") {
		cfg.IO = pat.IO
	}
	if meta.IsDefined("lint", "patterns", "helpers") {
		cfg.Helpers = pat.Helpers
	}
	cfg.ExtraAssertions = pat.ExtraAssertions
	cfg.ExtraWaits = pat.ExtraWaits
	cfg.ExtraIO = pat.ExtraIO
	cfg.ExtraHelpers = pat.ExtraHelpers

	if meta.IsDefined("lint", "cache", "enabled") {
		cfg.Cache.Enabled = l.Cache.Enabled
	}
	if meta.IsDefined("lint", "cache", "dir") {
		cfg.Cache.Dir = l.Cache.Dir
	}
	return nil
}

// Find walks from startDir toward the filesystem root looking for a
// testlint.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Resolve loads the explicit config file when given, otherwise searches
// upward from startDir and falls back to the defaults.
func Resolve(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	found, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(found)
}

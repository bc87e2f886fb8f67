package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"testlint/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter testlint.toml",
	Long: `Write a commented starter testlint.toml into the given directory (default:
the current one). The file documents every knob the checker reads: dialect,
fail ceiling, rule severities and pattern lists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit creates the target directory when needed and writes the starter
// configuration. It refuses to overwrite an existing testlint.toml so a
// stray init never clobbers tuned settings.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	configTarget := filepath.Join(target, config.FileName)
	if _, err := os.Stat(configTarget); err == nil {
		return fmt.Errorf("already configured: %s exists", configTarget)
	}

	if err := os.WriteFile(configTarget, []byte(starterConfig()), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	rel := configTarget
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, configTarget); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", rel)
	fmt.Fprintf(os.Stdout, "Run `testlint rules` to see the rule ids it can reference\n")
	return nil
}

// starterConfig returns the default configuration template. Every value
// spelled out matches the built-in default, so the fresh file changes
// nothing until edited.
func starterConfig() string {
	return `# testlint configuration
# Discovered by walking up from the analyzed path; closest file wins.

[lint]
# Force a dialect, or keep "auto" to classify each file by content.
dialect = "auto" # auto|googletest|catch2|gotest|generic

# Parallel workers for directory runs. 0 uses all CPUs.
jobs = 0

# Lowest severity that makes the run fail (exit code 1).
fail_on = "error" # error|warning|info|never

# Ceiling for the excessive-assertions rule.
max_assertions = 3

[lint.rules]
# Override severities per rule id, or disable a rule with "off".
# time-based-wait = "error"
# excessive-assertions = "off"

[lint.patterns]
# Extend the dialect pattern lists without replacing them.
# extra_waits = ["WaitForPageLoad"]
# extra_helpers = ["WithTempDir"]
# Replace a list entirely by assigning the base key:
# assertions = ["CHECK", "REQUIRE"]

[lint.cache]
# Persistent result cache keyed by content and configuration.
enabled = false
# dir = "/tmp/testlint-cache"
`
}

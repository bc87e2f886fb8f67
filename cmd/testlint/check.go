package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"testlint/internal/config"
	"testlint/internal/diag"
	"testlint/internal/diagfmt"
	"testlint/internal/dialect"
	"testlint/internal/driver"
	"testlint/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>...",
	Short: "Analyze test files for structural anti-patterns",
	Long:  `Analyze test source files or directories and report structural anti-patterns: time-based waits, missing or excessive assertions, conditional logic and uncontrolled I/O inside test cases`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

// init registers CLI flags for the check command used by runCheck.
// It configures output format, dialect forcing, concurrency, the fail
// ceiling, cache behaviour and the progress UI.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	checkCmd.Flags().String("config", "", "path to testlint.toml (default: walk up from the first target)")
	checkCmd.Flags().String("dialect", "", "force a test dialect (auto|googletest|catch2|gotest|generic)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("fail-on", "", "lowest severity that fails the run (error|warning|info|never)")
	checkCmd.Flags().Int("max-assertions", 0, "override the assertion ceiling (0=keep configured)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "enable persistent result cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop cached results before analyzing")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// runCheck executes the "check" command: it resolves configuration, runs the
// analysis pipeline over the provided paths and renders the diagnostics in
// the chosen output format.
//
// It returns nil when the run is clean, errFindings when diagnostics cross
// the fail ceiling (exit code 1), and a descriptive error for flag, config,
// filesystem or encoding failures (exit code 2).
func runCheck(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "sarif", "short":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	dialectStr, err := cmd.Flags().GetString("dialect")
	if err != nil {
		return fmt.Errorf("failed to get dialect flag: %w", err)
	}

	failOnStr, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		return fmt.Errorf("failed to get fail-on flag: %w", err)
	}

	maxAssertions, err := cmd.Flags().GetInt("max-assertions")
	if err != nil {
		return fmt.Errorf("failed to get max-assertions flag: %w", err)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	diskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	// Разрешаем конфигурацию: явный путь побеждает, иначе поиск
	// testlint.toml вверх от первой цели.
	cfg, err := config.Resolve(configPath, configStartDir(args[0]))
	if err != nil {
		return err
	}

	// Флаги перекрывают файл
	if dialectStr != "" {
		kind, err := dialect.ParseKind(dialectStr)
		if err != nil {
			return err
		}
		cfg.Dialect = kind
	}
	if cmd.Flags().Changed("jobs") {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		cfg.Jobs = jobs
	}
	if failOnStr != "" {
		failOn, ok := rules.ParseFailOn(failOnStr)
		if !ok {
			return fmt.Errorf("unknown fail-on value: %s (want error, warning, info or never)", failOnStr)
		}
		cfg.FailOn = failOn
	}
	if maxAssertions > 0 {
		cfg.MaxAssertions = maxAssertions
	}
	if diskCache {
		cfg.Cache.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer traceCleanup()

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var cache *driver.DiskCache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			cache, err = driver.OpenDiskCacheAt(cfg.Cache.Dir)
		} else {
			cache, err = driver.OpenDiskCache("testlint")
		}
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}
	if clearCache {
		if cache == nil {
			return fmt.Errorf("--clear-cache requires --disk-cache or an enabled cache in testlint.toml")
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	files, err := driver.ExpandPaths(args, cfg)
	if err != nil {
		return fmt.Errorf("failed to collect test files: %w", err)
	}

	opts := &driver.Options{
		Config:         cfg,
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  showTimings,
		Cache:          cache,
	}

	useTUI := shouldUseTUI(uiModeValue) && !quiet && len(files) > 0
	var run *driver.RunResult
	if useTUI {
		run, err = runAnalyzeWithUI(cmd.Context(), "testlint check", files, opts)
	} else {
		run, err = driver.AnalyzePaths(cmd.Context(), files, opts)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		}
		for i := range run.Files {
			diagfmt.Pretty(os.Stdout, outputDiagnostics(&run.Files[i], showTimings), run.FileSet, prettyOpts)
		}
		if !quiet {
			printRunSummary(os.Stdout, run, cfg.FailOn, useColor)
		}
	case "short":
		all := make([]diag.Diagnostic, 0, run.Totals.Errors+run.Totals.Warnings+run.Totals.Infos)
		for i := range run.Files {
			all = append(all, run.Files[i].Summary.Diagnostics...)
		}
		output := diag.FormatShortDiagnostics(all, run.FileSet, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(run.Files))
		for i := range run.Files {
			res := &run.Files[i]
			output[displayPath(res, run, fullPath)] = diagfmt.BuildDiagnosticsOutput(
				outputDiagnostics(res, showTimings), run.FileSet, jsonOpts)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	case "sarif":
		all := make([]diag.Diagnostic, 0, run.Totals.Errors+run.Totals.Warnings+run.Totals.Infos)
		for i := range run.Files {
			all = append(all, run.Files[i].Summary.Diagnostics...)
		}
		meta := diagfmt.SarifRunMeta{
			ToolName:       "testlint",
			ToolVersion:    "0.1.0",
			InvocationArgs: os.Args,
		}
		if err := diagfmt.Sarif(os.Stdout, all, run.FileSet, meta); err != nil {
			return fmt.Errorf("failed to encode sarif output: %w", err)
		}
	}

	if run.Failed(cfg.FailOn) {
		// Suppress cobra output on findings: diagnostics are already printed
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errFindings
	}
	return nil
}

// configStartDir выбирает стартовую точку поиска testlint.toml:
// директория цели для директорий, родитель для файлов.
func configStartDir(target string) string {
	if st, err := os.Stat(target); err == nil && st.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

// outputDiagnostics возвращает диагностики файла для вывода, добавляя
// служебную диагностику таймингов, когда они включены. Тайминги не
// попадают в свёртки и не влияют на код выхода.
func outputDiagnostics(res *driver.FileResult, showTimings bool) []diag.Diagnostic {
	diags := res.Summary.Diagnostics
	if !showTimings || res.Timing == nil {
		return diags
	}
	td, ok := driver.TimingDiagnostic("pipeline", res.Path, res.Timing)
	if !ok {
		return diags
	}
	out := make([]diag.Diagnostic, 0, len(diags)+1)
	out = append(out, diags...)
	out = append(out, td)
	return out
}

// displayPath renders the path of a file result the way the rest of the
// output does, honoring --fullpath.
func displayPath(res *driver.FileResult, run *driver.RunResult, fullPath bool) string {
	if run.FileSet == nil || int(res.FileID) >= run.FileSet.Len() {
		return res.Path
	}
	mode := "auto"
	if fullPath {
		mode = "absolute"
	}
	return run.FileSet.Get(res.FileID).FormatPath(mode, run.FileSet.BaseDir())
}

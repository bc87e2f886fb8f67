package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testlint/internal/config"
	"testlint/internal/dialect"
	"testlint/internal/driver"
	"testlint/internal/source"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] <file|directory>...",
	Short: "Show the test dialect classification per file",
	Long:  `Classify test files by the framework they use, printing the winning dialect with its evidence score. Useful for debugging why a file was analyzed under an unexpected preset`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type detectPayload struct {
	Path          string  `json:"path"`
	Dialect       string  `json:"dialect"`
	Confidence    float64 `json:"confidence"`
	Score         int     `json:"score"`
	TotalScore    int     `json:"total_score"`
	RunnerUp      string  `json:"runner_up,omitempty"`
	RunnerUpScore int     `json:"runner_up_score,omitempty"`
	Signals       int     `json:"signals"`
}

// runDetect classifies each target file and prints the result. Unreadable
// files are reported on stderr and skipped; classification itself never
// fails.
func runDetect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	// Конфигурация нужна только ради списка тестовых расширений
	cfg, err := config.Resolve("", configStartDir(args[0]))
	if err != nil {
		return err
	}

	files, err := driver.ExpandPaths(args, cfg)
	if err != nil {
		return fmt.Errorf("failed to collect test files: %w", err)
	}

	fs := source.NewFileSet()
	payloads := make([]detectPayload, 0, len(files))
	for _, path := range files {
		id, err := fs.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		c := dialect.Detect(fs.Get(id))
		payloads = append(payloads, classificationPayload(path, c))
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payloads); err != nil {
			return fmt.Errorf("failed to encode detect output: %w", err)
		}
	case "pretty":
		for _, p := range payloads {
			line := fmt.Sprintf("%s: %s", p.Path, p.Dialect)
			if p.Signals > 0 {
				line += fmt.Sprintf(" (confidence %.2f, %d/%d from %d signals", p.Confidence, p.Score, p.TotalScore, p.Signals)
				if p.RunnerUp != "" {
					line += fmt.Sprintf(", runner-up %s %d", p.RunnerUp, p.RunnerUpScore)
				}
				line += ")"
			} else {
				line += " (no signals)"
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}
	return nil
}

func classificationPayload(path string, c dialect.Classification) detectPayload {
	p := detectPayload{
		Path:       path,
		Dialect:    c.Kind.String(),
		Confidence: c.Confidence,
		Score:      c.Score,
		TotalScore: c.TotalScore,
		Signals:    c.ObservedSignals,
	}
	if c.RunnerUp != dialect.Unknown && c.RunnerUpScore > 0 {
		p.RunnerUp = c.RunnerUp.String()
		p.RunnerUpScore = c.RunnerUpScore
	}
	return p
}

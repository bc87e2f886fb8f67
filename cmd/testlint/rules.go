package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testlint/internal/diag"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules testlint can report",
	Long:  `List every configurable rule with its id, default severity and description. These ids are what testlint.toml and --fail-on address`,
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type rulePayload struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

var ruleSeverityColors = map[diag.Severity]*color.Color{
	diag.SevError:   color.New(color.FgRed, color.Bold),
	diag.SevWarning: color.New(color.FgYellow, color.Bold),
	diag.SevInfo:    color.New(color.FgCyan),
}

// runRules prints the rule table. The set and order mirror what the
// configuration layer accepts, so the output doubles as a reference for
// writing [lint.rules] sections.
func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	codes := diag.ConfigurableCodes()

	switch format {
	case "json":
		payload := make([]rulePayload, 0, len(codes))
		for _, code := range codes {
			payload = append(payload, rulePayload{
				ID:       code.ID(),
				Severity: code.DefaultSeverity().String(),
				Title:    code.Title(),
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode rules output: %w", err)
		}
	case "pretty":
		for _, code := range codes {
			sev := code.DefaultSeverity()
			// Ширина поля фиксируется до раскраски: escape-коды не
			// должны считаться в выравнивании.
			label := fmt.Sprintf("%-7s", sev.String())
			if c, ok := ruleSeverityColors[sev]; useColor && ok {
				c.EnableColor()
				label = c.Sprint(label)
			}
			fmt.Fprintf(os.Stdout, "%-26s %s %s\n", code.ID(), label, code.Title())
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

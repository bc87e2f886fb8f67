// Package main implements the testlint CLI.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"testlint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "testlint",
	Short: "Structural lint for automated test suites",
	Long:  `testlint scans test sources (GoogleTest, Catch2, go test and friends) and flags structural anti-patterns: sleeps, missing assertions, conditional logic, uncontrolled I/O`,
}

// errFindings сигнализирует, что анализ завершился и нашёл проблемы на
// уровне fail-границы или выше. Вывод уже напечатан, main переводит эту
// ошибку в код выхода 1; любая другая ошибка выходит с кодом 2.
var errFindings = errors.New("findings at or above the fail ceiling")

// main wires subcommands and persistent flags, then executes the root
// command. Exit codes: 0 clean, 1 findings, 2 usage or configuration errors.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	// Флаги трассировки
	rootCmd.PersistentFlags().String("trace", "", "trace output path (- for stderr, .ndjson switches format)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace verbosity (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for crash dumps")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")

	// Флаги профилирования
	rootCmd.PersistentFlags().String("cpu-profile", "", "write cpu profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write runtime execution trace to file")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

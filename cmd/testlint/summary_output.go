package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"testlint/internal/driver"
	"testlint/internal/rules"
)

var (
	summaryFailColor  = color.New(color.FgRed, color.Bold)
	summaryCleanColor = color.New(color.FgGreen)
)

// printRunSummary пишет однострочный итог запуска: число файлов и счётчики
// по серьёзностям. Цвет повторяет статус относительно fail-границы.
func printRunSummary(out io.Writer, run *driver.RunResult, ceiling rules.FailOn, useColor bool) {
	if out == nil || run == nil {
		return
	}
	t := run.Totals
	line := fmt.Sprintf("checked %d files: %d errors, %d warnings, %d infos",
		t.Files, t.Errors, t.Warnings, t.Infos)
	if useColor {
		c := summaryCleanColor
		if run.Failed(ceiling) {
			c = summaryFailColor
		}
		c.EnableColor()
		line = c.Sprint(line)
	}
	fmt.Fprintln(out, line)
}

package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"testlint/internal/driver"
	"testlint/internal/ui"
)

type analyzeOutcome struct {
	run *driver.RunResult
	err error
}

// runAnalyzeWithUI запускает анализ в фоне и рисует прогресс в терминале.
// Поток событий закрывается самим анализом; ошибка интерфейса важнее
// ошибки анализа, потому что без него итог уже не показать корректно.
func runAnalyzeWithUI(ctx context.Context, title string, files []string, opts *driver.Options) (*driver.RunResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		var optsCopy driver.Options
		if opts != nil {
			optsCopy = *opts
		}
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		run, err := driver.AnalyzePaths(ctx, files, &optsCopy)
		outcomeCh <- analyzeOutcome{run: run, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// Интерфейс мог выйти до конца анализа: канал надо дочитать,
	// иначе воркеры встанут на заполненном буфере.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.run, uiErr
	}
	return outcome.run, outcome.err
}

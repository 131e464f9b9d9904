package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"songsheet/internal/driver"
	"songsheet/internal/source"
	"songsheet/internal/ui"
)

type parseDirOutcome struct {
	fileSet *source.FileSet
	results []driver.ParseDirResult
	err     error
}

func runParseDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.DirOptions) (*source.FileSet, []driver.ParseDirResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan parseDirOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.ParseDir(ctx, dir, optsCopy)
		outcomeCh <- parseDirOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// Ctrl+C закрывает UI раньше времени: останавливаем воркеры и дочитываем канал
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

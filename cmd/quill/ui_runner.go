package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/driver"
	"quill/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs the check pipeline behind a Bubble Tea progress
// display. The pipeline publishes events into a buffered channel; the UI
// drains it and quits when the channel closes.
func runCheckWithUI(ctx context.Context, title string, cfg driver.Config) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		cfgCopy := cfg
		cfgCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Check(ctx, cfgCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, cfg.Paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

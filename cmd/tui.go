package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/pirtoo/extunes/internal/shared"
	"github.com/pirtoo/extunes/internal/ui"
)

// TUI launches the interactive terminal UI for playlist export.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	snap, err := r.loadSnapshot(cmd.String("library"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/extunes-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.config, snap, r.logger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

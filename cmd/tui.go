package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/desertthunder/playlistinator/internal/tasks"
	"github.com/desertthunder/playlistinator/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal rendition of the generator page.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/playlistinator-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := tasks.TriggerOpts{
		Gateway: r.gateway,
		Surface: models.SurfaceTUI,
		Logger:  r.logger,
	}
	modelOpts := ui.ModelOpts{ToastDuration: r.config.UI.ToastDuration()}

	repo, closeDB, err := r.openRuns()
	defer closeDB()
	if err != nil {
		r.logger.Warn("history disabled", "error", err)
	} else {
		opts.Recorder = repo
		modelOpts.History = repo
	}
	modelOpts.Trigger = tasks.NewTrigger(opts)

	model := ui.NewModel(ctx, modelOpts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

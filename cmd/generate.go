package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/desertthunder/playlistinator/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate issues one generate call and prints the outcome.
//
// A logical failure exits non-zero via [shared.ErrGenerationFailed].
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	asJSON := cmd.Bool("json")

	opts := tasks.TriggerOpts{
		Gateway: r.gateway,
		Surface: models.SurfaceCLI,
		Logger:  r.logger,
	}
	if !cmd.Bool("no-history") {
		repo, closeDB, err := r.openRuns()
		defer closeDB()
		if err != nil {
			r.logger.Warn("history disabled", "error", err)
		} else {
			opts.Recorder = repo
		}
	}

	r.logger.Debug("calling generate endpoint", "url", r.gateway.URL())

	outcome, err := tasks.NewTrigger(opts).OnGenerate(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if err := r.writeJSON(outcome.Result, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.printOutcome(outcome)
	}

	if !outcome.Result.Success {
		return fmt.Errorf("%w: %s", shared.ErrGenerationFailed, outcome.Result.Message)
	}
	return nil
}

func (r *Runner) printOutcome(o tasks.Outcome) {
	if o.Notification.Kind == tasks.Negative {
		r.writePlain("✗ %s\n", o.Notification.Message)
		return
	}
	if count, ok := o.Result.TrackCount(); ok {
		r.writePlain("✓ %s (%d tracks)\n", o.Notification.Message, count)
		return
	}
	r.writePlain("✓ %s\n", o.Notification.Message)
}

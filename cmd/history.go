package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/playlistinator/internal/formatter"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRuns()
	defer closeDB()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if surface := cmd.String("surface"); surface != "" {
		switch s := models.Surface(surface); s {
		case models.SurfaceCLI, models.SurfaceTUI, models.SurfaceWeb:
			criteria["surface"] = s
		default:
			return fmt.Errorf("%w: unknown surface %q", shared.ErrInvalidFlag, surface)
		}
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]models.RunView, len(runs))
		for i, run := range runs {
			views[i] = run.View()
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	r.writePlainHeader("Generation History")
	for _, run := range runs {
		mark := "✓"
		if !run.Success() {
			mark = "✗"
		}
		r.writePlain("%s #%d %s [%s] %s (%s)\n",
			mark,
			run.Sequence(),
			run.CreatedAt().Local().Format(time.DateTime),
			run.Surface(),
			run.Message(),
			formatter.FormatDuration(run.Duration()),
		)
	}

	summary, err := repo.Summary()
	if err != nil {
		return err
	}
	return r.writePlainln("%d runs, %d succeeded, %d failed, %d tracks added",
		summary.Total, summary.Succeeded, summary.Failed, summary.Tracks)
}

// HistoryExport writes every run to a csv, markdown or txt file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openRuns()
	defer closeDB()
	if err != nil {
		return err
	}

	runs, err := repo.List(nil)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(runs, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("history exported", "path", path, "format", format, "runs", len(runs))
	return r.writePlain("✓ Exported %d runs to %s\n", len(runs), path)
}

// HistoryDelete soft-deletes one run.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run ID", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.openRuns()
	defer closeDB()
	if err != nil {
		return err
	}

	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted run %s\n", id)
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example config to --output.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url (or %s) to your generation backend\n", shared.EnvAPIURL)
	r.writePlain("2. Run 'playlistinator setup database'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDB(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	version := 0
	for _, st := range states {
		if !st.Applied() {
			r.writePlain("  · %04d %s (pending)\n", st.Version, st.Name)
			continue
		}
		version = st.Version
		r.writePlain("  ✓ %04d %s (applied %s)\n", st.Version, st.Name, st.AppliedAt.Local().Format(time.DateTime))
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
}

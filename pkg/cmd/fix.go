package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/guard"
	"github.com/pseudomuto/pgtidy/pkg/migrations"
	"github.com/urfave/cli/v3"
)

// fix creates a CLI command that makes every migration in a directory safe to
// re-run.
//
// Each .sql file gets the full guard pass: pg_policies existence-check blocks
// are unwrapped into a guard plus the plain create, and remaining unguarded
// creates receive a guard, including creates with bare policy names. Backups (*.bak) are ignored. When the directory has
// a pgtidy.sum and any file changed, the sum file is regenerated.
//
// Example usage:
//
//	pgtidy fix
//	pgtidy fix supabase/migrations
func fix(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Rewrite policy migrations in a directory to be idempotent",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			migrationsDir := cfg.MigrationsDir
			if cmd.Args().Present() {
				migrationsDir = cmd.Args().First()
			}

			if err := requireDir(migrationsDir); err != nil {
				return err
			}

			migrationDir, err := migrations.LoadDir(os.DirFS(migrationsDir))
			if err != nil {
				return errors.Wrap(err, "failed to load migration directory")
			}

			changed := 0
			for _, mig := range migrationDir.Migrations {
				res := guard.Fix(string(mig.Content), cfg.SplitterOptions())
				if !res.Changed() {
					continue
				}

				path := filepath.Join(migrationsDir, mig.Name)
				if err := writeFileKeepMode(path, []byte(res.Content)); err != nil {
					return err
				}

				fmt.Fprintf(cmd.Writer, "%s: unwrapped %d block(s), added %d guard(s)\n", mig.Name, len(res.Unwrapped), len(res.Guards))
				changed++
			}

			fmt.Fprintf(cmd.Writer, "Fixed %d of %d migration(s)\n", changed, len(migrationDir.Migrations))

			if changed == 0 || !migrationDir.HasSumFile() {
				return nil
			}

			if err := migrationDir.Rehash(); err != nil {
				return errors.Wrap(err, "failed to rehash migrations")
			}

			if err := writeSumFile(migrationsDir, migrationDir); err != nil {
				return err
			}

			fmt.Fprintln(cmd.Writer, "Updated sum file")
			return nil
		},
	}
}

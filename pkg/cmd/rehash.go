package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/migrations"
	"github.com/urfave/cli/v3"
)

// rehash creates a CLI command for regenerating the sum file for all migrations.
//
// The command hashes every .sql file in the migrations directory (or the
// directory given as an argument) and writes pgtidy.sum. With --check it only
// compares the stored sum file against the files and fails on a mismatch,
// which makes it usable as a CI gate after running fix.
//
// Example usage:
//
//	# Regenerate the sum file for the configured migrations directory
//	pgtidy rehash
//
//	# Verify an explicit directory without writing anything
//	pgtidy rehash --check supabase/migrations
func rehash(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "rehash",
		Usage:     "Regenerate the sum file for all migrations",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Verify the sum file instead of rewriting it",
			},
		},
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

			if cmd.Bool("check") {
				ok, err := migrationDir.Validate()
				if err != nil {
					return errors.Wrap(err, "failed to validate migrations")
				}
				if !ok {
					return errors.Errorf("sum file is missing or out of date: %s", migrationsDir)
				}

				fmt.Fprintf(cmd.Writer, "Sum file matches %d migration(s)\n", len(migrationDir.Migrations))
				return nil
			}

			if err := migrationDir.Rehash(); err != nil {
				return errors.Wrap(err, "failed to rehash migrations")
			}

			if err := writeSumFile(migrationsDir, migrationDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Writer, "Successfully rehashed %d migration(s) and updated sum file\n", len(migrationDir.Migrations))
			return nil
		},
	}
}

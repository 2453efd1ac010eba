package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/guard"
	"github.com/urfave/cli/v3"
)

// patch creates a CLI command that inserts drop policy if exists guards in
// front of unguarded create policy statements.
//
// Without arguments it patches the files listed under patch.files in
// pgtidy.yaml (or the built-in list). Arguments replace that list. Both are
// resolved against migrations_dir. Missing files are reported and skipped, and
// files are rewritten in place only when something changed.
//
// Example usage:
//
//	pgtidy patch
//	pgtidy patch 20251021000002_rls_more_tables.sql
//	pgtidy patch --dry-run
func patch(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "patch",
		Usage:     "Guard create policy statements so migrations can be re-run",
		ArgsUsage: "[files...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Report the guards that would be added without writing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cfg.PatchFiles()
			if cmd.Args().Present() {
				files = cfg.ResolveMigrations(cmd.Args().Slice()...)
			}

			dryRun := cmd.Bool("dry-run")
			total, patched := 0, 0

			for _, path := range files {
				content, err := os.ReadFile(path)
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.Writer, "Warning: %s not found, skipping\n", path)
					continue
				}
				if err != nil {
					return errors.Wrapf(err, "failed to read file: %s", path)
				}

				res := guard.Patch(string(content))
				if !res.Changed() {
					fmt.Fprintf(cmd.Writer, "%s: no changes\n", path)
					continue
				}

				if !dryRun {
					if err := writeFileKeepMode(path, []byte(res.Content)); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.Writer, "%s: added %d guard(s)\n", path, len(res.Guards))
				for _, g := range res.Guards {
					fmt.Fprintf(cmd.Writer, "  + %s\n", g.Statement())
				}

				total += len(res.Guards)
				patched++
			}

			verb := "Added"
			if dryRun {
				verb = "Would add"
			}

			fmt.Fprintf(cmd.Writer, "\n%s %d guard(s) across %d file(s)\n", verb, total, patched)
			return nil
		},
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/consts"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Config     *config.Config
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run registers the pgtidy CLI application to run when the fx app starts, and
// shuts the app down with a non-zero exit code if the command fails.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//
// The working directory is changed before any command runs, and pgtidy.yaml
// is reloaded from there so relative paths in the config resolve against the
// project directory.
//
// Example usage:
//
//	pgtidy --dir ./app patch
//	pgtidy reorganize -o APLICAR_NO_DASHBOARD_FINAL.sql
func Run(p Params) {
	app := newApp(p.Config, p.Version, p.Commands)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func newApp(cfg *config.Config, version *Version, commands []*cli.Command) *cli.Command {
	if version == nil {
		version = &Version{}
	}

	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", version.Timestamp)
	}

	return &cli.Command{
		Name:  "pgtidy",
		Usage: "Tidy up PostgreSQL migration scripts",
		Description: `pgtidy splits SQL scripts into statements, regroups them into
dependency order, and makes policy migrations safe to re-run by guarding every
create policy with a matching drop policy if exists.`,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := os.Chdir(cmd.String("dir")); err != nil {
				return ctx, errors.Wrap(err, "failed to change to project directory")
			}

			loaded, err := config.LoadConfigFileOrDefaults(consts.ConfigFile)
			if err != nil {
				return ctx, err
			}

			if cfg != nil {
				*cfg = *loaded
			}

			return ctx, nil
		},
		Commands: commands,
	}
}

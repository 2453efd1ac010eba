package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pseudomuto/pgtidy/pkg/cmd"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	fx.New(
		fx.Supply(os.Args, &cmd.Version{
			Version:   version,
			Commit:    commit,
			Timestamp: date,
		}),
		fx.Provide(func() context.Context { return context.Background() }),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		config.Module,
		cmd.Module,
	).Run()
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
	"github.com/urfave/cli/v3"
)

// classifyCmd prints one line per statement of a script: the line it starts
// on, its category and the line it was classified by, separated by tabs.
// With --skip-comments (or reorganize.skip_comments) leading comment lines are
// passed over.
//
// Example usage:
//
//	pgtidy classify APLICAR_NO_DASHBOARD.sql | awk -F'\t' '$2 == "other"'
func classifyCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Show the category assigned to each statement of a script",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{skipCommentsFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("exactly one file argument is required")
			}

			path := cmd.Args().First()
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "failed to open file: %s", path)
			}
			defer func() { _ = f.Close() }()

			stmts, err := splitter.SplitReader(f, cfg.SplitterOptions())
			if err != nil {
				return errors.Wrapf(err, "failed to read file: %s", path)
			}

			classifier := classifierFor(cfg, cmd)
			skip := skipComments(cfg, cmd)

			for _, stmt := range stmts {
				line := stmt.FirstLine()
				if skip {
					line = stmt.FirstCodeLine()
				}

				fmt.Fprintf(cmd.Writer, "%d\t%s\t%s\n", stmt.Line, classifier.Classify(stmt), line)
			}

			return nil
		},
	}
}

package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/classify"
	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/consts"
	"github.com/pseudomuto/pgtidy/pkg/migrations"
	"github.com/urfave/cli/v3"
)

// writeFileKeepMode replaces the content of an existing file without changing
// its permissions. New files get consts.ModeFile.
func writeFileKeepMode(path string, content []byte) error {
	mode := consts.ModeFile
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(path, content, mode); err != nil {
		return errors.Wrapf(err, "failed to write file: %s", path)
	}

	return nil
}

// writeSumFile writes the directory's sum file next to its migrations.
func writeSumFile(dir string, migs *migrations.Dir) error {
	path := filepath.Join(dir, consts.SumFile)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create sum file: %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := migs.SumFile.WriteTo(f); err != nil {
		return errors.Wrap(err, "failed to write sum file")
	}

	if err := os.Chmod(path, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to set permissions on sum file: %s", path)
	}

	return nil
}

// requireDir fails when dir does not exist or is not a directory.
func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return errors.Errorf("migrations directory does not exist: %s", dir)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to access path: %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("not a directory: %s", dir)
	}

	return nil
}

func skipCommentsFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "skip-comments",
		Usage: "Classify statements by their first non-comment line",
	}
}

// skipComments reports whether leading comment lines are ignored, preferring
// the flag over reorganize.skip_comments.
func skipComments(cfg *config.Config, cmd *cli.Command) bool {
	if cmd.IsSet("skip-comments") {
		return cmd.Bool("skip-comments")
	}

	return cfg.Reorganize.SkipComments
}

func classifierFor(cfg *config.Config, cmd *cli.Command) *classify.Classifier {
	if !cmd.IsSet("skip-comments") {
		return cfg.Classifier()
	}

	if cmd.Bool("skip-comments") {
		return classify.Default.SkipComments()
	}

	return classify.Default
}

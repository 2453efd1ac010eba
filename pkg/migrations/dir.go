// Package migrations loads a directory of SQL migration files and keeps a
// sum file that detects edits made outside the tooling.
//
// Migrations are the top-level .sql files of the directory, in lexical order.
// Backups (*.bak) and files in subdirectories are ignored. The sum file lives
// next to them as pgtidy.sum and is optional.
package migrations

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/consts"
)

type (
	// Migration is a single migration file.
	Migration struct {
		// Name is the file name, including the .sql extension
		Name string

		// Content is the file content as read from disk
		Content []byte
	}

	// Dir is a loaded migration directory.
	Dir struct {
		// Migrations holds the .sql files in lexical order
		Migrations []*Migration

		// SumFile is the stored sum file, or nil if the directory has none
		SumFile *SumFile

		fs fs.FS
	}
)

// Version returns the file name without its extension.
func (m *Migration) Version() string {
	return strings.TrimSuffix(m.Name, filepath.Ext(m.Name))
}

// LoadDir loads all migrations from fsys, along with pgtidy.sum if present.
//
// Example:
//
//	dir, err := migrations.LoadDir(os.DirFS("supabase/migrations"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, mig := range dir.Migrations {
//		fmt.Println(mig.Name)
//	}
func LoadDir(fsys fs.FS) (*Dir, error) {
	dir := &Dir{fs: fsys}

	migs, err := readMigrations(fsys)
	if err != nil {
		return nil, err
	}
	dir.Migrations = migs

	f, err := fsys.Open(consts.SumFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return dir, nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed to open: %s", consts.SumFile)
	}
	defer func() { _ = f.Close() }()

	sum, err := LoadSumFile(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load: %s", consts.SumFile)
	}
	dir.SumFile = sum

	return dir, nil
}

// HasSumFile reports whether a sum file was loaded or generated.
func (d *Dir) HasSumFile() bool {
	return d.SumFile != nil
}

// Sum computes a sum file from the loaded migrations.
func (d *Dir) Sum() *SumFile {
	sum := NewSumFile()
	for _, mig := range d.Migrations {
		sum.AddFile(mig.Name, mig.Content)
	}

	return sum
}

// Rehash reloads every migration from the directory and replaces SumFile with
// one computed from the current contents.
func (d *Dir) Rehash() error {
	if d.fs == nil {
		return errors.New("cannot rehash: filesystem reference is nil")
	}

	migs, err := readMigrations(d.fs)
	if err != nil {
		return errors.Wrap(err, "failed to reload migrations")
	}

	d.Migrations = migs
	d.SumFile = d.Sum()
	return nil
}

// Validate reports whether the stored sum file matches the migrations as they
// are currently on disk. A directory without a sum file never validates.
func (d *Dir) Validate() (bool, error) {
	if d.fs == nil {
		return false, errors.New("cannot validate: filesystem reference is nil")
	}

	if d.SumFile == nil {
		return false, nil
	}

	migs, err := readMigrations(d.fs)
	if err != nil {
		return false, errors.Wrap(err, "failed to reload migrations")
	}

	current := (&Dir{Migrations: migs}).Sum()
	return current.Equal(d.SumFile), nil
}

func readMigrations(fsys fs.FS) ([]*Migration, error) {
	var migs []*Migration

	// NB: WalkDir always walks in lexical order.
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == "." {
				return nil
			}

			return fs.SkipDir
		}

		if filepath.Ext(path) != ".sql" {
			return nil
		}

		f, err := fsys.Open(path)
		if err != nil {
			return errors.Wrapf(err, "failed to open: %s", path)
		}
		defer func() { _ = f.Close() }()

		content, err := io.ReadAll(f)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration: %s", path)
		}

		migs = append(migs, &Migration{Name: path, Content: content})
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to walk migration directory")
	}

	return migs, nil
}

package migrations_test

import (
	"bytes"
	"embed"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/pseudomuto/pgtidy/pkg/consts"
	. "github.com/pseudomuto/pgtidy/pkg/migrations"
	"github.com/stretchr/testify/require"
)

//go:embed testdata
var testdataFS embed.FS

func fixtures(t *testing.T) fs.FS {
	t.Helper()

	sub, err := fs.Sub(testdataFS, "testdata")
	require.NoError(t, err)
	return sub
}

func TestLoadDir(t *testing.T) {
	dir, err := LoadDir(fixtures(t))
	require.NoError(t, err)
	require.False(t, dir.HasSumFile())
	require.Len(t, dir.Migrations, 2)

	require.Equal(t, "20240101000000_init.sql", dir.Migrations[0].Name)
	require.Equal(t, "20240101000000_init", dir.Migrations[0].Version())
	require.Equal(t, "20240102000000_policies.sql", dir.Migrations[1].Name)
	require.Contains(t, string(dir.Migrations[1].Content), `"Profiles are viewable"`)
}

func TestLoadDir_SkipsSubdirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql":         {Data: []byte("select 1;")},
		"archive/000_x.sql": {Data: []byte("select 0;")},
		"002_b.sql.bak":     {Data: []byte("select 2;")},
		"003_c.sql":         {Data: []byte("select 3;")},
		"notes/readme.txt":  {Data: []byte("hi")},
		"zz_not_sql.psql":   {Data: []byte("select 4;")},
	}

	dir, err := LoadDir(fsys)
	require.NoError(t, err)

	var names []string
	for _, mig := range dir.Migrations {
		names = append(names, mig.Name)
	}

	require.Equal(t, []string{"001_a.sql", "003_c.sql"}, names)
}

func TestDir_RehashAndValidate(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("create table a (id int);")},
		"002_b.sql": {Data: []byte("create table b (id int);")},
	}

	dir, err := LoadDir(fsys)
	require.NoError(t, err)

	ok, err := dir.Validate()
	require.NoError(t, err)
	require.False(t, ok, "no sum file yet")

	require.NoError(t, dir.Rehash())
	require.True(t, dir.HasSumFile())
	require.Equal(t, []string{"001_a.sql", "002_b.sql"}, dir.SumFile.Names())

	ok, err = dir.Validate()
	require.NoError(t, err)
	require.True(t, ok)

	// Write the sum file into the directory and load it back.
	var buf bytes.Buffer
	_, err = dir.SumFile.WriteTo(&buf)
	require.NoError(t, err)
	fsys[consts.SumFile] = &fstest.MapFile{Data: buf.Bytes()}

	reloaded, err := LoadDir(fsys)
	require.NoError(t, err)
	require.True(t, reloaded.HasSumFile())

	ok, err = reloaded.Validate()
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("edited migration fails validation", func(t *testing.T) {
		fsys["001_a.sql"] = &fstest.MapFile{Data: []byte("create table a (id bigint);")}

		ok, err := reloaded.Validate()
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, reloaded.Rehash())
		ok, err = reloaded.Validate()
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("new migration fails validation", func(t *testing.T) {
		fsys["003_c.sql"] = &fstest.MapFile{Data: []byte("create table c (id int);")}

		ok, err := reloaded.Validate()
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestLoadDir_InvalidSumFile(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql":    {Data: []byte("select 1;")},
		consts.SumFile: {Data: []byte("not-a-hash\n")},
	}

	_, err := LoadDir(fsys)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid total hash format")
}

func TestDir_NilFilesystem(t *testing.T) {
	dir := &Dir{}

	require.Error(t, dir.Rehash())

	_, err := dir.Validate()
	require.Error(t, err)
}

package migrations_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/pseudomuto/pgtidy/pkg/migrations"
	"github.com/stretchr/testify/require"
)

func TestSumFile(t *testing.T) {
	t.Run("NewSumFile creates empty structure", func(t *testing.T) {
		sum := NewSumFile()
		require.Equal(t, 0, sum.Files())
		require.Empty(t, sum.TotalHash)
		require.Empty(t, sum.Names())
	})

	t.Run("WriteTo outputs the total and one line per file", func(t *testing.T) {
		sum := NewSumFile()
		sum.AddFile("001_init.sql", []byte("create table a (id int);"))
		sum.AddFile("002_policies.sql", []byte(`create policy "p" on a using (true);`))
		require.Empty(t, sum.TotalHash, "total is computed on write")

		var buf bytes.Buffer
		n, err := sum.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(buf.Len()), n)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		require.Equal(t, sum.TotalHash, lines[0])
		require.True(t, strings.HasPrefix(lines[0], "h1:"))
		require.True(t, strings.HasPrefix(lines[1], "001_init.sql h1:"))
		require.True(t, strings.HasPrefix(lines[2], "002_policies.sql h1:"))
	})

	t.Run("empty sum file writes a single newline", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := NewSumFile().WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
		require.Equal(t, "\n", buf.String())
	})

	t.Run("hashes are chained", func(t *testing.T) {
		a, b := []byte("create table a (id int);"), []byte("create table b (id int);")

		first := NewSumFile()
		first.AddFile("002_b.sql", b)

		second := NewSumFile()
		second.AddFile("001_a.sql", a)
		second.AddFile("002_b.sql", b)

		reordered := NewSumFile()
		reordered.AddFile("002_b.sql", b)
		reordered.AddFile("001_a.sql", a)

		require.False(t, first.Equal(second))
		require.False(t, second.Equal(reordered))

		again := NewSumFile()
		again.AddFile("001_a.sql", a)
		again.AddFile("002_b.sql", b)
		require.True(t, second.Equal(again))
	})
}

func TestLoadSumFile(t *testing.T) {
	original := NewSumFile()
	original.AddFile("001_init.sql", []byte("create table a (id int);"))
	original.AddFile("002 with spaces.sql", []byte("select 1;"))

	var buf bytes.Buffer
	_, err := original.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := LoadSumFile(&buf)
	require.NoError(t, err)
	require.Equal(t, original.TotalHash, loaded.TotalHash)
	require.Equal(t, []string{"001_init.sql", "002 with spaces.sql"}, loaded.Names())
	require.True(t, original.Equal(loaded))

	t.Run("empty input", func(t *testing.T) {
		sum, err := LoadSumFile(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, 0, sum.Files())
	})

	t.Run("invalid content", func(t *testing.T) {
		tests := map[string]string{
			"total hash": "sha:abc\n",
			"entry":      "h1:abc\nmissinghash\n",
			"entry hash": "h1:abc\n001.sql sha:abc\n",
			"base64":     "h1:abc\n001.sql h1:***\n",
		}

		for name, content := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := LoadSumFile(strings.NewReader(content))
				require.Error(t, err)
			})
		}
	})
}

func TestSumFile_EqualNil(t *testing.T) {
	var a, b *SumFile
	require.True(t, a.Equal(b))
	require.False(t, NewSumFile().Equal(nil))
}

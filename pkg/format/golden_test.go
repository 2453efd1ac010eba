package format_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/pseudomuto/pgtidy/pkg/format"
	"github.com/pseudomuto/pgtidy/pkg/organize"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestGoldenFiles(t *testing.T) {
	testdataDir := "testdata"

	// Find all *.in.sql files
	pattern := filepath.Join(testdataDir, "*.in.sql")
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.NotEmpty(t, matches, "No *.in.sql files found in testdata directory")

	for _, inputFile := range matches {
		// Derive output filename: "example.in.sql" -> "example.sql"
		basename := filepath.Base(inputFile)
		outputName := strings.TrimSuffix(basename, ".in.sql") + ".sql"

		t.Run(outputName, func(t *testing.T) {
			inputSQL, err := os.ReadFile(inputFile)
			require.NoError(t, err, "Failed to read input file %s", inputFile)

			stmts := splitter.Split(string(inputSQL), splitter.Defaults)
			doc, err := organize.Organize(stmts, organize.CanonicalOrder, nil)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Format(&buf, Defaults, doc))

			golden.Assert(t, buf.String(), outputName)
		})
	}
}

package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		for _, check := range checks {
			check(string(content))
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}

// RequireSumFileValid asserts that a sum file exists and has valid format
func RequireSumFileValid(t *testing.T, sumPath string) {
	t.Helper()

	RequireFileExists(t, sumPath, func(content string) {
		lines := strings.Split(strings.TrimSpace(content), "\n")
		require.NotEmpty(t, lines, "Sum file should not be empty")
		require.True(t, strings.HasPrefix(lines[0], "h1:"), "First line should be total hash")

		for _, line := range lines[1:] {
			idx := strings.LastIndex(line, " ")
			require.Positive(t, idx, "Each line should have filename and hash")
			require.True(t, strings.HasSuffix(line[:idx], ".sql"), "First part should be SQL filename")
			require.True(t, strings.HasPrefix(line[idx+1:], "h1:"), "Second part should be hash")
		}
	})
}

// RequireNoFile asserts that a file does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireFilePermissions asserts that a file has the expected permission bits
func RequireFilePermissions(t *testing.T, path string, expected os.FileMode) {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err, "Failed to stat file: %s", path)
	require.Equal(t, expected, info.Mode().Perm(), "File should have permissions %v", expected)
}

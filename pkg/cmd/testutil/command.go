package testutil

import (
	"bytes"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand runs command as the root of a test app and returns what it wrote.
func RunCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:      "test",
		Flags:     command.Flags,
		Before:    command.Before,
		Action:    command.Action,
		ArgsUsage: command.ArgsUsage,
		Writer:    &buf,
		ErrWriter: &buf,
	}

	err := app.Run(t.Context(), append([]string{"test"}, args...))
	return buf.String(), err
}

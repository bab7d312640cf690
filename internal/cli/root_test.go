package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("json"))
	require.NotNil(t, cmd.Flags().Lookup("local"))
	require.Equal(t, "false", cmd.Flags().Lookup("local").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("output-dir"))
	require.Equal(t, ".", cmd.Flags().Lookup("output-dir").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("model"))
	require.Equal(t, "whisper-1", cmd.Flags().Lookup("model").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("env-file"))
	require.NotNil(t, cmd.Flags().Lookup("copy"))
	require.Equal(t, "false", cmd.Flags().Lookup("copy").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("copy-empty"))
	require.NotNil(t, cmd.Flags().Lookup("no-progress"))
}

func TestRootHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Contains(t, out.String(), "r2scribe <file-or-bucket-key>")
	require.Contains(t, out.String(), "--local")
	require.Contains(t, out.String(), "version")
}

func TestVersionSubcommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCommand(t, []string{"version"})
	require.NoError(t, err)
	require.Contains(t, stdout, "r2scribe v")
}

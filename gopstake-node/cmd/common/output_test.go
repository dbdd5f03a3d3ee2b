package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	require := require.New(t)

	out := filepath.Join(t.TempDir(), "out.json")
	cmd := &cobra.Command{Use: "dump"}
	cmd.Flags().String("dump_file", "", "output file")
	require.NoError(cmd.Flags().Set("dump_file", out))

	err := WriteJSON(cmd, "dump_file", map[string]uint64{"last_proposal_id": 3})
	require.NoError(err, "WriteJSON")

	raw, err := os.ReadFile(out)
	require.NoError(err)
	require.Equal("{\n  \"last_proposal_id\": 3\n}\n", string(raw), "indented with a trailing newline")

	err = WriteJSON(cmd, "dump_file", func() {})
	require.Error(err, "unencodable values are rejected")
}

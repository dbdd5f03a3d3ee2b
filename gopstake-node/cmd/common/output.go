package common

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GetOutputWriter will create a file if the config string is set, and
// otherwise return os.Stdout.
func GetOutputWriter(cmd *cobra.Command, cfg string) (*os.File, bool, error) {
	f, _ := cmd.Flags().GetString(cfg)
	if f == "" {
		return os.Stdout, false, nil
	}

	w, err := os.Create(f)
	return w, true, err
}

// WriteJSON writes the indented JSON encoding of v to the file named by the
// cfg flag, or to stdout when the flag is unset.
func WriteJSON(cmd *cobra.Command, cfg string, v interface{}) error {
	w, shouldClose, err := GetOutputWriter(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	if shouldClose {
		defer w.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

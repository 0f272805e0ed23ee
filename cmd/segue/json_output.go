package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON renders a command's --json output: v as indented JSON on
// the command's stdout, one document per invocation.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

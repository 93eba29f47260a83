package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func newJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	return newJSONEncoder(cmd.OutOrStdout()).Encode(v)
}

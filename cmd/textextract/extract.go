package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/textextract/internal/extract"
	"github.com/hyperifyio/textextract/internal/render"
)

func newExtractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Scan a file (or stdin) and print the matches",
		Long:  "Scan a file, or standard input when the file is omitted or \"-\", and print every category with its sorted unique matches.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runExtract(in, cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runExtract(r io.Reader, w io.Writer, asJSON bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res := extract.Extract(string(data))
	if asJSON {
		return render.JSON(w, res)
	}
	return render.Text(w, res)
}

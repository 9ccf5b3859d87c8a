package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/query"
)

// NewExportCmd constructs the `export` subcommand. It accepts the same
// filters as search and writes the matched set through a codec, to stdout or
// to a file. Without filters it exports everything.
func NewExportCmd() *cobra.Command {
	var search searchFlags
	var outputFormat string
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export [keywords...]",
		Short: "export resources through a codec",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			codec, err := format.ByName(outputFormat)
			if err != nil {
				return err
			}

			spec, err := search.spec(args)
			if err != nil {
				return err
			}
			// Exports default to the whole match set, not one page.
			if !cmd.Flags().Changed("limit") {
				spec.Limit = query.Unlimited
			}

			out, err := deps.Service.Export(cmd.Context(), spec, codec)
			if err != nil {
				return err
			}

			if outputFile == "" {
				_, err = deps.Out.Write(out)
				return err
			}
			if err := os.WriteFile(outputFile, out, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(deps.Out, "exported to %s\n", outputFile)
			return nil
		},
	}

	search.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown",
		"export codec (text, markdown, json, yaml)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write to file instead of stdout")

	return cmd
}

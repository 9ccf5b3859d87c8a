package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/format"
)

// NewImportCmd constructs the `import` subcommand. The codec is inferred
// from the file extension unless --format overrides it; "-" reads from
// stdin, where --format is required. Records already stored are skipped, so
// importing the same dump twice is safe.
func NewImportCmd() *cobra.Command {
	var inputFormat string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "import resources from a dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading dump: %w", err)
			}

			name := inputFormat
			if name == "" {
				if args[0] == "-" {
					return fmt.Errorf("--format is required when reading from stdin")
				}
				name = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}
			codec, err := format.ByName(name)
			if err != nil {
				return err
			}

			stored, err := deps.Service.Import(cmd.Context(), data, codec)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Out, "imported %d resources\n", stored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "format", "f", "",
		"dump codec (text, markdown, json, yaml); inferred from extension when omitted")

	return cmd
}

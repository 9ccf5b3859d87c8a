package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/model"
)

// NewSearchCmd constructs the `search` subcommand. Positional arguments are
// keywords matched against every field, same as --sall.
func NewSearchCmd() *cobra.Command {
	var search searchFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:     "search [keywords...]",
		Short:   "search stored resources",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			spec, err := search.spec(args)
			if err != nil {
				return err
			}

			col, meta, err := deps.Service.Search(cmd.Context(), spec)
			if err != nil {
				return err
			}

			if outputFormat != "" {
				codec, err := format.ByName(outputFormat)
				if err != nil {
					return err
				}
				out, err := codec.DumpList(col.Resources())
				if err != nil {
					return err
				}
				_, err = deps.Out.Write(out)
				return err
			}

			for _, r := range col.Resources() {
				fmt.Fprintln(deps.Out, summaryLine(r))
			}
			fmt.Fprintf(deps.Out, "\n%d of %d (offset %d)\n", meta.Count, meta.Total, meta.Offset)
			return nil
		},
	}

	search.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "",
		"dump matches through a codec (text, markdown, json, yaml) instead of the summary list")

	return cmd
}

// summaryLine renders the one-line listing used by search: short digest,
// category, brief and tags.
func summaryLine(r *model.Resource) string {
	digest := r.Digest
	if len(digest) > 16 {
		digest = digest[:16]
	}
	line := fmt.Sprintf("%s  %-9s  %s", digest, r.Category, r.Brief)
	if len(r.Tags) > 0 {
		line += "  [" + strings.Join(r.Tags, ",") + "]"
	}
	return line
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/model"
)

// NewCreateCmd constructs the `create` subcommand.
//
// Usage examples:
//
//	snipstore create snippet --content "docker ps -a" --brief "List containers" --tags docker
//	snipstore create reference --links https://docs.docker.com --brief "Docker docs"
//	snipstore create solution --edit
func NewCreateCmd() *cobra.Command {
	var content contentFlags
	var useEditor bool

	cmd := &cobra.Command{
		Use:   "create <category>",
		Short: "store a new snippet, solution or reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			category, err := model.ParseCategory(args[0])
			if err != nil {
				return err
			}

			var r *model.Resource
			if useEditor {
				r, err = deps.Service.CreateFromEditor(cmd.Context(), category, deps.Templates, deps.Editor)
			} else {
				f := content.fields(cmd)
				f.Category = category
				r, err = deps.Service.Create(cmd.Context(), f)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(deps.Out, "%s\n", r.Digest[:16])
			return nil
		},
	}

	content.register(cmd)
	cmd.Flags().BoolVarP(&useEditor, "edit", "e", false, "compose the resource in $EDITOR")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/service"
)

// NewUpdateCmd constructs the `update` subcommand. The positional argument
// is a digest prefix; --uuid selects by uuid prefix instead. With no
// identifier at all the update succeeds only when the addressed category
// holds exactly one record.
func NewUpdateCmd() *cobra.Command {
	var content contentFlags
	var uuid string
	var category string
	var useEditor bool

	cmd := &cobra.Command{
		Use:   "update [digest]",
		Short: "update one stored resource",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			sel, err := buildSelector(args, uuid, category)
			if err != nil {
				return err
			}

			var r *model.Resource
			if useEditor {
				r, err = deps.Service.UpdateFromEditor(cmd.Context(), sel, deps.Templates, deps.Editor)
			} else {
				r, err = deps.Service.Update(cmd.Context(), sel, content.fields(cmd))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(deps.Out, "%s\n", r.Digest[:16])
			return nil
		},
	}

	content.register(cmd)
	cmd.Flags().StringVar(&uuid, "uuid", "", "select by uuid prefix instead of digest")
	cmd.Flags().StringVar(&category, "scat", "", "narrow the selector to one category")
	cmd.Flags().BoolVarP(&useEditor, "edit", "e", false, "edit the resource in $EDITOR")

	return cmd
}

func buildSelector(args []string, uuid, category string) (service.Selector, error) {
	var sel service.Selector
	if len(args) == 1 {
		sel.Digest = args[0]
	}
	sel.UUID = uuid
	if category != "" {
		c, err := model.ParseCategory(category)
		if err != nil {
			return sel, err
		}
		sel.Category = c
	}
	return sel, nil
}

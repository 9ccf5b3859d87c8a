package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEditCmd constructs the `edit` subcommand, a shorthand for
// `update --edit`.
func NewEditCmd() *cobra.Command {
	var uuid string
	var category string

	cmd := &cobra.Command{
		Use:   "edit [digest]",
		Short: "edit one stored resource in $EDITOR",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			sel, err := buildSelector(args, uuid, category)
			if err != nil {
				return err
			}
			r, err := deps.Service.UpdateFromEditor(cmd.Context(), sel, deps.Templates, deps.Editor)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Out, "%s\n", r.Digest[:16])
			return nil
		},
	}

	cmd.Flags().StringVar(&uuid, "uuid", "", "select by uuid prefix instead of digest")
	cmd.Flags().StringVar(&category, "scat", "", "narrow the selector to one category")

	return cmd
}

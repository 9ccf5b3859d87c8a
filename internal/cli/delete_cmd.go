package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd constructs the `delete` subcommand. Selector semantics match
// update: digest prefix argument, --uuid alternative, optional category
// narrowing. An ambiguous selector deletes nothing.
func NewDeleteCmd() *cobra.Command {
	var uuid string
	var category string

	cmd := &cobra.Command{
		Use:     "delete [digest]",
		Short:   "delete one stored resource",
		Aliases: []string{"rm"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFromContext(cmd.Context())

			sel, err := buildSelector(args, uuid, category)
			if err != nil {
				return err
			}
			if err := deps.Service.Delete(cmd.Context(), sel); err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, "deleted")
			return nil
		},
	}

	cmd.Flags().StringVar(&uuid, "uuid", "", "select by uuid prefix instead of digest")
	cmd.Flags().StringVar(&category, "scat", "", "narrow the selector to one category")

	return cmd
}

package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

type depsKey struct{}

// WithDeps returns a context carrying pre-built dependencies. Tests use this
// to run commands against an in-memory store instead of a file on disk.
func WithDeps(ctx context.Context, deps *Deps) context.Context {
	return context.WithValue(ctx, depsKey{}, deps)
}

func depsFromContext(ctx context.Context) *Deps {
	if v, ok := ctx.Value(depsKey{}).(*Deps); ok {
		return v
	}
	return nil
}

// NewRootCmd builds the root command and wires all subcommands. The store is
// opened in PersistentPreRunE (only when the context does not already carry
// dependencies) and closed in PersistentPostRunE.
func NewRootCmd() *cobra.Command {
	var dbPath string
	var opened *Deps

	cmd := &cobra.Command{
		Use:           "snipstore",
		Short:         "manage snippets, solutions and references",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if depsFromContext(cmd.Context()) != nil {
				return nil
			}
			path := dbPath
			if path == "" {
				path = os.Getenv("SNIPSTORE_DB")
			}
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return errors.New("cannot determine home directory; set --db or SNIPSTORE_DB")
				}
				path = home + "/.snipstore/snipstore.db"
			}
			deps, err := openDeps(path)
			if err != nil {
				return err
			}
			opened = deps
			cmd.SetContext(WithDeps(cmd.Context(), deps))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opened != nil {
				return opened.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"path to the store database (default $SNIPSTORE_DB or ~/.snipstore/snipstore.db)")

	cmd.AddCommand(
		NewCreateCmd(),
		NewSearchCmd(),
		NewUpdateCmd(),
		NewDeleteCmd(),
		NewEditCmd(),
		NewExportCmd(),
		NewImportCmd(),
	)

	return cmd
}

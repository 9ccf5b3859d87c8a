// Package cli implements the snipstore command line. Each subcommand lives
// in its own file and is built by a NewXxxCmd constructor so tests can
// assemble a command tree around an in-memory store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/normalize"
	sqliteRepo "github.com/sakif/snipstore/internal/repository/sqlite"
	"github.com/sakif/snipstore/internal/service"
)

// Deps carries everything a subcommand needs. Commands never open the
// database themselves; the root command fills this in before any RunE fires
// and tears it down afterwards.
type Deps struct {
	Service   *service.ResourceService
	Templates format.TemplateSet
	Editor    service.Editor
	Out       io.Writer

	close func() error
}

// Close releases the underlying store, if any.
func (d *Deps) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

// openDeps opens the sqlite store at dbPath and builds the service stack on
// top of it. CLI logs go to stderr at warn level so command output stays
// clean on stdout.
func openDeps(dbPath string) (*Deps, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	return &Deps{
		Service:   service.NewResourceService(db, normalize.New(), logger),
		Templates: format.DefaultTemplates(),
		Editor:    SystemEditor,
		Out:       os.Stdout,
		close:     db.Close,
	}, nil
}

// Run executes the command line and is the single entry point for cmd/snipstore.
func Run(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

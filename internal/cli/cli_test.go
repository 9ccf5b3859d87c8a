package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/normalize"
	sqliteRepo "github.com/sakif/snipstore/internal/repository/sqlite"
	"github.com/sakif/snipstore/internal/service"
)

// testFixture bundles a command tree wired to an in-memory store. Commands
// run through the same cobra tree as the real binary; only the store and the
// editor are substituted.
type testFixture struct {
	deps *Deps
	out  *bytes.Buffer
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	out := &bytes.Buffer{}
	deps := &Deps{
		Service:   service.NewResourceService(db, normalize.New(), logger),
		Templates: format.DefaultTemplates(),
		Editor:    func(initial string) (string, error) { return initial, nil },
		Out:       out,
	}
	return &testFixture{deps: deps, out: out}
}

func (f *testFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	f.out.Reset()
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(f.out)
	root.SetErr(f.out)
	return root.ExecuteContext(WithDeps(context.Background(), f.deps))
}

func TestCreateAndSearch(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "create", "snippet",
		"--content", "docker ps --all",
		"--brief", "List containers",
		"--tags", "docker,container")
	require.NoError(t, err)
	digest := strings.TrimSpace(f.out.String())
	assert.Len(t, digest, 16)

	err = f.run(t, "search", "containers")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "List containers")
	assert.Contains(t, f.out.String(), digest)
	assert.Contains(t, f.out.String(), "1 of 1")
}

func TestCreate_InvalidCategory(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "create", "snippets", "--content", "ls")
	assert.Error(t, err)
}

func TestUpdateByDigestPrefix(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log"))
	digest := strings.TrimSpace(f.out.String())

	err := f.run(t, "update", digest[:8], "--brief", "Show commit history")
	require.NoError(t, err)

	require.NoError(t, f.run(t, "search", "."))
	assert.Contains(t, f.out.String(), "Show commit history")
}

func TestDelete_EmptySelectorFails(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log"))
	require.NoError(t, f.run(t, "create", "snippet", "--content", "git diff"))

	// No identifier with two records stored.
	err := f.run(t, "delete")
	assert.Error(t, err)

	require.NoError(t, f.run(t, "search", "."))
	assert.Contains(t, f.out.String(), "2 of 2")
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log", "--brief", "gitlog"))
	require.NoError(t, f.run(t, "create", "reference", "--links", "https://example.com", "--brief", "docs"))

	dumpFile := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, f.run(t, "export", "--format", "json", "--output", dumpFile))

	// Import into a fresh store.
	dst := newFixture(t)
	require.NoError(t, dst.run(t, "import", dumpFile))
	assert.Contains(t, dst.out.String(), "imported 2 resources")

	// Importing the same dump again skips everything.
	require.NoError(t, dst.run(t, "import", dumpFile))
	assert.Contains(t, dst.out.String(), "imported 0 resources")
}

func TestImport_FormatInferredFromExtension(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log"))

	dumpFile := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, f.run(t, "export", "--format", "yaml", "--output", dumpFile))

	dst := newFixture(t)
	require.NoError(t, dst.run(t, "import", dumpFile))
	assert.Contains(t, dst.out.String(), "imported 1 resources")
}

func TestImport_UnknownFormat(t *testing.T) {
	f := newFixture(t)

	dumpFile := filepath.Join(t.TempDir(), "dump.xml")
	require.NoError(t, os.WriteFile(dumpFile, []byte("<xml/>"), 0o644))

	err := f.run(t, "import", dumpFile)
	assert.Error(t, err)
}

func TestSearch_FormatDump(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log", "--brief", "gitlog"))

	require.NoError(t, f.run(t, "search", "--format", "markdown", "."))
	assert.Contains(t, f.out.String(), "## Meta")
	assert.Contains(t, f.out.String(), "```shell\ngit log\n```")
}

func TestEdit_UnchangedSessionIsNoOp(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "create", "snippet", "--content", "git log"))
	created := strings.TrimSpace(f.out.String())

	// The fixture editor returns content unchanged.
	require.NoError(t, f.run(t, "edit", created))
	assert.Equal(t, created, strings.TrimSpace(f.out.String()))
}

func TestCreate_EditorFlow(t *testing.T) {
	f := newFixture(t)
	f.deps.Editor = func(initial string) (string, error) {
		return strings.Replace(initial,
			"# Add mandatory snippet below.\n",
			"# Add mandatory snippet below.\ndocker ps\n", 1), nil
	}

	require.NoError(t, f.run(t, "create", "snippet", "--edit"))

	require.NoError(t, f.run(t, "search", "."))
	assert.Contains(t, f.out.String(), "1 of 1")
}

func TestCreate_PristineEditorSessionRejected(t *testing.T) {
	f := newFixture(t)

	// Fixture editor returns the template untouched.
	err := f.run(t, "create", "snippet", "--edit")
	assert.Error(t, err)
}

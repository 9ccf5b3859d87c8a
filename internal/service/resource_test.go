package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/normalize"
	"github.com/sakif/snipstore/internal/query"
	"github.com/sakif/snipstore/internal/repository"
)

// mockResourceRepo implements repository.ResourceRepository in memory with
// the same identity constraints as the sqlite gateway.
type mockResourceRepo struct {
	order []string
	items map[string]*model.Resource
}

func newMockRepo() *mockResourceRepo {
	return &mockResourceRepo{items: make(map[string]*model.Resource)}
}

func (m *mockResourceRepo) Insert(_ context.Context, r *model.Resource) error {
	if _, ok := m.items[r.Digest]; ok {
		return apperror.UniqueViolation("digest")
	}
	for _, stored := range m.items {
		if stored.UUID == r.UUID {
			return apperror.UniqueViolation("uuid")
		}
	}
	stored := r.Clone()
	m.order = append(m.order, r.Digest)
	m.items[r.Digest] = stored
	return nil
}

func (m *mockResourceRepo) Select(_ context.Context, f repository.Filter) (*model.Collection, error) {
	col := model.NewCollection()
	for _, digest := range m.order {
		r := m.items[digest]
		if len(f.Categories) > 0 && !containsCategory(f.Categories, r.Category) {
			continue
		}
		col.Push(r.Clone())
	}
	return col, nil
}

func (m *mockResourceRepo) Update(_ context.Context, digest string, r *model.Resource) error {
	if _, ok := m.items[digest]; !ok {
		return apperror.NotFound(digest)
	}
	delete(m.items, digest)
	for i, d := range m.order {
		if d == digest {
			m.order[i] = r.Digest
		}
	}
	m.items[r.Digest] = r.Clone()
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, digest string) error {
	if _, ok := m.items[digest]; !ok {
		return apperror.NotFound(digest)
	}
	delete(m.items, digest)
	for i, d := range m.order {
		if d == digest {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func containsCategory(categories []model.Category, c model.Category) bool {
	for _, x := range categories {
		if x == c {
			return true
		}
	}
	return false
}

var serviceTestTime = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

// newTestService wires a service on the mock repo with a pinned clock and
// sequential uuids so prefix-resolution cases are reproducible:
// the first record gets uuid 11..., the second 112..., and so on.
func newTestService(t *testing.T, opts ...ServiceOption) (*ResourceService, *mockResourceRepo) {
	t.Helper()
	repo := newMockRepo()
	uuids := []string{
		"11cd5827-b6ef-4067-b5ac-3ceac07dde9f",
		"112a4ede-5a70-4b4e-b1d4-45bb3e12e7e1",
		"23cd5827-b6ef-4067-b5ac-3ceac07dde9f",
	}
	seq := 0
	norm := normalize.New(
		normalize.WithClock(func() time.Time { return serviceTestTime }),
		normalize.WithUUID(func() string {
			u := uuids[seq%len(uuids)]
			seq++
			return u
		}),
	)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewResourceService(repo, norm, logger, opts...)
	return svc, repo
}

func snippetFields(data string) normalize.Fields {
	d := []string{data}
	return normalize.Fields{Category: model.Snippet, Data: &d}
}

func createN(t *testing.T, svc *ResourceService, datas ...string) []*model.Resource {
	t.Helper()
	out := make([]*model.Resource, 0, len(datas))
	for _, d := range datas {
		r, err := svc.Create(context.Background(), snippetFields(d))
		if err != nil {
			t.Fatalf("setup: Create(%q) error = %v", d, err)
		}
		out = append(out, r)
	}
	return out
}

func TestCreate_AllocatesIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.Create(context.Background(), snippetFields("docker ps"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.UUID == "" || r.Digest == "" {
		t.Error("Create() must allocate uuid and digest")
	}
}

func TestCreate_DuplicateContentConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	createN(t, svc, "docker ps")

	_, err := svc.Create(context.Background(), snippetFields("docker ps"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict for identical content", err)
	}
}

func TestSearch_ReturnsAllMatches(t *testing.T) {
	svc, _ := newTestService(t)
	createN(t, svc, "git log", "git diff", "docker ps")

	spec := query.NewSpec()
	spec.All = []string{"git"}
	col, meta, err := svc.Search(context.Background(), spec)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if col.Len() != 2 || meta.Total != 2 {
		t.Errorf("Len() = %d total = %d, want 2/2", col.Len(), meta.Total)
	}
}

func TestSearch_UUIDPrefixReadsDisabled(t *testing.T) {
	svc, _ := newTestService(t, WithUUIDPrefixReads(false))
	created := createN(t, svc, "git log")

	// A prefix shorter than a full uuid matches nothing in exact mode.
	spec := query.NewSpec()
	spec.UUID = created[0].UUID[:8]
	_, _, err := svc.Search(context.Background(), spec)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for short uuid in exact mode", err)
	}

	// The full uuid still resolves.
	spec.UUID = created[0].UUID
	col, _, err := svc.Search(context.Background(), spec)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if col.Len() != 1 {
		t.Errorf("Len() = %d, want 1", col.Len())
	}
}

func TestUpdate_ByDigestPrefix(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log", "docker ps")

	brief := "describe git log"
	updated, err := svc.Update(context.Background(),
		Selector{Digest: created[0].Digest[:8]},
		normalize.Fields{Brief: &brief},
	)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Brief != brief {
		t.Errorf("Brief = %q", updated.Brief)
	}
	if updated.UUID != created[0].UUID {
		t.Error("update must keep the uuid")
	}
}

func TestUpdate_CategoryImmutable(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log")

	updated, err := svc.Update(context.Background(),
		Selector{Digest: created[0].Digest},
		normalize.Fields{Category: model.Solution},
	)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Category != model.Snippet {
		t.Error("a patch must not move a record between categories")
	}
}

func TestUpdate_AmbiguousSelectorRefused(t *testing.T) {
	svc, repo := newTestService(t)
	// The first two injected uuids share the prefix "11".
	createN(t, svc, "git log", "git diff")

	brief := "must not apply"
	_, err := svc.Update(context.Background(),
		Selector{UUID: "11"},
		normalize.Fields{Brief: &brief},
	)
	if !errors.Is(err, apperror.ErrAmbiguous) {
		t.Fatalf("error = %v, want ErrAmbiguous", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if !strings.Contains(appErr.Message, "11") || !strings.Contains(appErr.Message, "2") {
			t.Errorf("ambiguous message %q must cite the identifier and the match count", appErr.Message)
		}
	}

	// Nothing changed.
	for _, r := range repo.items {
		if r.Brief == brief {
			t.Error("ambiguous update must leave the store unchanged")
		}
	}
}

func TestUpdate_NoOpKeepsStoredRecord(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log")

	same := []string{"git log"}
	updated, err := svc.Update(context.Background(),
		Selector{Digest: created[0].Digest},
		normalize.Fields{Data: &same},
	)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Digest != created[0].Digest {
		t.Error("no-op update must not change the digest")
	}
	if !updated.Updated.Equal(created[0].Updated) {
		t.Error("no-op update must not bump the updated timestamp")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	createN(t, svc, "git log")

	brief := "x"
	_, err := svc.Update(context.Background(),
		Selector{Digest: "ffff"},
		normalize.Fields{Brief: &brief},
	)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !strings.Contains(appErr.Message, "ffff") {
		t.Errorf("message %q must echo the identifier as given", appErr.Message)
	}
}

func TestDelete_EmptySelectorSingleRecord(t *testing.T) {
	svc, repo := newTestService(t)
	createN(t, svc, "git log")

	if err := svc.Delete(context.Background(), Selector{}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.items) != 0 {
		t.Error("the single record should have been deleted")
	}
}

func TestDelete_EmptySelectorManyRecords(t *testing.T) {
	svc, repo := newTestService(t)
	createN(t, svc, "git log", "docker ps")

	err := svc.Delete(context.Background(), Selector{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for empty selector", err)
	}
	if len(repo.items) != 2 {
		t.Error("empty selector must not delete anything")
	}
}

func TestDelete_EmptySelectorScopedByCategory(t *testing.T) {
	svc, repo := newTestService(t)
	createN(t, svc, "git log", "docker ps")
	links := []string{"https://example.com"}
	if _, err := svc.Create(context.Background(), normalize.Fields{
		Category: model.Reference,
		Links:    &links,
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Two snippets but only one reference: the scoped empty selector works.
	if err := svc.Delete(context.Background(), Selector{Category: model.Reference}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.items) != 2 {
		t.Errorf("%d records left, want 2", len(repo.items))
	}
}

func TestDelete_InvalidCategory(t *testing.T) {
	svc, _ := newTestService(t)
	createN(t, svc, "git log")

	err := svc.Delete(context.Background(), Selector{Category: "snippets"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for plural category token", err)
	}
}

func TestResolveOne_PrefersLongerPrefixWhenUnique(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log", "git diff")

	// "112" matches only the second record even though "11" matches both.
	err := svc.Delete(context.Background(), Selector{UUID: created[1].UUID[:3]})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestShortDigest(t *testing.T) {
	long := fmt.Sprintf("%064d", 0)
	if got := shortDigest(long); len(got) != 16 {
		t.Errorf("shortDigest length = %d, want 16", len(got))
	}
	if got := shortDigest("abc"); got != "abc" {
		t.Errorf("shortDigest(abc) = %q", got)
	}
}

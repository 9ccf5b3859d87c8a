package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/query"
)

func allSpec() query.Spec {
	spec := query.NewSpec()
	spec.All = []string{query.Wildcard}
	spec.Limit = query.Unlimited
	return spec
}

func TestExportImport_RoundTripPreservesIdentity(t *testing.T) {
	src, _ := newTestService(t)
	created := createN(t, src, "git log", "docker ps")

	dump, err := src.Export(context.Background(), allSpec(), format.JSON{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst, dstRepo := newTestService(t)
	stored, err := dst.Import(context.Background(), dump, format.JSON{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stored != 2 {
		t.Fatalf("Import() stored %d, want 2", stored)
	}

	for _, r := range created {
		got, ok := dstRepo.items[r.Digest]
		if !ok {
			t.Fatalf("imported store is missing digest %s", r.Digest)
		}
		if got.UUID != r.UUID {
			t.Error("import must preserve the exported uuid")
		}
		if !got.Created.Equal(r.Created) || !got.Updated.Equal(r.Updated) {
			t.Error("import must preserve the exported timestamps")
		}
	}
}

func TestImport_Idempotent(t *testing.T) {
	svc, repo := newTestService(t)
	createN(t, svc, "git log")

	dump, err := svc.Export(context.Background(), allSpec(), format.Markdown{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	stored, err := svc.Import(context.Background(), dump, format.Markdown{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stored != 0 {
		t.Errorf("re-import stored %d records, want 0 (skip existing)", stored)
	}
	if len(repo.items) != 1 {
		t.Errorf("store holds %d records, want 1", len(repo.items))
	}
}

func TestImport_RecomputesDigest(t *testing.T) {
	svc, repo := newTestService(t)

	// A hand-edited dump with a stale digest: the parsed digest is ignored
	// and recomputed from content.
	dump := []byte(`{"data": [{
		"category": "snippet",
		"data": ["echo edited"],
		"brief": "edited by hand",
		"groups": ["default"],
		"digest": "0000000000000000000000000000000000000000000000000000000000000000"
	}]}`)

	stored, err := svc.Import(context.Background(), dump, format.JSON{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stored != 1 {
		t.Fatalf("Import() stored %d, want 1", stored)
	}
	for digest, r := range repo.items {
		if digest != r.ComputeDigest() {
			t.Error("import must store under the recomputed digest")
		}
	}
}

func TestImport_ValidationFailureStopsBatch(t *testing.T) {
	svc, _ := newTestService(t)

	dump := []byte(`{"data": [{"category": "snippet", "data": []}]}`)

	_, err := svc.Import(context.Background(), dump, format.JSON{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for snippet without data", err)
	}
}

func TestExport_FiltersApply(t *testing.T) {
	svc, _ := newTestService(t)
	createN(t, svc, "git log", "docker ps")

	spec := allSpec()
	spec.All = []string{"docker"}
	dump, err := svc.Export(context.Background(), spec, format.JSON{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	parsed, err := format.JSON{}.ParseList(dump)
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if len(parsed) != 1 || parsed[0].Data[0] != "docker ps" {
		t.Errorf("filtered export = %+v, want only the docker snippet", parsed)
	}
}

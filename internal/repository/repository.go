// Package repository defines the persistence gateway interface the core
// stores resources through. The gateway is a key/category-indexed store with
// insert/select/update/delete and a uniqueness constraint on uuid; all richer
// query semantics live in internal/query over the loaded collection.
package repository

import (
	"context"

	"github.com/sakif/snipstore/internal/model"
)

// Filter narrows a Select to a category subset. Empty means everything.
type Filter struct {
	Categories []model.Category
}

// ResourceRepository is implemented by the sqlite gateway and by the test
// mock. Insert reports a typed apperror.UniqueViolation distinguishing uuid
// collisions from any other integrity error, so callers can produce the
// right user-facing message.
type ResourceRepository interface {
	Insert(ctx context.Context, r *model.Resource) error
	Select(ctx context.Context, f Filter) (*model.Collection, error)
	// Update replaces the row stored under digest with r. The digest key
	// changes when content changed, so the old key is passed explicitly.
	Update(ctx context.Context, digest string, r *model.Resource) error
	Delete(ctx context.Context, digest string) error
}

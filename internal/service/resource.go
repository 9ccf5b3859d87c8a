// Package service contains the business logic layer: it orchestrates the
// Normalizer, the query engine and the persistence gateway, and owns the
// selector-resolution rules that make partial identifiers deterministic.
//
// The service speaks in plain values and typed apperror failures; it has no
// knowledge of HTTP or the CLI. Each request operates on a freshly loaded
// view of the store and commits before returning, so no locking is needed
// here; the gateway is the only shared mutable resource.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/normalize"
	"github.com/sakif/snipstore/internal/query"
	"github.com/sakif/snipstore/internal/repository"
)

// ResourceService handles creation, search, update and deletion of stored
// resources.
type ResourceService struct {
	repo   repository.ResourceRepository
	norm   *normalize.Normalizer
	logger *slog.Logger

	// uuidPrefixReads controls whether read queries accept uuid prefixes
	// the way mutations do. Mutations always accept prefixes.
	uuidPrefixReads bool
}

// ServiceOption configures a ResourceService.
type ServiceOption func(*ResourceService)

// WithUUIDPrefixReads toggles uuid prefix matching on read queries.
func WithUUIDPrefixReads(enabled bool) ServiceOption {
	return func(s *ResourceService) { s.uuidPrefixReads = enabled }
}

// NewResourceService creates the service. The repository decides where data
// lives; the normalizer decides what is valid.
func NewResourceService(repo repository.ResourceRepository, norm *normalize.Normalizer, logger *slog.Logger, opts ...ServiceOption) *ResourceService {
	s := &ResourceService{
		repo:            repo,
		norm:            norm,
		logger:          logger,
		uuidPrefixReads: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates, canonicalizes and stores a new resource. A digest
// collision means byte-identical content is already stored and surfaces as
// the gateway's UniqueViolation("digest").
func (s *ResourceService) Create(ctx context.Context, f normalize.Fields) (*model.Resource, error) {
	r, err := s.norm.Create(f)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("resource created",
		slog.String("category", string(r.Category)),
		slog.String("digest", shortDigest(r.Digest)),
		slog.String("uuid", r.UUID),
	)
	return r, nil
}

// Search runs a query over a snapshot of the store. Digest and uuid
// selectors on the read path tolerate many matches and return them all.
func (s *ResourceService) Search(ctx context.Context, spec query.Spec) (*model.Collection, query.Meta, error) {
	if !s.uuidPrefixReads && spec.UUID != "" {
		// Exact match only: a prefix shorter than a full uuid matches
		// nothing in this mode.
		if len(spec.UUID) != 36 {
			return nil, query.Meta{Limit: spec.Limit, Offset: spec.Offset}, apperror.NotFound(spec.UUID)
		}
	}

	col, err := s.repo.Select(ctx, repository.Filter{Categories: spec.Categories})
	if err != nil {
		return nil, query.Meta{}, fmt.Errorf("searching resources: %w", err)
	}
	return query.Run(col, spec)
}

// Selector addresses exactly one stored resource for a mutation, by digest
// or uuid prefix. Category narrows the addressed set and enables the
// empty-selector shortcut: an empty identifier is legal only when the store
// holds exactly one record of the addressed category.
type Selector struct {
	Digest   string
	UUID     string
	Category model.Category
}

func (sel Selector) identifier() string {
	if sel.UUID != "" {
		return sel.UUID
	}
	return sel.Digest
}

// Update resolves the selector to exactly one record, applies the field
// patch and persists the result. A no-op patch is not written and does not
// bump the updated timestamp.
func (s *ResourceService) Update(ctx context.Context, sel Selector, f normalize.Fields) (*model.Resource, error) {
	stored, err := s.resolveOne(ctx, sel)
	if err != nil {
		return nil, err
	}

	// The category is immutable after creation; the patch cannot move a
	// record between categories.
	f.Category = stored.Category

	next, changed, err := s.norm.Update(stored, f)
	if err != nil {
		return nil, err
	}
	if !changed {
		return stored, nil
	}

	if err := s.repo.Update(ctx, stored.Digest, next); err != nil {
		return nil, err
	}

	s.logger.Info("resource updated",
		slog.String("digest", shortDigest(next.Digest)),
		slog.String("previous", shortDigest(stored.Digest)),
	)
	return next, nil
}

// Delete resolves the selector to exactly one record and removes it. On an
// ambiguous selector the store is left unchanged.
func (s *ResourceService) Delete(ctx context.Context, sel Selector) error {
	stored, err := s.resolveOne(ctx, sel)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, stored.Digest); err != nil {
		return err
	}
	s.logger.Info("resource deleted", slog.String("digest", shortDigest(stored.Digest)))
	return nil
}

// resolveOne is the mutation-side resolver: zero matches is NotFound citing
// the identifier as given, more than one is Ambiguous with the match count,
// and an empty identifier resolves only against a single-record category.
// Reads use query.Run, which returns all matches instead.
func (s *ResourceService) resolveOne(ctx context.Context, sel Selector) (*model.Resource, error) {
	var filter repository.Filter
	if sel.Category != "" {
		if !sel.Category.Valid() {
			return nil, apperror.InvalidCategoryToken(string(sel.Category))
		}
		filter.Categories = []model.Category{sel.Category}
	}

	col, err := s.repo.Select(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("resolving selector: %w", err)
	}

	identifier := sel.identifier()
	if identifier == "" {
		if col.Len() == 1 {
			return col.Resources()[0], nil
		}
		return nil, apperror.EmptySelector()
	}

	var matches []*model.Resource
	for _, r := range col.Resources() {
		switch {
		case sel.UUID != "" && strings.HasPrefix(r.UUID, sel.UUID):
			matches = append(matches, r)
		case sel.Digest != "" && strings.HasPrefix(r.Digest, sel.Digest):
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, apperror.NotFound(identifier)
	case 1:
		return matches[0], nil
	}
	return nil, apperror.Ambiguous(identifier, len(matches))
}

func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}

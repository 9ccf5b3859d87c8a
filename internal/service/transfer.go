package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/normalize"
	"github.com/sakif/snipstore/internal/query"
)

// Export dumps the query's matches through the given codec. The spec selects
// what leaves the store; the codec decides how it looks.
func (s *ResourceService) Export(ctx context.Context, spec query.Spec, codec format.Codec) ([]byte, error) {
	col, _, err := s.Search(ctx, spec)
	if err != nil {
		return nil, err
	}
	out, err := codec.DumpList(col.Resources())
	if err != nil {
		return nil, fmt.Errorf("exporting resources: %w", err)
	}
	return out, nil
}

// Import parses a batch through the codec, re-normalizes every record and
// stores the results. Timestamps and uuids present in the dump are kept so
// an export/import cycle preserves identity; records without them get fresh
// ones. Records whose content is already stored are skipped, not errors;
// importing the same dump twice is idempotent.
func (s *ResourceService) Import(ctx context.Context, data []byte, codec format.Codec) (int, error) {
	parsed, err := codec.ParseList(data)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, p := range parsed {
		r, err := s.norm.Create(fieldsFromResource(p))
		if err != nil {
			return stored, err
		}
		if err := s.repo.Insert(ctx, r); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field == "digest" {
				s.logger.Info("import skipped existing content",
					slog.String("digest", shortDigest(r.Digest)))
				continue
			}
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// fieldsFromResource rebuilds a raw field set from a parsed resource so
// imports run through the same normalization as any other write. The parsed
// digest is deliberately dropped: it is recomputed, never trusted.
func fieldsFromResource(r *model.Resource) normalize.Fields {
	return normalize.Fields{
		Category:    r.Category,
		Data:        &r.Data,
		Brief:       &r.Brief,
		Description: &r.Description,
		Name:        &r.Name,
		Groups:      &r.Groups,
		Tags:        &r.Tags,
		Links:       &r.Links,
		Source:      &r.Source,
		Versions:    &r.Versions,
		Filename:    &r.Filename,
		Created:     r.Created,
		Updated:     r.Updated,
		UUID:        r.UUID,
	}
}

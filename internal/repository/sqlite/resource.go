package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/repository"
)

// Compile-time check that *DB satisfies the gateway interface.
var _ repository.ResourceRepository = (*DB)(nil)

// listSep joins list-valued fields into a single TEXT column. Normalization
// strips control characters from every field, so the unit separator never
// appears in stored content and the split on read is unambiguous.
const listSep = "\x1f"

const resourceColumns = `digest, uuid, category, data, brief, description, name,
	"groups", tags, links, source, versions, filename, created, updated`

// Insert stores a new resource.
//
// The table carries both identity constraints, so two near-simultaneous
// creates with colliding identity both fail cleanly here instead of
// corrupting ordering: the violated constraint is mapped to a typed
// apperror.UniqueViolation naming the field when it can be determined.
func (db *DB) Insert(ctx context.Context, r *model.Resource) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO resources (`+resourceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Digest,
		r.UUID,
		string(r.Category),
		strings.Join(r.Data, listSep),
		r.Brief,
		r.Description,
		r.Name,
		strings.Join(r.Groups, listSep),
		strings.Join(r.Tags, listSep),
		strings.Join(r.Links, listSep),
		r.Source,
		strings.Join(r.Versions, listSep),
		r.Filename,
		r.Created.Format(model.TimeLayout),
		r.Updated.Format(model.TimeLayout),
	)
	if err != nil {
		if violation := uniqueViolation(err); violation != nil {
			return violation
		}
		return fmt.Errorf("sqlite: inserting resource: %w", err)
	}
	return nil
}

// Select loads resources matching the filter, ordered by creation time so a
// freshly loaded collection iterates oldest-first.
func (db *DB) Select(ctx context.Context, f repository.Filter) (*model.Collection, error) {
	q := `SELECT ` + resourceColumns + ` FROM resources`
	args := make([]any, 0, len(f.Categories))
	if len(f.Categories) > 0 {
		placeholders := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		q += ` WHERE category IN (` + strings.Join(placeholders, ", ") + `)`
	}
	q += ` ORDER BY created, digest`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: selecting resources: %w", err)
	}
	defer rows.Close()

	col := model.NewCollection()
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		col.Push(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating resources: %w", err)
	}
	return col, nil
}

// Update replaces the row stored under digest. The new digest may differ
// from the old one when the content changed.
func (db *DB) Update(ctx context.Context, digest string, r *model.Resource) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE resources
		 SET digest = ?, category = ?, data = ?, brief = ?, description = ?,
		     name = ?, "groups" = ?, tags = ?, links = ?, source = ?,
		     versions = ?, filename = ?, updated = ?
		 WHERE digest = ?`,
		r.Digest,
		string(r.Category),
		strings.Join(r.Data, listSep),
		r.Brief,
		r.Description,
		r.Name,
		strings.Join(r.Groups, listSep),
		strings.Join(r.Tags, listSep),
		strings.Join(r.Links, listSep),
		r.Source,
		strings.Join(r.Versions, listSep),
		r.Filename,
		r.Updated.Format(model.TimeLayout),
		digest,
	)
	if err != nil {
		if violation := uniqueViolation(err); violation != nil {
			return violation
		}
		return fmt.Errorf("sqlite: updating resource %s: %w", digest, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(digest)
	}
	return nil
}

// Delete removes the row stored under digest.
func (db *DB) Delete(ctx context.Context, digest string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM resources WHERE digest = ?`, digest)
	if err != nil {
		return fmt.Errorf("sqlite: deleting resource %s: %w", digest, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(digest)
	}
	return nil
}

func scanResource(rows *sql.Rows) (*model.Resource, error) {
	var (
		r                  model.Resource
		category           string
		data, groups, tags string
		links, versions    string
		created, updated   string
	)
	if err := rows.Scan(
		&r.Digest, &r.UUID, &category, &data, &r.Brief, &r.Description,
		&r.Name, &groups, &tags, &links, &r.Source, &versions, &r.Filename,
		&created, &updated,
	); err != nil {
		return nil, fmt.Errorf("sqlite: scanning resource row: %w", err)
	}

	r.Category = model.Category(category)
	r.Data = splitList(data)
	r.Groups = splitList(groups)
	r.Tags = splitList(tags)
	r.Links = splitList(links)
	r.Versions = splitList(versions)

	var err error
	if r.Created, err = time.Parse(model.TimeLayout, created); err != nil {
		return nil, fmt.Errorf("sqlite: parsing created timestamp: %w", err)
	}
	if r.Updated, err = time.Parse(model.TimeLayout, updated); err != nil {
		return nil, fmt.Errorf("sqlite: parsing updated timestamp: %w", err)
	}
	return &r, nil
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, listSep)
}

// uniqueViolation maps a driver integrity error to a typed violation. The
// modernc driver reports constraint failures as plain text, so the violated
// column is recovered from the message; an unattributable violation maps to
// the generic internal-error form.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "resources.uuid"):
		return apperror.UniqueViolation("uuid")
	case strings.Contains(msg, "resources.digest"):
		return apperror.UniqueViolation("digest")
	}
	return apperror.UniqueViolation("")
}

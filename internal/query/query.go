// Package query answers reads: given a collection and a search spec it
// filters, sorts, paginates and projects, returning a result collection and
// pagination metadata. It never mutates its input, so a shared snapshot can
// serve concurrent queries.
package query

import (
	"math"
	"sort"
	"strings"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
)

// DefaultLimit is the page size used when the caller does not choose one.
const DefaultLimit = 20

// Unlimited is a limit large enough to return every match. Limit zero is not
// usable for that: it is a legal value meaning "count only, return nothing".
const Unlimited = math.MaxInt

// Wildcard is the keyword that matches every record.
const Wildcard = "."

// Spec describes one query. Keyword lists use OR-of-OR semantics: a record
// matches a list if any keyword matches any target field. Non-empty lists
// combine with each other (and with the category and identifier filters) as
// AND.
type Spec struct {
	// Categories restricts matches to a subset of the known categories.
	Categories []model.Category
	// All matches against every searchable field, Tags against tags only,
	// Groups against groups only. Matching is case-insensitive substring.
	All    []string
	Tags   []string
	Groups []string
	// Digest and UUID are prefix selectors from one character up to full
	// length. Empty means no identifier filter. Reads tolerate multiple
	// matches; single-target mutations go through service resolution
	// instead.
	Digest string
	UUID   string
	// Sort lists field names, each optionally prefixed with '-' for
	// descending. The multi-key stable sort runs before limit/offset.
	Sort []string
	// Limit and Offset page through the sorted match set. Limit 0 is legal
	// and returns no records while metadata still reports the true total.
	Limit  int
	Offset int
	// Fields optionally projects the result down to a field subset.
	Fields []string
}

// NewSpec returns a Spec with the default page size.
func NewSpec() Spec {
	return Spec{Limit: DefaultLimit}
}

// Meta is the pagination metadata returned with every result: Count records
// actually returned, Total records matching before limit/offset, and the
// caller's limit/offset echoed back verbatim. Offset is never clamped.
type Meta struct {
	Count  int `json:"count" yaml:"count"`
	Limit  int `json:"limit" yaml:"limit"`
	Offset int `json:"offset" yaml:"offset"`
	Total  int `json:"total" yaml:"total"`
}

// Run executes the spec against a collection.
//
// Order of operations: validate sort and projection fields, filter, sort the
// full matched set, report Total, then slice by offset/limit and project.
// A valid filter matching nothing fails with NoResults, except when a
// specific digest/uuid selector was given, which fails with NotFound naming
// the identifier as the caller wrote it.
func Run(col *model.Collection, spec Spec) (*model.Collection, Meta, error) {
	meta := Meta{Limit: spec.Limit, Offset: spec.Offset}

	// Unknown field names are validation errors, never silent fallbacks,
	// and they are reported even when the filter would match nothing.
	for _, key := range spec.Sort {
		if _, ok := accessors[strings.TrimPrefix(key, "-")]; !ok {
			return nil, meta, apperror.UnknownSortField(strings.TrimPrefix(key, "-"))
		}
	}
	for _, f := range spec.Fields {
		if _, ok := projectors[f]; !ok {
			return nil, meta, apperror.UnknownProjectionField(f)
		}
	}

	matched := filter(col, spec)
	if len(matched) == 0 {
		switch {
		case spec.Digest != "":
			return nil, meta, apperror.NotFound(spec.Digest)
		case spec.UUID != "":
			return nil, meta, apperror.NotFound(spec.UUID)
		}
		return nil, meta, apperror.NoResults()
	}

	sortResources(matched, spec.Sort)
	meta.Total = len(matched)

	page := paginate(matched, spec.Offset, spec.Limit)
	meta.Count = len(page)

	result := model.NewCollection()
	for _, r := range page {
		result.Push(project(r, spec.Fields))
	}
	return result, meta, nil
}

func filter(col *model.Collection, spec Spec) []*model.Resource {
	var out []*model.Resource
	for _, r := range col.Resources() {
		if !categoryMatch(r, spec.Categories) {
			continue
		}
		if spec.Digest != "" && !strings.HasPrefix(r.Digest, spec.Digest) {
			continue
		}
		if spec.UUID != "" && !strings.HasPrefix(r.UUID, spec.UUID) {
			continue
		}
		if len(spec.All) > 0 && !keywordMatch(spec.All, searchText(r)) {
			continue
		}
		if len(spec.Tags) > 0 && !keywordMatch(spec.Tags, r.Tags) {
			continue
		}
		if len(spec.Groups) > 0 && !keywordMatch(spec.Groups, r.Groups) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func categoryMatch(r *model.Resource, categories []model.Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if r.Category == c {
			return true
		}
	}
	return false
}

// keywordMatch implements OR-of-OR: any keyword against any target value,
// case-insensitively. The "." wildcard matches everything.
func keywordMatch(keywords, targets []string) bool {
	for _, kw := range keywords {
		if kw == Wildcard {
			return true
		}
		kw = strings.ToLower(kw)
		for _, t := range targets {
			if strings.Contains(strings.ToLower(t), kw) {
				return true
			}
		}
	}
	return false
}

// searchText lists every searchable value of a resource for sall matching.
func searchText(r *model.Resource) []string {
	out := make([]string, 0, 12+len(r.Data))
	out = append(out, r.Data...)
	out = append(out, r.Brief, r.Description, r.Name, r.Source, r.Filename, string(r.Category))
	out = append(out, r.Groups...)
	out = append(out, r.Tags...)
	out = append(out, r.Links...)
	out = append(out, r.Versions...)
	return out
}

// sortResources applies a multi-key stable sort. With no keys the insertion
// order of the collection is kept.
func sortResources(resources []*model.Resource, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(resources, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			get := accessors[strings.TrimPrefix(key, "-")]
			a, b := get(resources[i]), get(resources[j])
			if a == b {
				continue
			}
			if desc {
				return a > b
			}
			return a < b
		}
		return false
	})
}

func paginate(resources []*model.Resource, offset, limit int) []*model.Resource {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(resources) || limit <= 0 {
		return nil
	}
	// Guard the addition: offset+limit can overflow for Unlimited.
	if limit > len(resources)-offset {
		return resources[offset:]
	}
	return resources[offset : offset+limit]
}

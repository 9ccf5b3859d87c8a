// Package normalize turns raw, possibly sparse field sets into complete,
// canonical resources, or rejects them.
//
// The Normalizer owns the identity rules: uuid is allocated exactly once at
// creation and never changes, created is set once, updated only moves when a
// change actually changed something, and the digest is recomputed after
// every successful normalization. Time and uuid generation are injected so
// tests can run with a deterministic clock and predictable identities.
package normalize

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
)

// Clock supplies the current time. The default truncates to microseconds in
// UTC, matching the precision of model.TimeLayout so a stored timestamp
// survives a dump/parse cycle bit-for-bit.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func defaultUUID() string {
	return uuid.NewString()
}

// Normalizer validates and canonicalizes raw field sets.
type Normalizer struct {
	clock   Clock
	newUUID func() string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock injects a deterministic clock.
func WithClock(c Clock) Option {
	return func(n *Normalizer) { n.clock = c }
}

// WithUUID injects a deterministic uuid allocator.
func WithUUID(f func() string) Option {
	return func(n *Normalizer) { n.newUUID = f }
}

// New creates a Normalizer with the real clock and uuid allocator unless
// overridden by options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{clock: defaultClock, newUUID: defaultUUID}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Fields is a raw input field set from CLI flags, an edited template or an
// import file. Pointer fields distinguish "absent" (nil, leave the stored
// value alone on update) from "present but empty" (clear the field).
//
// There is deliberately no uuid or digest here: both are server-owned, and a
// client-supplied value is dropped before it ever reaches the Normalizer.
type Fields struct {
	Category    model.Category
	Data        *[]string
	Brief       *string
	Description *string
	Name        *string
	Groups      *[]string
	Tags        *[]string
	Links       *[]string
	Source      *string
	Versions    *[]string
	Filename    *string

	// Created/Updated are honored only on import, where a dump of an
	// existing store must round-trip its timestamps.
	Created time.Time
	Updated time.Time
	// UUID is honored only on import for the same reason.
	UUID string
}

// Create builds a canonical resource from raw fields.
//
// On success the resource has groups defaulted, every string trimmed, list
// fields de-duplicated per category rule, created = updated = now, a freshly
// allocated uuid and a recomputed digest.
func (n *Normalizer) Create(f Fields) (*model.Resource, error) {
	if !f.Category.Valid() {
		return nil, apperror.InvalidCategoryToken(string(f.Category))
	}

	r := &model.Resource{Category: f.Category}
	applyStrings(r, f)
	r.Data = normalizeData(deref(f.Data))
	r.Groups = normalizeGroups(deref(f.Groups))
	r.Tags = normalizeTags(deref(f.Tags), f.Category, true)
	r.Links = dedupOrdered(trimAll(deref(f.Links)))
	r.Versions = dedupOrdered(trimAll(deref(f.Versions)))

	if err := checkMandatory(r); err != nil {
		return nil, err
	}

	now := n.clock()
	r.Created, r.Updated = now, now
	if !f.Created.IsZero() {
		r.Created = f.Created
	}
	if !f.Updated.IsZero() {
		r.Updated = f.Updated
	}
	r.UUID = n.newUUID()
	if f.UUID != "" {
		r.UUID = f.UUID
	}
	r.RefreshDigest()
	return r, nil
}

// Update applies raw fields on top of a stored resource and returns the
// normalized result plus whether anything actually changed.
//
// Identity is preserved: created and uuid are carried over untouched, and
// updated is bumped only when the normalized content differs from the stored
// version. A no-op update returns changed == false and an unchanged record.
func (n *Normalizer) Update(stored *model.Resource, f Fields) (*model.Resource, bool, error) {
	next := stored.Clone()
	applyStrings(next, f)
	if f.Data != nil {
		next.Data = normalizeData(*f.Data)
	}
	if f.Groups != nil {
		next.Groups = normalizeGroups(*f.Groups)
	}
	if f.Tags != nil {
		// Reference tags keep the order the caller gave them; snippet and
		// solution tags are re-sorted into canonical order.
		next.Tags = normalizeTags(*f.Tags, next.Category, false)
	}
	if f.Links != nil {
		next.Links = dedupOrdered(trimAll(*f.Links))
	}
	if f.Versions != nil {
		next.Versions = dedupOrdered(trimAll(*f.Versions))
	}

	if err := checkMandatory(next); err != nil {
		return nil, false, err
	}

	next.RefreshDigest()
	if next.Digest == stored.Digest {
		return stored, false, nil
	}
	next.Updated = n.clock()
	return next, true, nil
}

// checkMandatory enforces the per-category mandatory field: data for
// snippets and solutions, links for references.
func checkMandatory(r *model.Resource) error {
	switch r.Category {
	case model.Snippet, model.Solution:
		if len(r.Data) == 0 {
			return apperror.MandatoryFieldEmpty("data")
		}
	case model.Reference:
		if len(r.Links) == 0 {
			return apperror.MandatoryFieldEmpty("links")
		}
	}
	return nil
}

func applyStrings(r *model.Resource, f Fields) {
	if f.Brief != nil {
		r.Brief = cleanString(*f.Brief)
	}
	if f.Description != nil {
		r.Description = cleanString(*f.Description)
	}
	if f.Name != nil {
		r.Name = cleanString(*f.Name)
	}
	if f.Source != nil {
		r.Source = cleanString(*f.Source)
	}
	if f.Filename != nil {
		r.Filename = cleanString(*f.Filename)
	}
}

func cleanString(s string) string {
	return strings.TrimSpace(stripControl(s))
}

// stripControl drops control characters from field content. The digest and
// the storage layer both join fields with the 0x1f unit separator, so a
// stray control byte in content would corrupt identity. Tab and newline are
// content and survive.
func stripControl(s string) string {
	return strings.Map(func(c rune) rune {
		if c == '\t' || c == '\n' {
			return c
		}
		if unicode.IsControl(c) {
			return -1
		}
		return c
	}, s)
}

// normalizeData trims trailing whitespace from each line and drops leading
// and trailing empty lines. Interior empty lines are content and stay.
func normalizeData(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimRight(stripControl(l), " \t"))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeGroups trims, de-duplicates and sorts; an empty result falls back
// to the default group.
func normalizeGroups(groups []string) []string {
	out := dedupOrdered(trimAll(groups))
	if len(out) == 0 {
		return []string{"default"}
	}
	sort.Strings(out)
	return out
}

// normalizeTags trims and de-duplicates. Tags are sorted on creation for
// every category; on update they are sorted only for snippet/solution so
// that an unspecified PATCH does not re-order reference tags.
func normalizeTags(tags []string, category model.Category, creating bool) []string {
	out := dedupOrdered(trimAll(tags))
	if creating || category != model.Reference {
		sort.Strings(out)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = cleanString(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// dedupOrdered collapses duplicates while preserving first-occurrence order.
func dedupOrdered(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func deref(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

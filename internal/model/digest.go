package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field separator inside the canonical digest input. Normalization strips
// control characters, so 0x1f (unit separator) never appears in content and
// two different field layouts can never produce the same byte string.
const digestSep = "\x1f"

// ComputeDigest derives the content hash: SHA-256 over the canonical byte
// string of every content-bearing field, returned as 64 lowercase hex chars.
//
// The canonical form applies the per-category ordering rules: groups sorted,
// tags sorted for snippet/solution but kept in stored order for references,
// links always in first-occurrence order. Two resources with the same
// normalized field values in the same category therefore always hash the
// same, and whitespace-only differences (trimmed away by normalization)
// never change the digest.
//
// Pure function: no I/O, no clock, stable across process restarts and codec
// round-trips.
func (r *Resource) ComputeDigest() string {
	h := sha256.New()
	for _, part := range []string{
		strings.Join(r.Data, "\n"),
		r.Brief,
		r.Description,
		r.Name,
		strings.Join(r.SortedGroups(), "\n"),
		strings.Join(r.CanonicalTags(), "\n"),
		strings.Join(r.CanonicalLinks(), "\n"),
		string(r.Category),
		r.Filename,
		strings.Join(r.Versions, "\n"),
		r.Source,
	} {
		h.Write([]byte(part))
		h.Write([]byte(digestSep))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RefreshDigest recomputes and stores the digest. Called after every
// successful normalization; Digest is never independently settable.
func (r *Resource) RefreshDigest() {
	r.Digest = r.ComputeDigest()
}

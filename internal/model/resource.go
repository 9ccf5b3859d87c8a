// Package model defines the content model: the Resource record, its derived
// digest, and the digest-keyed Collection.
package model

import (
	"sort"
	"time"
)

// TimeLayout is the timestamp format used everywhere a timestamp is rendered
// as text: microsecond precision with an explicit timezone offset. Storing
// and re-parsing a timestamp in this layout is lossless as long as clocks
// are truncated to microseconds (see normalize.Clock).
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Resource is one stored content item: a snippet (shell command), a solution
// (troubleshooting write-up) or a reference (bookmarked link).
//
// Identity is two-fold: Digest is a content hash that changes whenever the
// content changes, UUID is allocated once at creation and never changes.
// Both are derived and server-owned; clients cannot set them.
type Resource struct {
	Category    Category  `json:"category" yaml:"category"`
	Data        []string  `json:"data" yaml:"data"`
	Brief       string    `json:"brief" yaml:"brief"`
	Description string    `json:"description" yaml:"description"`
	Name        string    `json:"name" yaml:"name"`
	Groups      []string  `json:"groups" yaml:"groups"`
	Tags        []string  `json:"tags" yaml:"tags"`
	Links       []string  `json:"links" yaml:"links"`
	Source      string    `json:"source" yaml:"source"`
	Versions    []string  `json:"versions" yaml:"versions"`
	Filename    string    `json:"filename" yaml:"filename"`
	Created     time.Time `json:"created" yaml:"created"`
	Updated     time.Time `json:"updated" yaml:"updated"`
	UUID        string    `json:"uuid" yaml:"uuid"`
	Digest      string    `json:"digest" yaml:"digest"`
}

// Clone returns a deep copy. Mutating the copy never touches the original;
// the update path works on a clone so a failed validation leaves the stored
// record untouched.
func (r *Resource) Clone() *Resource {
	c := *r
	c.Data = append([]string(nil), r.Data...)
	c.Groups = append([]string(nil), r.Groups...)
	c.Tags = append([]string(nil), r.Tags...)
	c.Links = append([]string(nil), r.Links...)
	c.Versions = append([]string(nil), r.Versions...)
	return &c
}

// SortedGroups returns the groups in sorted order. Groups are set-valued so
// their canonical form is always sorted.
func (r *Resource) SortedGroups() []string {
	out := append([]string(nil), r.Groups...)
	sort.Strings(out)
	return out
}

// CanonicalTags returns the tags in their canonical per-category order:
// sorted for snippets and solutions, stored order for references. Reference
// tags keep the order the user gave them, so re-sorting them here would
// change the digest of an untouched record.
func (r *Resource) CanonicalTags() []string {
	out := append([]string(nil), r.Tags...)
	if r.Category != Reference {
		sort.Strings(out)
	}
	return out
}

// CanonicalLinks returns the links in first-occurrence order. Links encode
// importance, so they are never sorted.
func (r *Resource) CanonicalLinks() []string {
	return append([]string(nil), r.Links...)
}

// EqualContent reports field-wise equality excluding any storage row id.
// Timestamps compare with time.Time.Equal so the wall-clock instant matters,
// not the location or monotonic reading.
func (r *Resource) EqualContent(other *Resource) bool {
	if other == nil {
		return false
	}
	return r.Category == other.Category &&
		equalStrings(r.Data, other.Data) &&
		r.Brief == other.Brief &&
		r.Description == other.Description &&
		r.Name == other.Name &&
		equalStrings(r.Groups, other.Groups) &&
		equalStrings(r.Tags, other.Tags) &&
		equalStrings(r.Links, other.Links) &&
		r.Source == other.Source &&
		equalStrings(r.Versions, other.Versions) &&
		r.Filename == other.Filename &&
		r.Created.Equal(other.Created) &&
		r.Updated.Equal(other.Updated) &&
		r.UUID == other.UUID &&
		r.Digest == other.Digest
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package query

import (
	"strings"

	"github.com/sakif/snipstore/internal/model"
)

// accessors is the typed field-accessor table used for sorting. Every value
// is rendered as a string; timestamps use model.TimeLayout, which sorts
// lexicographically in time order. Building the table once gives O(1)
// lookup and one natural place to reject unknown field names.
var accessors = map[string]func(*model.Resource) string{
	"brief":       func(r *model.Resource) string { return r.Brief },
	"category":    func(r *model.Resource) string { return string(r.Category) },
	"created":     func(r *model.Resource) string { return r.Created.Format(model.TimeLayout) },
	"data":        func(r *model.Resource) string { return strings.Join(r.Data, "\n") },
	"description": func(r *model.Resource) string { return r.Description },
	"digest":      func(r *model.Resource) string { return r.Digest },
	"filename":    func(r *model.Resource) string { return r.Filename },
	"groups":      func(r *model.Resource) string { return strings.Join(r.Groups, ",") },
	"links":       func(r *model.Resource) string { return strings.Join(r.Links, "\n") },
	"name":        func(r *model.Resource) string { return r.Name },
	"source":      func(r *model.Resource) string { return r.Source },
	"tags":        func(r *model.Resource) string { return strings.Join(r.Tags, ",") },
	"updated":     func(r *model.Resource) string { return r.Updated.Format(model.TimeLayout) },
	"uuid":        func(r *model.Resource) string { return r.UUID },
	"versions":    func(r *model.Resource) string { return strings.Join(r.Versions, ",") },
}

// projectors copy one field from a source resource into a projected copy.
var projectors = map[string]func(dst, src *model.Resource){
	"brief":       func(dst, src *model.Resource) { dst.Brief = src.Brief },
	"category":    func(dst, src *model.Resource) { dst.Category = src.Category },
	"created":     func(dst, src *model.Resource) { dst.Created = src.Created },
	"data":        func(dst, src *model.Resource) { dst.Data = src.Data },
	"description": func(dst, src *model.Resource) { dst.Description = src.Description },
	"digest":      func(dst, src *model.Resource) { dst.Digest = src.Digest },
	"filename":    func(dst, src *model.Resource) { dst.Filename = src.Filename },
	"groups":      func(dst, src *model.Resource) { dst.Groups = src.Groups },
	"links":       func(dst, src *model.Resource) { dst.Links = src.Links },
	"name":        func(dst, src *model.Resource) { dst.Name = src.Name },
	"source":      func(dst, src *model.Resource) { dst.Source = src.Source },
	"tags":        func(dst, src *model.Resource) { dst.Tags = src.Tags },
	"updated":     func(dst, src *model.Resource) { dst.Updated = src.Updated },
	"uuid":        func(dst, src *model.Resource) { dst.UUID = src.UUID },
	"versions":    func(dst, src *model.Resource) { dst.Versions = src.Versions },
}

// project returns the resource itself when no projection is requested, or a
// copy holding only the selected fields. The digest key is always carried so
// the result collection stays digest-addressable.
func project(r *model.Resource, fields []string) *model.Resource {
	if len(fields) == 0 {
		return r
	}
	dst := &model.Resource{Digest: r.Digest}
	for _, f := range fields {
		projectors[f](dst, r)
	}
	return dst
}

// ParseFields merges projection parameters that may arrive either as one
// comma-separated value or as the parameter repeated, each contributing to
// the same set. Order of first appearance is kept.
func ParseFields(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// ParseCategories parses raw scat tokens, accepting repeated and
// comma-separated values. Tokens must be exact singular category names.
func ParseCategories(values []string) ([]model.Category, error) {
	var out []model.Category
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			c, err := model.ParseCategory(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// ParseKeywords splits keyword parameters on commas, the same way for sall,
// stag and sgrp. Whitespace is not a separator: a keyword may be a phrase.
func ParseKeywords(values []string) []string {
	var out []string
	for _, v := range values {
		for _, kw := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' }) {
			if kw = strings.TrimSpace(kw); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/snipstore/internal/normalize"
	"github.com/sakif/snipstore/internal/query"
)

// contentFlags are the writable resource fields shared by create and update.
// Only flags the user actually set become part of the patch, so an update
// leaves untouched fields alone.
type contentFlags struct {
	data        []string
	brief       string
	description string
	name        string
	groups      []string
	tags        []string
	links       []string
	source      string
	versions    []string
	filename    string
}

func (c *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&c.data, "content", nil, "content line (repeatable)")
	cmd.Flags().StringVar(&c.brief, "brief", "", "one-line summary")
	cmd.Flags().StringVar(&c.description, "description", "", "longer description")
	cmd.Flags().StringVar(&c.name, "name", "", "display name")
	cmd.Flags().StringSliceVar(&c.groups, "groups", nil, "groups (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&c.tags, "tags", nil, "tags (repeatable or comma-separated)")
	cmd.Flags().StringArrayVar(&c.links, "links", nil, "reference link (repeatable)")
	cmd.Flags().StringVar(&c.source, "source", "", "origin URL")
	cmd.Flags().StringSliceVar(&c.versions, "versions", nil, "version markers")
	cmd.Flags().StringVar(&c.filename, "filename", "", "suggested filename")
}

// fields converts the set flags into a patch. cmd.Flags().Changed tells a
// deliberately emptied field ("--tags=") apart from an untouched one.
func (c *contentFlags) fields(cmd *cobra.Command) normalize.Fields {
	var f normalize.Fields
	if cmd.Flags().Changed("content") {
		f.Data = &c.data
	}
	if cmd.Flags().Changed("brief") {
		f.Brief = &c.brief
	}
	if cmd.Flags().Changed("description") {
		f.Description = &c.description
	}
	if cmd.Flags().Changed("name") {
		f.Name = &c.name
	}
	if cmd.Flags().Changed("groups") {
		f.Groups = &c.groups
	}
	if cmd.Flags().Changed("tags") {
		f.Tags = &c.tags
	}
	if cmd.Flags().Changed("links") {
		f.Links = &c.links
	}
	if cmd.Flags().Changed("source") {
		f.Source = &c.source
	}
	if cmd.Flags().Changed("versions") {
		f.Versions = &c.versions
	}
	if cmd.Flags().Changed("filename") {
		f.Filename = &c.filename
	}
	return f
}

// searchFlags are the query parameters shared by search and export.
type searchFlags struct {
	categories []string
	all        []string
	tags       []string
	groups     []string
	digest     string
	uuid       string
	sort       []string
	limit      int
	offset     int
	fields     []string
}

func (s *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&s.categories, "scat", nil, "restrict to categories (snippet, solution, reference)")
	cmd.Flags().StringSliceVar(&s.all, "sall", nil, "keywords matched against all fields")
	cmd.Flags().StringSliceVar(&s.tags, "stag", nil, "keywords matched against tags")
	cmd.Flags().StringSliceVar(&s.groups, "sgrp", nil, "keywords matched against groups")
	cmd.Flags().StringVar(&s.digest, "digest", "", "digest prefix selector")
	cmd.Flags().StringVar(&s.uuid, "uuid", "", "uuid prefix selector")
	cmd.Flags().StringSliceVar(&s.sort, "sort", nil, "sort keys, prefix with - for descending")
	cmd.Flags().IntVar(&s.limit, "limit", query.DefaultLimit, "maximum records to return")
	cmd.Flags().IntVar(&s.offset, "offset", 0, "records to skip")
	cmd.Flags().StringSliceVar(&s.fields, "fields", nil, "project results to these fields")
}

func (s *searchFlags) spec(args []string) (query.Spec, error) {
	spec := query.NewSpec()
	cats, err := query.ParseCategories(s.categories)
	if err != nil {
		return spec, err
	}
	spec.Categories = cats
	spec.All = query.ParseKeywords(append(append([]string{}, s.all...), args...))
	spec.Tags = query.ParseKeywords(s.tags)
	spec.Groups = query.ParseKeywords(s.groups)
	spec.Digest = s.digest
	spec.UUID = s.uuid
	spec.Sort = query.ParseFields(s.sort)
	spec.Limit = s.limit
	spec.Offset = s.offset
	spec.Fields = query.ParseFields(s.fields)
	return spec, nil
}

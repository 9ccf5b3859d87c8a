package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
)

// Markdown dumps and parses the Markdown representation.
//
// Layout:
//
//	# <brief> @<group,group>
//
//	> <description>            (two trailing spaces on all but the last line)
//
//	> [1] <link>               (references only, same hard-break rule)
//
//	```shell                   (snippets: data in a fenced block)
//	<data>
//	```
//
//	<data>                     (solutions: data verbatim, it is markdown)
//
//	## Meta
//
//	> category : snippet       (every meta line ends with two spaces to
//	> created  : ...            force a hard line break when rendered)
//
// The digest must survive a dump-then-parse cycle, so the parser recovers
// every byte the dumper wrote; nothing is re-wrapped or re-escaped.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

// markdownSeparator splits resources in a batch dump.
const markdownSeparator = "\n---\n\n"

func (m Markdown) Dump(r *model.Resource) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# ")
	if r.Brief != "" {
		b.WriteString(r.Brief)
		b.WriteString(" ")
	}
	b.WriteString("@")
	b.WriteString(strings.Join(r.SortedGroups(), ","))
	b.WriteString("\n\n")

	if r.Description != "" {
		writeQuoted(&b, strings.Split(r.Description, "\n"))
		b.WriteString("\n")
	}

	switch r.Category {
	case model.Reference:
		lines := make([]string, 0, len(r.Links))
		for i, link := range r.Links {
			lines = append(lines, fmt.Sprintf("[%d] %s", i+1, link))
		}
		writeQuoted(&b, lines)
		b.WriteString("\n")
	case model.Snippet:
		b.WriteString("```shell\n")
		for _, line := range r.Data {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	case model.Solution:
		for _, line := range r.Data {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Meta\n\n")
	meta := []struct{ key, value string }{
		{"category", string(r.Category)},
		{"created", r.Created.Format(model.TimeLayout)},
		{"digest", r.Digest},
		{"filename", r.Filename},
		{"name", r.Name},
		{"source", r.Source},
		{"tags", strings.Join(r.Tags, ",")},
		{"updated", r.Updated.Format(model.TimeLayout)},
		{"uuid", r.UUID},
		{"versions", strings.Join(r.Versions, ",")},
	}
	for _, kv := range meta {
		fmt.Fprintf(&b, "> %-8s : %s  \n", kv.key, kv.value)
	}

	return []byte(b.String()), nil
}

// writeQuoted renders a "> " block with two trailing spaces on all but the
// last line, followed by a blank line.
func writeQuoted(b *strings.Builder, lines []string) {
	for i, line := range lines {
		b.WriteString("> ")
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
}

func (m Markdown) Parse(data []byte) (*model.Resource, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	bodyText, metaText, ok := splitMeta(content)
	if !ok {
		return nil, apperror.UnidentifiableCategory()
	}

	meta := parseMetaBlock(metaText)
	category, err := model.ParseCategory(meta["category"])
	if err != nil {
		return nil, apperror.UnidentifiableCategory()
	}

	r := &model.Resource{
		Category: category,
		Filename: meta["filename"],
		Name:     meta["name"],
		Source:   meta["source"],
		UUID:     meta["uuid"],
		Digest:   meta["digest"],
		Tags:     splitCSV(meta["tags"]),
		Versions: splitCSV(meta["versions"]),
	}
	if v := meta["created"]; v != "" {
		t, err := time.Parse(model.TimeLayout, v)
		if err != nil {
			return nil, fmt.Errorf("format: parsing created timestamp: %w", err)
		}
		r.Created = t
	}
	if v := meta["updated"]; v != "" {
		t, err := time.Parse(model.TimeLayout, v)
		if err != nil {
			return nil, fmt.Errorf("format: parsing updated timestamp: %w", err)
		}
		r.Updated = t
	}

	if err := parseBody(r, bodyText); err != nil {
		return nil, err
	}
	return r, nil
}

func (m Markdown) DumpList(resources []*model.Resource) ([]byte, error) {
	parts := make([]string, 0, len(resources))
	for _, r := range resources {
		out, err := m.Dump(r)
		if err != nil {
			return nil, err
		}
		parts = append(parts, string(out))
	}
	return []byte(strings.Join(parts, markdownSeparator)), nil
}

func (m Markdown) ParseList(data []byte) ([]*model.Resource, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	out := make([]*model.Resource, 0, 4)
	for _, part := range strings.Split(content, markdownSeparator) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := m.Parse([]byte(part))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// splitMeta cuts the document at the last "## Meta" heading.
func splitMeta(content string) (body, meta string, ok bool) {
	idx := strings.LastIndex(content, "\n## Meta\n")
	if idx < 0 {
		if strings.HasPrefix(content, "## Meta\n") {
			return "", content[len("## Meta\n"):], true
		}
		return "", "", false
	}
	return content[:idx], content[idx+len("\n## Meta\n"):], true
}

func parseMetaBlock(text string) map[string]string {
	meta := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(strings.TrimPrefix(line, "> "), "  ")
		key, value, found := strings.Cut(line, " : ")
		if !found {
			continue
		}
		meta[strings.TrimSpace(key)] = value
	}
	return meta
}

// parseBody recovers brief, groups, description and the category-specific
// content section from everything above the meta block.
func parseBody(r *model.Resource, body string) error {
	lines := strings.Split(body, "\n")
	i := skipBlank(lines, 0)
	if i == len(lines) || !strings.HasPrefix(lines[i], "# ") {
		return apperror.UnidentifiableCategory()
	}

	header := lines[i][2:]
	at := strings.LastIndex(header, "@")
	if at < 0 {
		return apperror.UnidentifiableCategory()
	}
	r.Brief = strings.TrimSpace(header[:at])
	r.Groups = splitCSV(header[at+1:])
	i++

	// Quoted description block. It ends at the first blank line; the dumper
	// always terminates the description that way, and scanning any further
	// would swallow quoted lines that belong to the body.
	i = skipBlank(lines, i)
	quoteStart := i
	var descLines []string
	for ; i < len(lines) && strings.HasPrefix(lines[i], "> "); i++ {
		descLines = append(descLines, strings.TrimSuffix(lines[i][2:], "  "))
	}
	if r.Category == model.Solution && i < len(lines) && strings.TrimSpace(lines[i]) != "" {
		// The quoted lines run straight into unquoted text: a solution body
		// quoting something, not a description.
		descLines = nil
		i = quoteStart
	}

	if r.Category == model.Reference {
		// A second quoted block carries the numbered links. Without a
		// description the first block is the links themselves.
		i = skipBlank(lines, i)
		var linkLines []string
		for ; i < len(lines) && strings.HasPrefix(lines[i], "> "); i++ {
			linkLines = append(linkLines, strings.TrimSuffix(lines[i][2:], "  "))
		}
		if len(linkLines) == 0 && allLinkLines(descLines) {
			linkLines, descLines = descLines, nil
		}
		for _, text := range linkLines {
			if linkIndexRe(text) {
				_, text, _ = strings.Cut(text, "] ")
			}
			r.Links = append(r.Links, text)
		}
	}
	r.Description = strings.Join(descLines, "\n")

	// Category-specific data section.
	switch r.Category {
	case model.Snippet:
		for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
			i++
		}
		if i < len(lines) {
			i++ // skip opening fence
			for ; i < len(lines) && !strings.HasPrefix(lines[i], "```"); i++ {
				r.Data = append(r.Data, lines[i])
			}
		}
	case model.Solution:
		rest := lines[i:]
		for len(rest) > 0 && strings.TrimSpace(rest[0]) == "" {
			rest = rest[1:]
		}
		for len(rest) > 0 && strings.TrimSpace(rest[len(rest)-1]) == "" {
			rest = rest[:len(rest)-1]
		}
		r.Data = append(r.Data, rest...)
	}
	return nil
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// allLinkLines reports whether every line is a numbered link entry.
func allLinkLines(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !linkIndexRe(line) {
			return false
		}
	}
	return true
}

// linkIndexRe reports whether text looks like "[N] url".
func linkIndexRe(text string) bool {
	if !strings.HasPrefix(text, "[") {
		return false
	}
	closing := strings.Index(text, "] ")
	if closing < 1 {
		return false
	}
	_, err := strconv.Atoi(text[1:closing])
	return err == nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

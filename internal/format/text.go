package format

import (
	"strings"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
)

// Text is the quick-editing format used by the editor flow. It is a sequence
// of marker-comment sections; the marker lines double as the structural
// anchors the parser needs, so the category is identified from the mandatory
// section marker. A document whose mandatory marker was destroyed while
// editing is rejected with UnidentifiableCategory.
//
// The text format deliberately drops created/updated/uuid/digest and
// description: only data, brief, groups, tags, links, filename and the
// category survive a text round trip.
type Text struct{}

func (Text) Name() string { return "text" }

// Section markers. The mandatory marker names the category.
const (
	markerSnippet  = "# Add mandatory snippet below."
	markerSolution = "# Add mandatory solution below."
	markerLinks    = "# Add mandatory links below one link per line."
	markerBrief    = "# Add optional brief description below."
	markerGroups   = "# Add optional comma separated list of groups below."
	markerTags     = "# Add optional comma separated list of tags below."
	markerOptLinks = "# Add optional links below one link per line."
	markerFilename = "# Add optional filename below."
)

func (Text) Dump(r *model.Resource) ([]byte, error) {
	var b strings.Builder
	section := func(marker string, lines ...string) {
		b.WriteString(marker)
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch r.Category {
	case model.Snippet:
		section(markerSnippet, r.Data...)
	case model.Solution:
		section(markerSolution, r.Data...)
	case model.Reference:
		section(markerLinks, r.Links...)
	}
	section(markerBrief, r.Brief)
	section(markerGroups, strings.Join(r.SortedGroups(), ","))
	section(markerTags, strings.Join(r.Tags, ","))
	if r.Category != model.Reference {
		section(markerOptLinks, r.Links...)
	}
	section(markerFilename, r.Filename)

	return []byte(b.String()), nil
}

func (Text) Parse(data []byte) (*model.Resource, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	sections := splitSections(content)

	r := &model.Resource{}
	switch {
	case hasSection(sections, markerSnippet):
		r.Category = model.Snippet
		r.Data = sections[markerSnippet]
	case hasSection(sections, markerSolution):
		r.Category = model.Solution
		r.Data = sections[markerSolution]
	case hasSection(sections, markerLinks):
		r.Category = model.Reference
		r.Links = sections[markerLinks]
	default:
		return nil, apperror.UnidentifiableCategory()
	}

	r.Brief = strings.Join(sections[markerBrief], " ")
	r.Groups = splitCSV(strings.Join(sections[markerGroups], ","))
	r.Tags = splitCSV(strings.Join(sections[markerTags], ","))
	if r.Category != model.Reference {
		r.Links = sections[markerOptLinks]
	}
	r.Filename = strings.Join(sections[markerFilename], " ")

	return r, nil
}

func (t Text) DumpList(resources []*model.Resource) ([]byte, error) {
	var b strings.Builder
	for _, r := range resources {
		out, err := t.Dump(r)
		if err != nil {
			return nil, err
		}
		b.Write(out)
	}
	return []byte(b.String()), nil
}

// ParseList parses a single resource: the text format has no unambiguous
// batch separator, so importing more than one record requires markdown,
// json or yaml.
func (t Text) ParseList(data []byte) ([]*model.Resource, error) {
	r, err := t.Parse(data)
	if err != nil {
		return nil, err
	}
	return []*model.Resource{r}, nil
}

// splitSections groups the lines under each marker line, with surrounding
// blank lines trimmed. Unknown "#" lines are treated as content, not
// markers, so data containing comments is preserved.
func splitSections(content string) map[string][]string {
	markers := map[string]struct{}{
		markerSnippet: {}, markerSolution: {}, markerLinks: {},
		markerBrief: {}, markerGroups: {}, markerTags: {},
		markerOptLinks: {}, markerFilename: {},
	}

	sections := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(content, "\n") {
		if _, ok := markers[strings.TrimRight(line, " \t")]; ok {
			current = strings.TrimRight(line, " \t")
			sections[current] = []string{}
			continue
		}
		if current == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	for marker, lines := range sections {
		sections[marker] = trimBlankEdges(lines)
	}
	return sections
}

// hasSection checks marker presence only. An empty mandatory section is a
// MandatoryFieldEmpty condition for the Normalizer, not an unidentifiable
// category.
func hasSection(sections map[string][]string, marker string) bool {
	_, ok := sections[marker]
	return ok
}

func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

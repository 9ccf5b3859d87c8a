package format

import "github.com/sakif/snipstore/internal/model"

// TemplateSet holds the pristine per-category editor templates. It is built
// once and injected into the editor flow so tests can substitute their own
// templates; the empty-template check compares edited content against these
// exact bytes.
type TemplateSet struct {
	text map[model.Category]string
}

// DefaultTemplates renders the default template for each category: the text
// dump of an otherwise empty resource in the default group.
func DefaultTemplates() TemplateSet {
	set := TemplateSet{text: make(map[model.Category]string)}
	for _, c := range model.Categories() {
		out, _ := Text{}.Dump(&model.Resource{
			Category: c,
			Groups:   []string{"default"},
		})
		set.text[c] = string(out)
	}
	return set
}

// Text returns the pristine text template for a category.
func (s TemplateSet) Text(category model.Category) string {
	return s.text[category]
}

// IsPristine reports whether content is byte-identical to the unedited
// template of the given category.
func (s TemplateSet) IsPristine(category model.Category, content string) bool {
	return s.text[category] == content
}

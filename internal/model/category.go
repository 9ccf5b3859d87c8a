package model

import "github.com/sakif/snipstore/internal/apperror"

// Category is the kind of stored content. Each category carries its own
// mandatory-field rule: snippets and solutions must have data, references
// must have links.
type Category string

const (
	Snippet   Category = "snippet"
	Solution  Category = "solution"
	Reference Category = "reference"
)

// Categories returns all valid categories in a fixed order.
func Categories() []Category {
	return []Category{Snippet, Solution, Reference}
}

// ParseCategory converts a raw token into a Category.
//
// Only the exact singular tokens are accepted. A plural like "solutions" is
// rejected rather than silently corrected: a typo in a delete filter must
// not quietly select a different set of records.
func ParseCategory(token string) (Category, error) {
	switch Category(token) {
	case Snippet, Solution, Reference:
		return Category(token), nil
	}
	return "", apperror.InvalidCategoryToken(token)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Snippet, Solution, Reference:
		return true
	}
	return false
}

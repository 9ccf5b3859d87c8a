package service

import (
	"context"
	"fmt"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/model"
	"github.com/sakif/snipstore/internal/normalize"
)

// Editor is the external editor collaborator: given an initial template it
// returns the edited content (or the same content when the user changed
// nothing). From the core's perspective it is a pure string function whose
// output is ordinary, possibly malformed, input.
type Editor func(initial string) (string, error)

// CreateFromEditor opens the pristine template of the category in the
// editor and stores the result.
//
// Failure ordering matters here: structural-marker damage is detected first
// (UnidentifiableCategory), then the unedited-template condition
// (EmptyTemplate), and only then the mandatory-field rules, all before any
// persistence call, so a rejected write never touches the store.
func (s *ResourceService) CreateFromEditor(ctx context.Context, category model.Category, templates format.TemplateSet, edit Editor) (*model.Resource, error) {
	if !category.Valid() {
		return nil, apperror.InvalidCategoryToken(string(category))
	}

	edited, err := edit(templates.Text(category))
	if err != nil {
		return nil, fmt.Errorf("running editor: %w", err)
	}

	parsed, err := format.Text{}.Parse([]byte(edited))
	if err != nil {
		return nil, err
	}
	if templates.IsPristine(parsed.Category, edited) {
		return nil, apperror.EmptyTemplate()
	}

	return s.Create(ctx, editedFields(parsed))
}

// UpdateFromEditor resolves the selector, opens the stored resource as text
// in the editor and applies the result as an update.
func (s *ResourceService) UpdateFromEditor(ctx context.Context, sel Selector, templates format.TemplateSet, edit Editor) (*model.Resource, error) {
	stored, err := s.resolveOne(ctx, sel)
	if err != nil {
		return nil, err
	}

	initial, err := format.Text{}.Dump(stored)
	if err != nil {
		return nil, err
	}
	edited, err := edit(string(initial))
	if err != nil {
		return nil, fmt.Errorf("running editor: %w", err)
	}

	parsed, err := format.Text{}.Parse([]byte(edited))
	if err != nil {
		return nil, err
	}
	if templates.IsPristine(parsed.Category, edited) {
		return nil, apperror.EmptyTemplate()
	}

	f := editedFields(parsed)
	f.Category = stored.Category
	return s.Update(ctx, sel, f)
}

// editedFields converts a text-parsed resource into a raw field set. The
// text format cannot express description, name, source or versions, so
// those stay absent and keep their stored values on update.
func editedFields(r *model.Resource) normalize.Fields {
	return normalize.Fields{
		Category: r.Category,
		Data:     &r.Data,
		Brief:    &r.Brief,
		Groups:   &r.Groups,
		Tags:     &r.Tags,
		Links:    &r.Links,
		Filename: &r.Filename,
	}
}

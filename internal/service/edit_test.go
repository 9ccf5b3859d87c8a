package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/format"
	"github.com/sakif/snipstore/internal/model"
)

// editorReturning fakes an editor session that replaces the template with
// fixed content.
func editorReturning(content string) Editor {
	return func(string) (string, error) { return content, nil }
}

// editorAppending fakes a session where the user adds lines under the first
// marker of the template.
func editorAppending(addition string) Editor {
	return func(initial string) (string, error) {
		idx := strings.Index(initial, "\n")
		return initial[:idx+1] + addition + "\n" + initial[idx+1:], nil
	}
}

func TestCreateFromEditor_StoresEditedContent(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.CreateFromEditor(context.Background(), model.Snippet,
		format.DefaultTemplates(), editorAppending("docker ps --all"))
	if err != nil {
		t.Fatalf("CreateFromEditor() error = %v", err)
	}
	if len(r.Data) != 1 || r.Data[0] != "docker ps --all" {
		t.Errorf("Data = %v", r.Data)
	}
	if r.Groups[0] != "default" {
		t.Errorf("Groups = %v, want the template's default group", r.Groups)
	}
}

func TestCreateFromEditor_PristineTemplateRejected(t *testing.T) {
	svc, repo := newTestService(t)
	templates := format.DefaultTemplates()

	// The editor returns the template byte-identical.
	_, err := svc.CreateFromEditor(context.Background(), model.Snippet,
		templates, editorReturning(templates.Text(model.Snippet)))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(repo.items) != 0 {
		t.Error("a rejected editor session must not touch the store")
	}
}

func TestCreateFromEditor_DestroyedMarkerRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateFromEditor(context.Background(), model.Snippet,
		format.DefaultTemplates(), editorReturning("all markers gone\n"))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCreateFromEditor_EmptiedMandatorySection(t *testing.T) {
	svc, _ := newTestService(t)
	templates := format.DefaultTemplates()

	// Markers intact, brief filled in, data still empty: this is a
	// mandatory-field failure, not an unidentifiable category.
	edited := strings.Replace(templates.Text(model.Snippet),
		"# Add optional brief description below.\n",
		"# Add optional brief description below.\nsome brief\n", 1)

	_, err := svc.CreateFromEditor(context.Background(), model.Snippet,
		templates, editorReturning(edited))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "data" {
		t.Errorf("Field = %q, want data (mandatory-field failure)", appErr.Field)
	}
}

func TestCreateFromEditor_InvalidCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateFromEditor(context.Background(), "snippets",
		format.DefaultTemplates(), editorReturning("anything"))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateFromEditor_AppliesEdit(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log")

	edit := func(initial string) (string, error) {
		return strings.Replace(initial, "git log", "git log --oneline", 1), nil
	}

	updated, err := svc.UpdateFromEditor(context.Background(),
		Selector{Digest: created[0].Digest}, format.DefaultTemplates(), edit)
	if err != nil {
		t.Fatalf("UpdateFromEditor() error = %v", err)
	}
	if updated.Data[0] != "git log --oneline" {
		t.Errorf("Data = %v", updated.Data)
	}
	if updated.UUID != created[0].UUID {
		t.Error("editing must keep the uuid")
	}
}

func TestUpdateFromEditor_UnchangedContentIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	created := createN(t, svc, "git log")

	passthrough := func(initial string) (string, error) { return initial, nil }

	updated, err := svc.UpdateFromEditor(context.Background(),
		Selector{Digest: created[0].Digest}, format.DefaultTemplates(), passthrough)
	if err != nil {
		t.Fatalf("UpdateFromEditor() error = %v", err)
	}
	if updated.Digest != created[0].Digest {
		t.Error("an unchanged editor session must be a no-op")
	}
	if !updated.Updated.Equal(created[0].Updated) {
		t.Error("an unchanged editor session must not bump updated")
	}
}

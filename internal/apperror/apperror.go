// Package apperror defines the typed failures the core can produce.
//
// Every failure is recoverable at the call boundary: the core never exits the
// process, it returns an *AppError that the transport layer (HTTP handler or
// CLI) renders as a one-line cause string and the right status / exit code.
// Handlers classify errors with errors.Is against the sentinels below, and
// extract the message with errors.As; see internal/handler/response.go.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAmbiguous  = errors.New("ambiguous")
	ErrNoResults  = errors.New("no results")
	ErrForbidden  = errors.New("forbidden")
)

// AppError carries a sentinel for classification, a human-readable message,
// and optionally the field that caused the failure.
type AppError struct {
	Err     error  // sentinel, checked with errors.Is
	Message string // human-readable cause
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MandatoryFieldEmpty reports a missing category-mandatory field, e.g.
// a snippet without data or a reference without links.
func MandatoryFieldEmpty(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("mandatory field %s is empty", field),
		Field:   field,
	}
}

// EmptyTemplate reports that edited content came back byte-identical to the
// unedited default template, so there is nothing to store.
func EmptyTemplate() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "no content to store because the template was not changed",
	}
}

// UnidentifiableCategory reports that the structural markers identifying the
// content category were destroyed while editing. This is an earlier-stage
// failure than MandatoryFieldEmpty and takes priority over it.
func UnidentifiableCategory() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "content category cannot be identified from the edited template",
	}
}

// NotFound reports that a digest or uuid selector resolved to nothing.
// The identifier is echoed exactly as the caller gave it.
func NotFound(identifier string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("cannot find content with identifier: %s", identifier),
	}
}

// Ambiguous reports that a selector matched more than one record where a
// mutation requires exactly one. The mutation is refused entirely.
func Ambiguous(identifier string, count int) *AppError {
	return &AppError{
		Err:     ErrAmbiguous,
		Message: fmt.Sprintf("identifier %s matches %d records and cannot be used to modify content", identifier, count),
	}
}

// EmptySelector reports an empty digest/uuid selector used against a
// collection where it does not resolve uniquely. Distinct from NotFound.
func EmptySelector() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "cannot use empty identifier to select content",
	}
}

// UniqueViolation reports an integrity violation from the persistence
// gateway. When the violating field is unknown, pass an empty string and the
// transport renders a generic internal error.
func UniqueViolation(field string) *AppError {
	msg := "content could not be stored because of an internal integrity error"
	if field != "" {
		msg = fmt.Sprintf("content already exists with the same %s", field)
	}
	return &AppError{
		Err:     ErrConflict,
		Message: msg,
		Field:   field,
	}
}

func UnknownSortField(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("sort option validation failed for non existent field=%s", field),
		Field:   field,
	}
}

func UnknownProjectionField(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("resource field does not exist: %s", field),
		Field:   field,
	}
}

// UnknownFormat rejects a format token that names no codec.
func UnknownFormat(token string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("unknown format %q: valid formats are text, markdown, json and yaml", token),
		Field:   "format",
	}
}

// InvalidCategoryToken rejects anything that is not an exact singular
// category token, listing the valid ones.
func InvalidCategoryToken(token string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("invalid category token %q: valid categories are snippet, solution and reference", token),
		Field:   "category",
	}
}

// NoResults reports a valid filter that matched nothing. This is different
// from resolving a specific identifier to nothing, which is NotFound.
func NoResults() *AppError {
	return &AppError{
		Err:     ErrNoResults,
		Message: "cannot find content with given search criteria",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

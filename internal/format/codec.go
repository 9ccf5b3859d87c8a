// Package format maps resources to and from their text, Markdown, JSON and
// YAML representations.
//
// The round-trip law every codec obeys: parsing its own dump reproduces the
// resource for every field the format can represent. Markdown, JSON and YAML
// carry the full resource; text is a quick-editing format that only carries
// data, brief, groups, tags, links, filename and the category marker.
// Unicode content passes through every codec byte-for-byte.
package format

import (
	"github.com/sakif/snipstore/internal/apperror"
	"github.com/sakif/snipstore/internal/model"
)

// Codec serializes resources to one representation and parses it back.
type Codec interface {
	// Name returns the format token used on the CLI ("json", "yaml", ...).
	Name() string
	// Dump serializes a single resource.
	Dump(r *model.Resource) ([]byte, error)
	// Parse reads a single resource back.
	Parse(data []byte) (*model.Resource, error)
	// DumpList serializes a batch, used by export.
	DumpList(resources []*model.Resource) ([]byte, error)
	// ParseList reads a batch back, used by import.
	ParseList(data []byte) ([]*model.Resource, error)
}

// ByName returns the codec for a format token. An unknown token is a
// validation failure, not a fallback to some default.
func ByName(name string) (Codec, error) {
	switch name {
	case "text":
		return Text{}, nil
	case "markdown", "md":
		return Markdown{}, nil
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	}
	return nil, apperror.UnknownFormat(name)
}

package format

import (
	"encoding/json"
	"fmt"

	"github.com/sakif/snipstore/internal/model"
)

// JSON dumps and parses resources as indented JSON. The field layout comes
// straight from the struct tags on model.Resource; timestamps serialize as
// RFC 3339 with their offset, which time.Time round-trips exactly.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Dump(r *model.Resource) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("format: dumping json: %w", err)
	}
	return append(out, '\n'), nil
}

func (JSON) Parse(data []byte) (*model.Resource, error) {
	var r model.Resource
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("format: parsing json: %w", err)
	}
	return &r, nil
}

// batch is the export envelope shared by the JSON and YAML codecs:
// a single "data" list holding the resources.
type batch struct {
	Data []*model.Resource `json:"data" yaml:"data"`
}

func (JSON) DumpList(resources []*model.Resource) ([]byte, error) {
	out, err := json.MarshalIndent(batch{Data: resources}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("format: dumping json list: %w", err)
	}
	return append(out, '\n'), nil
}

func (JSON) ParseList(data []byte) ([]*model.Resource, error) {
	var b batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("format: parsing json list: %w", err)
	}
	return b.Data, nil
}

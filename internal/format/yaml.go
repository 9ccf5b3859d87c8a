package format

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sakif/snipstore/internal/model"
)

// YAML dumps and parses resources with gopkg.in/yaml.v3, using the yaml
// struct tags on model.Resource.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Dump(r *model.Resource) ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("format: dumping yaml: %w", err)
	}
	return out, nil
}

func (YAML) Parse(data []byte) (*model.Resource, error) {
	var r model.Resource
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("format: parsing yaml: %w", err)
	}
	return &r, nil
}

func (YAML) DumpList(resources []*model.Resource) ([]byte, error) {
	out, err := yaml.Marshal(batch{Data: resources})
	if err != nil {
		return nil, fmt.Errorf("format: dumping yaml list: %w", err)
	}
	return out, nil
}

func (YAML) ParseList(data []byte) ([]*model.Resource, error) {
	var b batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("format: parsing yaml list: %w", err)
	}
	return b.Data, nil
}

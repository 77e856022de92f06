package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vbind/internal/errors"
)

// LoadData reads a JSON or YAML data file into a model. An empty path
// yields an empty model.
func LoadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E021").WithFile(path).Wrap(err)
	}
	data, err := ParseData(raw)
	if err != nil {
		return nil, errors.FromError(err, "E021").WithFile(path)
	}
	return data, nil
}

// ParseData decodes a JSON or YAML object. JSON is handled by the YAML
// decoder, which reads integers as int instead of float64.
func ParseData(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, errors.New("E021").Wrap(err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("E021").WithDetail("top level value is not an object")
	}

	data := map[string]any{}
	if err := node.Decode(&data); err != nil {
		return nil, errors.New("E021").Wrap(err)
	}
	return data, nil
}

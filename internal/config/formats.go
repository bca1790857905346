package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "go.yaml.in/yaml/v3"
)

// toJSON converts YAML or TOML config to JSON bytes, selected by the file
// extension. Anything else is assumed to be JSON already.
func toJSON(path string, data []byte) ([]byte, error) {
	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
	case ".toml":
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("toml decode: %w", err)
		}
		v = m
	default:
		return data, nil
	}
	if v == nil {
		return []byte("{}"), nil
	}
	j, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("converting to json: %w", err)
	}
	return j, nil
}

// normalize ensures all map keys are strings so the result can be
// JSON-marshaled.
func normalize(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalize(v)
		}
		return m
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	default:
		return in
	}
}

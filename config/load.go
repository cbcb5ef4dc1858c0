package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads settings from a YAML file.
func Load(filename string) (Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse reads settings from a YAML document.
// Nested mappings are flattened into dotted keys, so
//
//	policy:
//	  allowed_methods: GET HEAD
//
// and
//
//	policy.allowed_methods: GET HEAD
//
// result in the same settings.
func Parse(data []byte) (Settings, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return Flatten(doc), nil
}

// Flatten turns a nested mapping into settings with dotted keys.
func Flatten(doc map[string]any) Settings {
	s := make(Settings)
	flatten(s, "", doc)
	return s
}

func flatten(s Settings, prefix string, doc map[string]any) {
	for key, val := range doc {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(s, key, nested)
			continue
		}
		s[key] = val
	}
}

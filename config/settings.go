// Package config holds the flat key/value settings the accelerator components are built from.
//
// Keys are dotted: "policy.*" configures the cache policy, "storage.*" the storage backend,
// "logger.*" the diagnostic logger. Values are strings, booleans, numbers or lists.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

type Settings map[string]any

// String returns the value of key as a string, or def if it is not set.
func (s Settings) String(key, def string) string {
	val, ok := s[key]
	if !ok || val == nil {
		return def
	}
	return stringify(val)
}

// Bool returns the value of key as a boolean, or def if it is not set.
// Strings are true if they are one of "y", "yes", "true" or "t" (case-insensitively);
// everything else is false.
func (s Settings) Bool(key string, def bool) bool {
	val, ok := s[key]
	if !ok || val == nil {
		return def
	}
	if b, ok := val.(bool); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(stringify(val))) {
	case "y", "yes", "true", "t":
		return true
	}
	return false
}

// Int returns the value of key as an int, or def if it is not set.
func (s Settings) Int(key string, def int) (int, error) {
	val, ok := s[key]
	if !ok || val == nil {
		return def, nil
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(stringify(val)))
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return i, nil
}

// List returns the value of key as a list of strings, or def if it is not set.
// A string value is split on whitespace.
func (s Settings) List(key string, def []string) []string {
	val, ok := s[key]
	if !ok || val == nil {
		return def
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, stringify(item))
		}
		return list
	}
	return strings.Fields(stringify(val))
}

// Sub returns the settings under prefix, with the prefix and its dot removed.
func (s Settings) Sub(prefix string) Settings {
	prefix = strings.TrimSuffix(prefix, ".") + "."
	sub := make(Settings)
	for key, val := range s {
		if strings.HasPrefix(key, prefix) {
			sub[strings.TrimPrefix(key, prefix)] = val
		}
	}
	return sub
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(val)
}

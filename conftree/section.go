// Package conftree provides the hierarchical configuration tree consumed by
// the composition engine. A Section is an immutable-by-convention view over a
// nested key/value map, addressable by dot-separated paths, with typed scalar
// access, child-section enumeration, document parsing (YAML, JSON, TOML),
// deep merging, and struct binding.
//
// Sections are the engine's boundary with configuration: "does this path
// exist", "get section", "enumerate children", "bind to a typed value".
// Hosts that already hold a viper tree can hand it over via FromViper.
package conftree

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/golobby/cast"
)

// Section is one node of a configuration tree. The zero value is not usable;
// construct sections with New or one of the parse functions.
type Section struct {
	values map[string]any
}

// New creates a section over the given values. A nil map yields an empty
// section. The map is used as-is; callers that keep a reference must not
// mutate it afterwards.
func New(values map[string]any) *Section {
	if values == nil {
		values = make(map[string]any)
	}
	return &Section{values: values}
}

// Exists reports whether the dot-separated path resolves to any value.
func (s *Section) Exists(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Get returns the raw value at the dot-separated path.
func (s *Section) Get(path string) (any, bool) {
	if s == nil || path == "" {
		return nil, false
	}

	var current any = s.values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Section returns the child section at path. The value must be a mapping;
// a missing key yields ErrKeyNotFound and a scalar yields ErrNotASection.
func (s *Section) Section(path string) (*Section, error) {
	raw, ok := s.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotASection, path)
	}
	return New(m), nil
}

// Sections returns the list elements at path, each as its own section.
// Every element must be a mapping.
func (s *Section) Sections(path string) ([]*Section, error) {
	items, err := s.List(path)
	if err != nil {
		return nil, err
	}

	sections := make([]*Section, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]", ErrNotASection, path, i)
		}
		sections = append(sections, New(m))
	}
	return sections, nil
}

// List returns the slice value at path.
func (s *Section) List(path string) ([]any, error) {
	raw, ok := s.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAList, path)
	}
	return items, nil
}

// String returns the value at path as a string.
func (s *Section) String(path string) (string, error) {
	raw, ok := s.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if str, ok := raw.(string); ok {
		return str, nil
	}
	return fmt.Sprint(raw), nil
}

// Int returns the value at path coerced to an int.
func (s *Section) Int(path string) (int, error) {
	raw, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	converted, err := cast.FromType(fmt.Sprint(raw), reflect.TypeOf(0))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrValueInvalid, path, err)
	}
	n, ok := converted.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrValueInvalid, path)
	}
	return n, nil
}

// Bool returns the value at path coerced to a bool.
func (s *Section) Bool(path string) (bool, error) {
	raw, ok := s.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	converted, err := cast.FromType(fmt.Sprint(raw), reflect.TypeOf(false))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrValueInvalid, path, err)
	}
	b, ok := converted.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrValueInvalid, path)
	}
	return b, nil
}

// Set stores value at the dot-separated path, creating intermediate sections
// as needed. Intermediate scalars are replaced. Set exists for in-code
// configuration construction; parsed trees should be treated as read-only.
func (s *Section) Set(path string, value any) {
	if s == nil || path == "" {
		return
	}

	parts := strings.Split(path, ".")
	current := s.values
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Keys returns the section's immediate child keys in sorted order.
func (s *Section) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of immediate child keys.
func (s *Section) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// IsEmpty reports whether the section has no values.
func (s *Section) IsEmpty() bool {
	return s.Len() == 0
}

// Map returns a deep copy of the section's values.
func (s *Section) Map() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	copied := copyValue(s.values)
	return copied.(map[string]any)
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(typed))
		for k, item := range typed {
			m[k] = copyValue(item)
		}
		return m
	case []any:
		list := make([]any, len(typed))
		for i, item := range typed {
			list[i] = copyValue(item)
		}
		return list
	default:
		return v
	}
}

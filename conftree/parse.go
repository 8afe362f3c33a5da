package conftree

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration document format.
type Format string

const (
	// FormatYAML parses documents with gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"
	// FormatJSON parses documents with encoding/json.
	FormatJSON Format = "json"
	// FormatTOML parses documents with github.com/BurntSushi/toml.
	FormatTOML Format = "toml"
)

// ParseYAML parses a YAML document into a section.
func ParseYAML(data []byte) (*Section, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrParseFailed, err)
	}
	return New(values), nil
}

// ParseJSON parses a JSON document into a section.
func ParseJSON(data []byte) (*Section, error) {
	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrParseFailed, err)
	}
	return New(values), nil
}

// ParseTOML parses a TOML document into a section.
func ParseTOML(data []byte) (*Section, error) {
	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: toml: %w", ErrParseFailed, err)
	}
	return New(values), nil
}

// Parse parses data in the given format.
func Parse(data []byte, format Format) (*Section, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON:
		return ParseJSON(data)
	case FormatTOML:
		return ParseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FormatForPath guesses the document format from a file path or URI
// extension. Unknown extensions default to YAML, the format module sources
// most commonly use.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

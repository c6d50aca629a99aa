// Package metafile loads sidecar metadata patches from JSON, YAML, or TOML
// files. The format is chosen by file extension.
package metafile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported metadata file format")
	ErrNotObject         = errors.New("metadata file does not hold a key-value object")
)

// Format names a patch file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads path from fsys and decodes it into a metadata map.
func Load(fsys afero.Fs, path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Decode(format, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses b as format. An empty document decodes to an empty map.
func Decode(format Format, b []byte) (map[string]any, error) {
	var m map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(b, &m)
	case FormatYAML:
		err = yaml.Unmarshal(b, &m)
	case FormatTOML:
		err = toml.Unmarshal(b, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		var yamlErr *yaml.TypeError
		if errors.As(err, &typeErr) || errors.As(err, &yamlErr) {
			return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
		}
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

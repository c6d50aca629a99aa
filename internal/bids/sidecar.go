package bids

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SidecarIO reads and writes sidecar mappings. It is injected into [Store]
// so the sync logic never touches JSON encoding directly.
type SidecarIO interface {
	// ReadJSON fails with ErrNotFound when path is absent and ErrParse when
	// it does not hold a JSON object.
	ReadJSON(path string) (map[string]any, error)

	// WriteJSON creates or overwrites path.
	WriteJSON(m map[string]any, path string) error
}

// JSONSidecars is the filesystem-backed SidecarIO.
type JSONSidecars struct {
	fs     afero.Fs
	indent string
}

// NewJSONSidecars returns a SidecarIO over fsys that writes objects indented
// by indent spaces (0 for compact output).
func NewJSONSidecars(fsys afero.Fs, indent int) *JSONSidecars {
	return &JSONSidecars{fs: fsys, indent: strings.Repeat(" ", indent)}
}

// ReadJSON implements SidecarIO.
func (j *JSONSidecars) ReadJSON(path string) (map[string]any, error) {
	data, err := afero.ReadFile(j.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s: not an object", ErrParse, path)
	}
	return m, nil
}

// WriteJSON implements SidecarIO.
func (j *JSONSidecars) WriteJSON(m map[string]any, path string) error {
	var (
		data []byte
		err  error
	)
	if j.indent == "" {
		data, err = json.Marshal(m)
	} else {
		data, err = json.MarshalIndent(m, "", j.indent)
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	if err := j.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, filepath.Dir(path), err)
	}
	if err := afero.WriteFile(j.fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return nil
}

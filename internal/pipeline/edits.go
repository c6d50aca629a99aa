package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/bidsmanager/internal/bids"
)

// ErrBadEdit is returned for an edit or assignment that is not key=value.
var ErrBadEdit = errors.New("malformed edit")

// Edit keys that address fields other than entities.
const (
	KeySuffix    = "suffix"    // Modality suffix, e.g. suffix=T2w.
	KeyExtension = "extension" // File extension, e.g. extension=.nii.
	KeyDest      = "dest"      // Target directory, e.g. dest=/data/sub-02/anat.
)

// Edit is one field change applied to every file in a batch. Entity keys may
// be given in short ("acq") or long ("acquisition") form; unrecognized keys
// become extra entities.
type Edit struct {
	Key   string
	Value string
	Unset bool // "key=" removes the entity.
}

func (e Edit) String() string {
	if e.Unset {
		return e.Key + "="
	}
	return e.Key + "=" + e.Value
}

// ParseEdit parses one "key=value" argument.
func ParseEdit(arg string) (Edit, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Edit{}, fmt.Errorf("%w: %q (want key=value)", ErrBadEdit, arg)
	}
	switch key {
	case KeySuffix, KeyExtension, KeyDest:
		if value == "" && key != KeyDest {
			return Edit{}, fmt.Errorf("%w: %s cannot be empty", ErrBadEdit, key)
		}
		return Edit{Key: key, Value: value}, nil
	}
	if e, ok := bids.LookupEntity(key); ok {
		key = e.Key
	}
	return Edit{Key: key, Value: value, Unset: value == ""}, nil
}

// ParseEdits parses every argument, stopping at the first malformed one.
func ParseEdits(args []string) ([]Edit, error) {
	edits := make([]Edit, 0, len(args))
	for _, a := range args {
		e, err := ParseEdit(a)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// ApplyEdits applies edits to img in order. Nothing is written to disk.
func ApplyEdits(img *bids.Image, edits []Edit) error {
	for _, e := range edits {
		var err error
		switch {
		case e.Key == KeySuffix:
			err = img.SetModality(e.Value)
		case e.Key == KeyExtension:
			err = img.SetExtension(e.Value)
		case e.Key == KeyDest:
			img.SetDir(e.Value)
		case e.Unset:
			err = img.UnsetEntity(e.Key)
		default:
			err = img.SetEntity(e.Key, e.Value)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", e, err)
		}
	}
	return nil
}

// ParseAssignments turns "Key=value" arguments into a metadata patch. Values
// are decoded as YAML scalars or flow collections, so "2.5" is a number,
// "true" a boolean, "[0, 0.5]" a list, and anything else a string. An empty
// value becomes null.
func ParseAssignments(args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, a := range args {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (want Key=value)", ErrBadEdit, a)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		patch[key] = v
	}
	return patch, nil
}

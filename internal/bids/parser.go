package bids

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseOptions tunes how basenames are tokenized and classified.
type ParseOptions struct {
	// Strict rejects entity keys outside the grammar instead of keeping them
	// as extras.
	Strict bool

	// Extensions are recognized in addition to the built-in list.
	Extensions []string

	// FunctionalModalities replaces the default set of suffixes that select
	// ClassFunctional when non-empty.
	FunctionalModalities []string
}

// ReadImageFromPath parses path with the default store.
func ReadImageFromPath(path string) (*Image, error) {
	return DefaultStore().Open(path)
}

// ParseBasename parses a basename (no directory) into an unbound image with
// no on-disk location.
//
// The stem is split on "_". The last token is the modality suffix and must
// not contain "-"; every other token is key-value. Unrecognized keys are kept
// in place as extras unless opts.Strict is set. Class requirements are not
// enforced here: a functional image without a task parses, and
// [Image.Basename] reports it incomplete until a task is set.
func ParseBasename(basename string, opts ParseOptions) (*Image, error) {
	stem, ext := SplitExtension(basename, opts.Extensions)
	if stem == "" {
		return nil, fmt.Errorf("%w: %q: empty name", ErrUnparseableFilename, basename)
	}

	tokens := strings.Split(stem, "_")
	modality := tokens[len(tokens)-1]
	if strings.Contains(modality, "-") || !validLabel(modality) {
		return nil, fmt.Errorf("%w: %q: no modality suffix", ErrUnparseableFilename, basename)
	}

	class := ClassImage
	if IsFunctionalModality(modality, opts.FunctionalModalities) {
		class = ClassFunctional
	}
	img := newImage(class, modality)
	img.extension = ext

	anchor := -1
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens[:len(tokens)-1] {
		key, value, ok := strings.Cut(tok, "-")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("%w: %q: malformed token %q", ErrUnparseableFilename, basename, tok)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %q: duplicate entity %q", ErrUnparseableFilename, basename, key)
		}
		seen[key] = true

		// Long names are accepted by setters but never in filenames.
		if e, known := byKey[key]; known {
			v, err := normalizeValue(key, value)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrUnparseableFilename, basename, err)
			}
			img.entities[key] = v
			anchor = e.Position
			continue
		}

		if opts.Strict {
			return nil, fmt.Errorf("%w: %q: unrecognized entity %q", ErrUnparseableFilename, basename, key)
		}
		if !validLabel(key) || !validLabel(value) {
			return nil, fmt.Errorf("%w: %q: malformed token %q", ErrUnparseableFilename, basename, tok)
		}
		img.extras = append(img.extras, extra{key: key, value: value, anchor: anchor})
	}
	return img, nil
}

// Open parses path into an image bound to s. The file itself is not
// touched; its location is recorded so a later update knows what to move.
func (s *Store) Open(path string) (*Image, error) {
	dir, base := filepath.Split(path)
	img, err := ParseBasename(base, s.opts)
	if err != nil {
		return nil, err
	}
	img.SetDir(dir)
	img.location = filepath.Clean(path)
	img.store = s
	return img, nil
}

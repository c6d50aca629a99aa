package bids

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// DefaultIndent is the sidecar indentation used by [NewOSStore].
const DefaultIndent = 2

// Logger is the minimal logging interface the store needs for sync traces.
type Logger interface {
	Debug(verbose bool, format string, args ...interface{})
}

// Store binds images to a filesystem and a sidecar collaborator. It parses
// paths ([Store.Open]), serves metadata, and runs the sync engine
// ([Store.Update]).
type Store struct {
	fs       afero.Fs
	sidecars SidecarIO
	opts     ParseOptions

	log     Logger
	verbose bool
}

// NewStore returns a store over fsys using sidecars for JSON I/O.
func NewStore(fsys afero.Fs, sidecars SidecarIO, opts ParseOptions) *Store {
	return &Store{fs: fsys, sidecars: sidecars, opts: opts}
}

// NewOSStore returns a store over the real filesystem.
func NewOSStore(opts ParseOptions) *Store {
	fsys := afero.NewOsFs()
	return NewStore(fsys, NewJSONSidecars(fsys, DefaultIndent), opts)
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// DefaultStore is the OS-backed store used by images that were not bound to
// one explicitly.
func DefaultStore() *Store {
	defaultOnce.Do(func() { defaultStore = NewOSStore(ParseOptions{}) })
	return defaultStore
}

// SetLogger enables debug traces of sync steps.
func (s *Store) SetLogger(log Logger, verbose bool) {
	s.log = log
	s.verbose = verbose
}

func (s *Store) debug(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Debug(s.verbose, format, args...)
	}
}

// Exists reports whether path exists on the store's filesystem.
func (s *Store) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Stat returns file info for path on the store's filesystem.
func (s *Store) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}

// Options returns the parse options the store was created with.
func (s *Store) Options() ParseOptions { return s.opts }

// Bind attaches img to s. Later metadata reads and updates go through s.
func (s *Store) Bind(img *Image) { img.store = s }

// sidecarFor swaps the extension of path for ".json".
func (s *Store) sidecarFor(path string) string {
	dir, base := filepath.Split(path)
	stem, _ := SplitExtension(base, s.opts.Extensions)
	return filepath.Join(dir, stem+".json")
}

// SidecarPath returns the sidecar path for img's last known location, or for
// its current path when it has none.
func (s *Store) SidecarPath(img *Image) (string, error) {
	if img.location != "" {
		return s.sidecarFor(img.location), nil
	}
	p, err := img.Path()
	if err != nil {
		return "", err
	}
	return sidecarOf(p, img.extension), nil
}

// sidecarOf swaps ext, the image's own extension, at the end of path for
// ".json".
func sidecarOf(path, ext string) string {
	return strings.TrimSuffix(path, ext) + ".json"
}

// Metadata returns a copy of img's metadata, reading the sidecar on first use.
func (s *Store) Metadata(img *Image) (map[string]any, error) {
	if img.metadata != nil {
		return maps.Clone(img.metadata), nil
	}
	path, err := s.SidecarPath(img)
	if err != nil {
		return nil, err
	}
	m, err := s.sidecars.ReadJSON(path)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSidecar, path)
	}
	if err != nil {
		return nil, err
	}
	img.metadata = m
	return maps.Clone(m), nil
}

// MergeMetadata overlays patch (top-level keys only) onto img's metadata.
// A missing sidecar is treated as empty.
func (s *Store) MergeMetadata(img *Image, patch map[string]any) error {
	base, err := s.Metadata(img)
	if errors.Is(err, ErrMissingSidecar) {
		base = map[string]any{}
	} else if err != nil {
		return err
	}
	maps.Copy(base, patch)
	img.metadata = base
	img.dirty = true
	return nil
}

package bids

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"strings"
)

// Class tags an image with the set of fields it requires.
type Class string

const (
	ClassImage      Class = "image"      // Plain image; no required entities.
	ClassFunctional Class = "functional" // Requires task.
)

// Required returns the entity keys an image of class c must carry before a
// basename can be produced.
func (c Class) Required() []string {
	if c == ClassFunctional {
		return []string{KeyTask}
	}
	return nil
}

func (c Class) requires(key string) bool {
	for _, k := range c.Required() {
		if k == key {
			return true
		}
	}
	return false
}

// Field is one key-value segment of a basename as returned by
// [Image.Entities]. Extra is true for keys outside the grammar.
type Field struct {
	Key   string
	Value string
	Extra bool
}

// extra is an entity the grammar does not recognize. anchor is the grammar
// position it follows (-1 for the start of the name).
type extra struct {
	key    string
	value  string
	anchor int
}

// Image is the in-memory record of a BIDS-named file: entity values, modality
// suffix, extension and directory, plus the location it was last seen at on
// disk and its cached sidecar metadata.
//
// Setters only change memory. [Image.Update] writes the new state to disk.
type Image struct {
	class     Class
	modality  string
	extension string
	dir       string
	entities  map[string]string
	extras    []extra

	location string
	metadata map[string]any
	dirty    bool

	store *Store
}

func newImage(class Class, modality string) *Image {
	return &Image{
		class:     class,
		modality:  modality,
		extension: DefaultExtension,
		entities:  make(map[string]string),
	}
}

// NewImage constructs a plain image with the given modality suffix.
func NewImage(modality string, opts ...Option) (*Image, error) {
	return build(ClassImage, modality, opts)
}

// NewFunctionalImage constructs a functional image. task is mandatory; run is
// serialized zero-padded to two digits.
func NewFunctionalImage(modality, task string, run int, opts ...Option) (*Image, error) {
	opts = append([]Option{WithTask(task), WithRun(run)}, opts...)
	return build(ClassFunctional, modality, opts)
}

func build(class Class, modality string, opts []Option) (*Image, error) {
	if !validLabel(modality) {
		return nil, fmt.Errorf("%w: modality %q must be a non-empty alphanumeric suffix", ErrInvalidEntityValue, modality)
	}
	img := newImage(class, modality)
	for _, opt := range opts {
		if err := opt(img); err != nil {
			return nil, err
		}
	}
	// Checked last so WithStore may come after WithExtension.
	if err := img.checkExtension(img.extension); err != nil {
		return nil, err
	}
	return img, nil
}

// Class returns the image's class tag.
func (img *Image) Class() Class { return img.class }

// Modality returns the suffix, e.g. "T1w" or "bold".
func (img *Image) Modality() string { return img.modality }

// Extension returns the extension including the leading dot.
func (img *Image) Extension() string { return img.extension }

// Dir returns the base directory ("" for the working directory).
func (img *Image) Dir() string { return img.dir }

// Location returns the path the image was last synchronized at, or "" when it
// has never been on disk.
func (img *Image) Location() string { return img.location }

// Entity returns the value stored under a grammar key or long name, or under
// an extra key. An extra whose key is spelled like a long name (a parsed
// "subject-01" token) shadows that long name.
func (img *Image) Entity(key string) (string, bool) {
	if k, ok := img.grammarKey(key); ok {
		v, ok := img.entities[k]
		return v, ok
	}
	if i := img.extraIndex(key); i >= 0 {
		return img.extras[i].value, true
	}
	return "", false
}

// grammarKey resolves key to a grammar prefix. Prefixes always resolve; long
// names resolve only when no extra carries that exact key.
func (img *Image) grammarKey(key string) (string, bool) {
	if e, ok := byKey[key]; ok {
		return e.Key, true
	}
	if img.extraIndex(key) >= 0 {
		return "", false
	}
	if e, ok := LookupEntity(key); ok {
		return e.Key, true
	}
	return "", false
}

func (img *Image) extraIndex(key string) int {
	for i, x := range img.extras {
		if x.key == key {
			return i
		}
	}
	return -1
}

func (img *Image) Subject() string     { return img.entities[KeySubject] }
func (img *Image) Session() string     { return img.entities[KeySession] }
func (img *Image) Acquisition() string { return img.entities[KeyAcquisition] }
func (img *Image) TaskName() string    { return img.entities[KeyTask] }

// RunNumber returns the run index and whether one is set.
func (img *Image) RunNumber() (int, bool) {
	v, ok := img.entities[KeyRun]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// Entities returns every present entity in serialization order, extras
// included at their anchors.
func (img *Image) Entities() []Field {
	out := make([]Field, 0, len(img.entities)+len(img.extras))
	out = img.appendExtras(out, -1)
	for _, e := range grammar {
		if v, ok := img.entities[e.Key]; ok {
			out = append(out, Field{Key: e.Key, Value: v})
		}
		out = img.appendExtras(out, e.Position)
	}
	return out
}

func (img *Image) appendExtras(out []Field, anchor int) []Field {
	for _, x := range img.extras {
		if x.anchor == anchor {
			out = append(out, Field{Key: x.key, Value: x.value, Extra: true})
		}
	}
	return out
}

// complete reports ErrIncompleteImage when a field required by the class is
// unset.
func (img *Image) complete() error {
	if img.modality == "" {
		return fmt.Errorf("%w: modality is unset", ErrIncompleteImage)
	}
	for _, key := range img.class.Required() {
		if _, ok := img.entities[key]; !ok {
			e, _ := LookupEntity(key)
			return fmt.Errorf("%w: %s image requires %s", ErrIncompleteImage, img.class, e.Name)
		}
	}
	return nil
}

// Basename builds the filename from current field values:
// grammar-ordered key-value segments, the modality suffix, then the
// extension.
func (img *Image) Basename() (string, error) {
	if err := img.complete(); err != nil {
		return "", err
	}
	fields := img.Entities()
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		parts = append(parts, f.Key+"-"+f.Value)
	}
	parts = append(parts, img.modality)
	return strings.Join(parts, "_") + img.extension, nil
}

// Path joins the base directory and [Image.Basename].
func (img *Image) Path() (string, error) {
	base, err := img.Basename()
	if err != nil {
		return "", err
	}
	return filepath.Join(img.dir, base), nil
}

// --- Setters ---

// SetEntity sets a grammar entity (by key or long name) or, for keys outside
// the grammar, an extra entity appended after every recognized one.
func (img *Image) SetEntity(key, value string) error {
	if k, ok := img.grammarKey(key); ok {
		v, err := normalizeValue(k, value)
		if err != nil {
			return err
		}
		img.entities[k] = v
		return nil
	}
	if !validLabel(key) {
		return fmt.Errorf("%w: entity key %q must be alphanumeric", ErrInvalidEntityValue, key)
	}
	if !validLabel(value) {
		return fmt.Errorf("%w: %s %q must be a non-empty alphanumeric label", ErrInvalidEntityValue, key, value)
	}
	if i := img.extraIndex(key); i >= 0 {
		img.extras[i].value = value
		return nil
	}
	img.extras = append(img.extras, extra{key: key, value: value, anchor: lastPosition()})
	return nil
}

// UnsetEntity removes an entity. Entities required by the image class cannot
// be removed.
func (img *Image) UnsetEntity(key string) error {
	if k, ok := img.grammarKey(key); ok {
		if img.class.requires(k) {
			e, _ := LookupEntity(k)
			return fmt.Errorf("%w: %s is required for %s images", ErrInvalidEntityValue, e.Name, img.class)
		}
		delete(img.entities, k)
		return nil
	}
	if i := img.extraIndex(key); i >= 0 {
		img.extras = append(img.extras[:i], img.extras[i+1:]...)
	}
	return nil
}

func (img *Image) SetSubject(v string) error     { return img.SetEntity(KeySubject, v) }
func (img *Image) SetSession(v string) error     { return img.SetEntity(KeySession, v) }
func (img *Image) SetAcquisition(v string) error { return img.SetEntity(KeyAcquisition, v) }
func (img *Image) SetTaskName(v string) error    { return img.SetEntity(KeyTask, v) }

// SetRunNumber sets the run index; n must be non-negative.
func (img *Image) SetRunNumber(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: run %d must be non-negative", ErrInvalidEntityValue, n)
	}
	img.entities[KeyRun] = formatRun(n)
	return nil
}

// SetModality replaces the suffix. The class tag is not re-derived.
func (img *Image) SetModality(m string) error {
	if !validLabel(m) {
		return fmt.Errorf("%w: modality %q must be a non-empty alphanumeric suffix", ErrInvalidEntityValue, m)
	}
	img.modality = m
	return nil
}

// SetExtension replaces the extension, e.g. ".nii" or ".nii.gz". A
// multi-part extension must be one the bound store splits off whole (the
// built-in list or its ParseOptions.Extensions).
func (img *Image) SetExtension(ext string) error {
	if err := img.checkExtension(ext); err != nil {
		return err
	}
	img.extension = ext
	return nil
}

func (img *Image) checkExtension(ext string) error {
	if !reExtension.MatchString(ext) {
		return fmt.Errorf("%w: extension %q", ErrInvalidEntityValue, ext)
	}
	if !recognizedExtension(ext, img.boundStore().opts.Extensions) {
		return fmt.Errorf("%w: extension %q is not recognized by the parser", ErrInvalidEntityValue, ext)
	}
	return nil
}

// SetDir moves the image to another base directory on the next update.
func (img *Image) SetDir(dir string) {
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	img.dir = dir
}

// --- Metadata and sync (delegated to the bound store) ---

// SetMetadata replaces the metadata held in memory. It is written to the
// sidecar on the next update.
func (img *Image) SetMetadata(m map[string]any) {
	if m == nil {
		m = map[string]any{}
	}
	img.metadata = maps.Clone(m)
	img.dirty = true
}

// Metadata returns the sidecar metadata, reading and caching it on first
// use.
func (img *Image) Metadata() (map[string]any, error) {
	return img.boundStore().Metadata(img)
}

// MergeMetadata overlays patch onto the current metadata (an absent sidecar
// counts as empty). The result is written on the next update.
func (img *Image) MergeMetadata(patch map[string]any) error {
	return img.boundStore().MergeMetadata(img, patch)
}

// SidecarPath returns the JSON sidecar path for the image's last known
// location, or for its current path if it has never been synchronized.
func (img *Image) SidecarPath() (string, error) {
	return img.boundStore().SidecarPath(img)
}

// Update synchronizes the file and its sidecar with the current field
// values. See [Store.Update].
func (img *Image) Update(mode SyncMode) error {
	return img.boundStore().Update(img, mode)
}

func (img *Image) boundStore() *Store {
	if img.store == nil {
		return DefaultStore()
	}
	return img.store
}

package bids

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Entity describes one recognized filename entity. Position is the entity's
// index in serialization order.
type Entity struct {
	Key      string // Filename prefix without the dash, e.g. "acq".
	Name     string // Long name, e.g. "acquisition".
	Position int
}

// Recognized entity keys.
const (
	KeySubject        = "sub"
	KeySession        = "ses"
	KeyAcquisition    = "acq"
	KeyTask           = "task"
	KeyContrast       = "ce"
	KeyReconstruction = "rec"
	KeyDirection      = "dir"
	KeyRun            = "run"
	KeyModality       = "mod"
	KeyEcho           = "echo"
)

// grammar is the ordered set of recognized entities. Order matters: it is
// the order in which entities appear in a generated basename.
var grammar = []Entity{
	{Key: KeySubject, Name: "subject"},
	{Key: KeySession, Name: "session"},
	{Key: KeyAcquisition, Name: "acquisition"},
	{Key: KeyTask, Name: "task"},
	{Key: KeyContrast, Name: "ceagent"},
	{Key: KeyReconstruction, Name: "reconstruction"},
	{Key: KeyDirection, Name: "direction"},
	{Key: KeyRun, Name: "run"},
	{Key: KeyModality, Name: "modality"},
	{Key: KeyEcho, Name: "echo"},
}

var (
	byKey  = make(map[string]Entity, len(grammar))
	byName = make(map[string]Entity, len(grammar))
)

func init() {
	for i := range grammar {
		grammar[i].Position = i
		byKey[grammar[i].Key] = grammar[i]
		byName[grammar[i].Name] = grammar[i]
	}
}

// Entities returns the recognized entities in serialization order.
func Entities() []Entity {
	return append([]Entity(nil), grammar...)
}

// LookupEntity resolves a filename prefix ("acq") or long name
// ("acquisition") to its grammar entry.
func LookupEntity(key string) (Entity, bool) {
	if e, ok := byKey[key]; ok {
		return e, true
	}
	e, ok := byName[strings.ToLower(key)]
	return e, ok
}

// lastPosition anchors entities appended by callers after every recognized
// entity.
func lastPosition() int { return len(grammar) - 1 }

// DefaultExtension is used by constructed images that do not set one.
const DefaultExtension = ".nii.gz"

// knownExtensions lists multi-part and single-part extensions recognized when
// splitting a basename. Matching is longest-first, so ".nii.gz" wins over
// ".gz".
var knownExtensions = []string{
	".nii.gz", ".nii",
	".json",
	".tsv.gz", ".tsv",
	".bval", ".bvec",
	".edf", ".bdf",
	".vhdr", ".vmrk", ".eeg",
	".set", ".fdt",
	".mat", ".txt",
	".gz",
}

// SplitExtension splits basename into stem and extension using the longest
// known extension (plus any caller-supplied extras). When nothing matches,
// the final dot segment is treated as the extension.
func SplitExtension(basename string, extra []string) (stem, ext string) {
	for _, list := range [][]string{knownExtensions, extra} {
		for _, e := range list {
			if len(e) > len(ext) && len(basename) > len(e) && strings.HasSuffix(basename, e) {
				ext = e
			}
		}
	}
	if ext == "" {
		ext = filepath.Ext(basename)
		if ext == basename {
			ext = ""
		}
	}
	return strings.TrimSuffix(basename, ext), ext
}

// recognizedExtension reports whether SplitExtension recovers ext whole from
// a name ending in it.
func recognizedExtension(ext string, extra []string) bool {
	_, got := SplitExtension("x"+ext, extra)
	return got == ext
}

// defaultFunctional holds the modality suffixes that select ClassFunctional.
var defaultFunctional = map[string]bool{
	"bold":  true,
	"cbv":   true,
	"phase": true,
	"sbref": true,
}

// IsFunctionalModality reports whether modality selects the functional image
// class. A non-empty override replaces the default set.
func IsFunctionalModality(modality string, override []string) bool {
	if len(override) == 0 {
		return defaultFunctional[modality]
	}
	for _, m := range override {
		if m == modality {
			return true
		}
	}
	return false
}

var (
	reLabel     = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	reIndex     = regexp.MustCompile(`^[0-9]+$`)
	reExtension = regexp.MustCompile(`^(\.[A-Za-z0-9]+)+$`)
)

func validLabel(s string) bool { return reLabel.MatchString(s) }

// normalizeValue validates value for key. Run values must be non-negative
// integers and are zero-padded to two digits; every other value must be a
// non-empty alphanumeric label.
func normalizeValue(key, value string) (string, error) {
	if key == KeyRun {
		if !reIndex.MatchString(value) {
			return "", fmt.Errorf("%w: run %q must be a non-negative integer", ErrInvalidEntityValue, value)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: run %q: %v", ErrInvalidEntityValue, value, err)
		}
		return formatRun(n), nil
	}
	if !validLabel(value) {
		return "", fmt.Errorf("%w: %s %q must be a non-empty alphanumeric label", ErrInvalidEntityValue, key, value)
	}
	return value, nil
}

func formatRun(n int) string { return fmt.Sprintf("%02d", n) }

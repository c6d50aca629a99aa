package bids

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SyncMode selects how [Store.Update] relocates a file whose path changed.
type SyncMode string

const (
	Move SyncMode = "move" // Rename; the old location stops existing.
	Copy SyncMode = "copy" // Copy bytes; the old location is left in place.
)

// SyncPlan describes what an update would do, without doing it.
type SyncPlan struct {
	Mode SyncMode

	From string // Current on-disk path.
	To   string // Path derived from field values.

	SidecarFrom string
	SidecarTo   string

	RelocateSidecar bool // An existing sidecar follows the image.
	WriteSidecar    bool // In-memory metadata is written to SidecarTo.
}

// Changed reports whether the image itself moves.
func (p SyncPlan) Changed() bool { return p.From != p.To }

// Plan computes the sync plan for img. A never-synchronized image adopts its
// current path as its location.
func (s *Store) Plan(img *Image, mode SyncMode) (SyncPlan, error) {
	if mode != Move && mode != Copy {
		return SyncPlan{}, fmt.Errorf("unknown sync mode %q", mode)
	}
	to, err := img.Path()
	if err != nil {
		return SyncPlan{}, err
	}
	from := img.location
	if from == "" {
		from = to
	}

	p := SyncPlan{
		Mode:         mode,
		From:         from,
		To:           to,
		SidecarFrom:  s.sidecarFor(from),
		SidecarTo:    sidecarOf(to, img.extension),
		WriteSidecar: img.dirty,
	}
	if p.SidecarTo == p.To {
		// A .json image is its own sidecar.
		p.SidecarFrom, p.SidecarTo, p.WriteSidecar = "", "", false
		return p, nil
	}
	if p.SidecarFrom != p.SidecarTo {
		exists, err := s.Exists(p.SidecarFrom)
		if err != nil {
			return SyncPlan{}, fmt.Errorf("%w: stat %s: %w", ErrIO, p.SidecarFrom, err)
		}
		p.RelocateSidecar = exists
	}
	return p, nil
}

// Update synchronizes img with the filesystem:
//
//  1. compute the new path from field values;
//  2. if it differs from the last known location, rename (Move) or copy
//     (Copy) the image there; the destination must not already hold a
//     different file;
//  3. relocate an existing sidecar the same way, then write in-memory
//     metadata to the new sidecar if any was supplied;
//  4. record the new location and drop the metadata cache if the path moved.
//
// A failure in step 2 aborts before any sidecar is touched. A failure in
// step 3 leaves the image at its new path; nothing is rolled back, so callers
// should re-inspect [Image.Location] before retrying.
func (s *Store) Update(img *Image, mode SyncMode) error {
	p, err := s.Plan(img, mode)
	if err != nil {
		return err
	}

	if p.Changed() {
		if err := s.relocate(p.From, p.To, mode); err != nil {
			return err
		}
		s.debug("%s %s -> %s", mode, p.From, p.To)
	}
	img.location = p.To

	if p.RelocateSidecar {
		if err := s.relocate(p.SidecarFrom, p.SidecarTo, mode); err != nil {
			return err
		}
		s.debug("%s sidecar %s -> %s", mode, p.SidecarFrom, p.SidecarTo)
	}
	if p.WriteSidecar {
		if err := s.sidecars.WriteJSON(img.metadata, p.SidecarTo); err != nil {
			return err
		}
		img.dirty = false
		s.debug("wrote sidecar %s", p.SidecarTo)
	}
	if p.Changed() {
		img.metadata = nil
	}
	return nil
}

// relocate renames or copies src to dst. dst may only exist if it is the
// same file as src (e.g. a case-only rename on a case-insensitive volume).
func (s *Store) relocate(src, dst string, mode SyncMode) error {
	srcInfo, err := s.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, src, err)
	}
	dstInfo, err := s.fs.Stat(dst)
	switch {
	case err == nil:
		if mode == Copy || !os.SameFile(srcInfo, dstInfo) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: stat %s: %w", ErrIO, dst, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, filepath.Dir(dst), err)
	}
	if mode == Copy {
		return s.copyFile(src, dst, srcInfo.Mode().Perm())
	}
	if err := s.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrIO, src, err)
	}
	return nil
}

// copyFile streams src into a temporary file beside dst and renames it into
// place, so dst never holds a partial copy.
func (s *Store) copyFile(src, dst string, perm fs.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	in, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIO, src, err)
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"."+uuid.NewString()+".tmp")
	out, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, tmp, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		s.fs.Remove(tmp)
		return fmt.Errorf("%w: copy %s: %w", ErrIO, src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		s.fs.Remove(tmp)
		return fmt.Errorf("%w: sync %s: %w", ErrIO, tmp, err)
	}
	if err := out.Close(); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("%w: close %s: %w", ErrIO, tmp, err)
	}
	if err := s.fs.Rename(tmp, dst); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %w", ErrIO, tmp, err)
	}
	return nil
}

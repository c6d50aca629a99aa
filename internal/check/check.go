// Package check provides per-file diagnostics (the check command): filename
// grammar, canonical entity order, sidecar presence, and sidecar agreement
// with the filename.
package check

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/backmassage/bidsmanager/internal/bids"
)

// Sentinel errors carried by findings that are not already bids errors.
var (
	ErrNonCanonical  = errors.New("basename is not in canonical entity order")
	ErrTaskMismatch  = errors.New("sidecar TaskName disagrees with task entity")
	ErrSidecarFields = errors.New("sidecar field has an unexpected type")
)

// Logger is the subset of logging.Logger used by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Severity ranks a finding. Only SeverityError fails a check run.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityError
)

// Finding is one problem found with a file.
type Finding struct {
	Path     string
	Severity Severity
	Err      error
}

func (f Finding) String() string { return fmt.Sprintf("%s: %v", f.Path, f.Err) }

// CheckFile runs every diagnostic against path and returns what it found.
// A nil result means the file is clean.
func CheckFile(s *bids.Store, path string) []Finding {
	var out []Finding
	add := func(sev Severity, err error) {
		out = append(out, Finding{Path: path, Severity: sev, Err: err})
	}

	img, err := s.Open(path)
	if err != nil {
		add(SeverityError, err)
		return out
	}
	if ok, err := s.Exists(path); err != nil {
		add(SeverityError, fmt.Errorf("%w: %v", bids.ErrIO, err))
		return out
	} else if !ok {
		add(SeverityError, fmt.Errorf("%w: %s", bids.ErrNotFound, path))
		return out
	}

	if base, err := img.Basename(); err != nil {
		add(SeverityError, err)
	} else if base != filepath.Base(path) {
		add(SeverityWarn, fmt.Errorf("%w: want %s", ErrNonCanonical, base))
	}

	if img.Extension() == ".json" {
		return out
	}
	m, err := img.Metadata()
	switch {
	case errors.Is(err, bids.ErrMissingSidecar):
		add(SeverityWarn, err)
		return out
	case err != nil:
		add(SeverityError, err)
		return out
	}

	acq, err := bids.DecodeAcquisition(m)
	if err != nil {
		add(SeverityWarn, fmt.Errorf("%w: %v", ErrSidecarFields, err))
		return out
	}
	if task := img.TaskName(); acq.TaskName != "" && task != "" && acq.TaskName != task {
		add(SeverityWarn, fmt.Errorf("%w: %q vs task-%s", ErrTaskMismatch, acq.TaskName, task))
	}
	return out
}

// Report summarizes a check run.
type Report struct {
	Files    int
	Clean    int
	Warnings int
	Errors   int
}

// Failed reports whether any file had an error-level finding.
func (r Report) Failed() bool { return r.Errors > 0 }

// RunCheck checks every path, logs each finding, and returns the totals.
func RunCheck(s *bids.Store, paths []string, log Logger, verbose bool) Report {
	var r Report
	for _, p := range paths {
		r.Files++
		findings := CheckFile(s, p)
		if len(findings) == 0 {
			r.Clean++
			log.Debug(verbose, "ok: %s", p)
			continue
		}
		for _, f := range findings {
			switch f.Severity {
			case SeverityError:
				r.Errors++
				log.Error("%s", f)
			default:
				r.Warnings++
				log.Warn("%s", f)
			}
		}
	}
	if r.Errors == 0 {
		log.Success("Checked %d file(s): %d clean, %d warning(s)", r.Files, r.Clean, r.Warnings)
	} else {
		log.Info("Checked %d file(s): %d clean, %d warning(s), %d error(s)", r.Files, r.Clean, r.Warnings, r.Errors)
	}
	return r
}

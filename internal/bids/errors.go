package bids

import "errors"

// Sentinel errors. Operations wrap these with context, so callers should
// test with errors.Is rather than comparing directly.
var (
	// ErrUnparseableFilename is returned by the parser when a basename has no
	// modality suffix, carries a malformed token, or (in strict mode) uses an
	// entity key outside the grammar.
	ErrUnparseableFilename = errors.New("unparseable BIDS filename")

	// ErrIncompleteImage is returned when a basename is requested while a
	// field required by the image class is unset.
	ErrIncompleteImage = errors.New("incomplete image")

	// ErrInvalidEntityValue is returned by setters and constructor options
	// given an empty or malformed value.
	ErrInvalidEntityValue = errors.New("invalid entity value")

	// ErrMissingSidecar is returned by Metadata when nothing is cached and no
	// sidecar file exists.
	ErrMissingSidecar = errors.New("missing sidecar")

	// ErrDestinationExists is returned by Update when the target path is
	// already occupied by a different file.
	ErrDestinationExists = errors.New("destination exists")

	// ErrIO wraps underlying copy, rename, read, and write failures.
	ErrIO = errors.New("i/o failure")

	// ErrNotFound is returned by SidecarIO.ReadJSON when the file is absent.
	ErrNotFound = errors.New("not found")

	// ErrParse is returned by SidecarIO.ReadJSON when the file is not a JSON
	// object.
	ErrParse = errors.New("invalid JSON")
)

// Package bids parses, rebuilds, and synchronizes BIDS-named neuroimaging
// files and their JSON sidecars.
//
// A filename such as "sub-01_ses-pre_acq-contrast_run-05_FLAIR.nii.gz" is a
// sequence of key-value entities in a fixed order, a modality suffix, and an
// extension. [ParseBasename] and [Store.Open] turn it into an [Image]; the
// setters change field values in memory; [Image.Update] renames or copies
// the file (and its sidecar) to the path derived from the new values.
//
// Layout:
//   - grammar.go: recognized entities, their order, known extensions
//   - image.go, options.go: the Image record and its constructors
//   - parser.go: basename and path parsing
//   - store.go, sync.go: metadata cache and the sync engine
//   - sidecar.go: the JSON collaborator
//   - metadata.go: typed decoding of common sidecar fields
package bids

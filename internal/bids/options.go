package bids

import "fmt"

// Option configures an image built by [NewImage] or [NewFunctionalImage].
type Option func(*Image) error

func WithSubject(v string) Option     { return func(img *Image) error { return img.SetSubject(v) } }
func WithSession(v string) Option     { return func(img *Image) error { return img.SetSession(v) } }
func WithAcquisition(v string) Option { return func(img *Image) error { return img.SetAcquisition(v) } }
func WithTask(v string) Option        { return func(img *Image) error { return img.SetTaskName(v) } }
func WithRun(n int) Option            { return func(img *Image) error { return img.SetRunNumber(n) } }

// WithEntity sets any entity, recognized or extra.
func WithEntity(key, value string) Option {
	return func(img *Image) error { return img.SetEntity(key, value) }
}

// WithExtension sets the extension. It is validated once every option has
// been applied.
func WithExtension(ext string) Option {
	return func(img *Image) error {
		img.extension = ext
		return nil
	}
}

func WithDir(dir string) Option {
	return func(img *Image) error {
		img.SetDir(dir)
		return nil
	}
}

// WithMetadata supplies sidecar content in memory; the sidecar is created on
// the first update.
func WithMetadata(m map[string]any) Option {
	return func(img *Image) error {
		img.SetMetadata(m)
		return nil
	}
}

// WithStore binds the image to s instead of the default OS-backed store.
func WithStore(s *Store) Option {
	return func(img *Image) error {
		if s == nil {
			return fmt.Errorf("bids: nil store")
		}
		img.store = s
		return nil
	}
}

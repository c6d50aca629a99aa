package bids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These run against the real filesystem through the default store.

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestWriteChangedAcquisition(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run-05_FLAIR.nii.gz")
	dst := filepath.Join(dir, "acq-contrast_run-05_FLAIR.nii.gz")
	touch(t, src)

	img, err := ReadImageFromPath(src)
	require.NoError(t, err)
	require.NoError(t, img.SetAcquisition("contrast"))
	require.NoError(t, img.Update(Move))

	assert.False(t, fileExists(src))
	assert.True(t, fileExists(dst))
}

func TestWriteMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run-05_FLAIR.nii.gz")
	touch(t, src)

	want := map[string]any{"the_answer": 42.0}
	sidecars := NewJSONSidecars(afero.NewOsFs(), DefaultIndent)
	require.NoError(t, sidecars.WriteJSON(map[string]any{"the_answer": 42}, filepath.Join(dir, "run-05_FLAIR.json")))

	img, err := ReadImageFromPath(src)
	require.NoError(t, err)
	m, err := img.Metadata()
	require.NoError(t, err)
	assert.Equal(t, want, m)

	require.NoError(t, img.SetRunNumber(6))
	require.NoError(t, img.Update(Copy))
	m, err = img.Metadata()
	require.NoError(t, err)
	assert.Equal(t, want, m)
	sidecar, err := img.SidecarPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-06_FLAIR.json"), sidecar)
	assert.True(t, fileExists(sidecar))
	assert.True(t, fileExists(filepath.Join(dir, "run-05_FLAIR.json")))

	prev := sidecar
	require.NoError(t, img.SetRunNumber(7))
	require.NoError(t, img.Update(Move))
	m, err = img.Metadata()
	require.NoError(t, err)
	assert.Equal(t, want, m)
	assert.False(t, fileExists(prev))
	assert.False(t, fileExists(filepath.Join(dir, "run-06_FLAIR.nii.gz")))
	assert.True(t, fileExists(filepath.Join(dir, "run-07_FLAIR.nii.gz")))
	assert.True(t, fileExists(filepath.Join(dir, "run-07_FLAIR.json")))
}

func TestAddSidecarMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sub-9000_ses-gigawatts_angio.nii.gz")
	touch(t, src)

	img, err := ReadImageFromPath(src)
	require.NoError(t, err)
	assert.Equal(t, "9000", img.Subject())
	assert.Equal(t, "gigawatts", img.Session())

	_, err = img.Metadata()
	assert.ErrorIs(t, err, ErrMissingSidecar)

	require.NoError(t, img.MergeMetadata(map[string]any{"Manufacturer": "DeLorean"}))
	require.NoError(t, img.Update(Move))

	b, err := os.ReadFile(filepath.Join(dir, "sub-9000_ses-gigawatts_angio.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Manufacturer": "DeLorean"}`, string(b))
}

func TestUpdate_CopyPreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sub-01_T1w.nii.gz")
	require.NoError(t, os.WriteFile(src, []byte("voxels"), 0o600))

	img, err := ReadImageFromPath(src)
	require.NoError(t, err)
	require.NoError(t, img.SetSubject("02"))
	require.NoError(t, img.Update(Copy))

	fi, err := os.Stat(filepath.Join(dir, "sub-02_T1w.nii.gz"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

package bids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_ChangeAcquisition(t *testing.T) {
	img, err := NewImage("T1w", WithAcquisition("contrast"))
	require.NoError(t, err)

	basename, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "acq-contrast_T1w.nii.gz", basename)

	require.NoError(t, img.SetAcquisition("postcontrast"))
	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(basename, "contrast", "postcontrast", 1), got)
	assert.Equal(t, "acq-postcontrast_T1w.nii.gz", got)
}

func TestFunctionalImage_ChangeTaskName(t *testing.T) {
	img, err := NewFunctionalImage("bold", "prediction", 3)
	require.NoError(t, err)
	assert.Equal(t, ClassFunctional, img.Class())

	basename, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "task-prediction_run-03_bold.nii.gz", basename)

	require.NoError(t, img.SetTaskName("weatherprediction"))
	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(basename, "prediction", "weatherprediction", 1), got)
}

func TestFunctionalImage_RequiresTask(t *testing.T) {
	img := newImage(ClassFunctional, "bold")
	_, err := img.Basename()
	assert.ErrorIs(t, err, ErrIncompleteImage)

	_, err = img.Path()
	assert.ErrorIs(t, err, ErrIncompleteImage)

	_, err = NewFunctionalImage("bold", "", 1)
	assert.ErrorIs(t, err, ErrInvalidEntityValue)

	fn, err := NewFunctionalImage("bold", "rest", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, fn.UnsetEntity(KeyTask), ErrInvalidEntityValue)
}

func TestImage_GrammarOrder(t *testing.T) {
	img, err := NewImage("T1w",
		WithRun(2),
		WithEntity("echo", "1"),
		WithAcquisition("mprage"),
		WithSession("pre"),
		WithSubject("01"),
		WithEntity("rec", "norm"),
	)
	require.NoError(t, err)

	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "sub-01_ses-pre_acq-mprage_rec-norm_run-02_echo-1_T1w.nii.gz", got)
}

// Mutating one entity must substitute exactly that token and leave every
// other token untouched.
func TestImage_MutationSubstitutesOneToken(t *testing.T) {
	cases := []struct {
		key   string
		value string
		token string
		want  string
	}{
		{KeySubject, "02", "sub-01", "sub-02"},
		{KeySession, "post", "ses-pre", "ses-post"},
		{KeyAcquisition, "fast", "acq-slow", "acq-fast"},
		{KeyTask, "nback", "task-rest", "task-nback"},
		{KeyRun, "7", "run-03", "run-07"},
		{"echo", "2", "echo-1", "echo-2"},
		{"subject", "abc", "sub-01", "sub-abc"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			img, err := NewFunctionalImage("bold", "rest", 3,
				WithSubject("01"), WithSession("pre"), WithAcquisition("slow"), WithEntity("echo", "1"))
			require.NoError(t, err)
			before, err := img.Basename()
			require.NoError(t, err)

			require.NoError(t, img.SetEntity(tc.key, tc.value))
			after, err := img.Basename()
			require.NoError(t, err)

			assert.Equal(t, strings.Replace(before, tc.token, tc.want, 1), after)
		})
	}
}

func TestImage_SetterValidation(t *testing.T) {
	img, err := NewImage("T1w")
	require.NoError(t, err)

	for _, bad := range []string{"", "a-b", "a_b", "a.b", "a b", "ü"} {
		assert.ErrorIs(t, img.SetAcquisition(bad), ErrInvalidEntityValue, "value %q", bad)
	}
	assert.ErrorIs(t, img.SetEntity(KeyRun, "x1"), ErrInvalidEntityValue)
	assert.ErrorIs(t, img.SetRunNumber(-1), ErrInvalidEntityValue)
	assert.ErrorIs(t, img.SetModality("T1-w"), ErrInvalidEntityValue)
	assert.ErrorIs(t, img.SetExtension("nii"), ErrInvalidEntityValue)
	assert.ErrorIs(t, img.SetEntity("bad-key", "x"), ErrInvalidEntityValue)

	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "T1w.nii.gz", got, "failed setters must not change state")

	_, err = NewImage("")
	assert.ErrorIs(t, err, ErrInvalidEntityValue)
}

func TestImage_RunNumber(t *testing.T) {
	img, err := NewImage("FLAIR")
	require.NoError(t, err)

	_, ok := img.RunNumber()
	assert.False(t, ok)

	require.NoError(t, img.SetRunNumber(6))
	n, ok := img.RunNumber()
	assert.True(t, ok)
	assert.Equal(t, 6, n)

	require.NoError(t, img.SetRunNumber(123))
	got, _ := img.Basename()
	assert.Equal(t, "run-123_FLAIR.nii.gz", got)
}

func TestImage_ExtraEntities(t *testing.T) {
	img, err := NewImage("T1w", WithSubject("01"), WithEntity("part", "mag"))
	require.NoError(t, err)

	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "sub-01_part-mag_T1w.nii.gz", got)

	v, ok := img.Entity("part")
	assert.True(t, ok)
	assert.Equal(t, "mag", v)

	require.NoError(t, img.SetEntity("part", "phase"))
	got, _ = img.Basename()
	assert.Equal(t, "sub-01_part-phase_T1w.nii.gz", got)

	require.NoError(t, img.UnsetEntity("part"))
	got, _ = img.Basename()
	assert.Equal(t, "sub-01_T1w.nii.gz", got)
}

func TestImage_ExtraSpelledAsLongName(t *testing.T) {
	img, err := ParseBasename("subject-01_sub-02_T1w.nii.gz", ParseOptions{})
	require.NoError(t, err)

	v, ok := img.Entity("subject")
	assert.True(t, ok)
	assert.Equal(t, "01", v)
	v, _ = img.Entity("sub")
	assert.Equal(t, "02", v)

	require.NoError(t, img.SetEntity("subject", "05"))
	got, err := img.Basename()
	require.NoError(t, err)
	assert.Equal(t, "subject-05_sub-02_T1w.nii.gz", got)
	assert.Equal(t, "02", img.Subject())

	require.NoError(t, img.UnsetEntity("subject"))
	got, _ = img.Basename()
	assert.Equal(t, "sub-02_T1w.nii.gz", got)
	v, _ = img.Entity("subject")
	assert.Equal(t, "02", v)
}

func TestImage_UnsetEntity(t *testing.T) {
	img, err := NewImage("T1w", WithSubject("01"), WithAcquisition("x"))
	require.NoError(t, err)

	require.NoError(t, img.UnsetEntity("acquisition"))
	got, _ := img.Basename()
	assert.Equal(t, "sub-01_T1w.nii.gz", got)
	assert.Empty(t, img.Acquisition())
}

func TestImage_PathAndDir(t *testing.T) {
	img, err := NewImage("T1w", WithSubject("01"), WithDir("/data/sub-01/anat/"))
	require.NoError(t, err)

	assert.Equal(t, "/data/sub-01/anat", img.Dir())
	p, err := img.Path()
	require.NoError(t, err)
	assert.Equal(t, "/data/sub-01/anat/sub-01_T1w.nii.gz", p)

	img.SetDir("")
	p, _ = img.Path()
	assert.Equal(t, "sub-01_T1w.nii.gz", p)
}

func TestImage_Extension(t *testing.T) {
	img, err := NewImage("dwi", WithExtension(".bval"))
	require.NoError(t, err)
	got, _ := img.Basename()
	assert.Equal(t, "dwi.bval", got)
}

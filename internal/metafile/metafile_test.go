package metafile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/p/patch.json": `{"TaskName": "rest", "RepetitionTime": 2.5}`,
		"/p/patch.yaml": "TaskName: rest\nRepetitionTime: 2.5\n",
		"/p/patch.yml":  "TaskName: rest\nRepetitionTime: 2.5\n",
		"/p/patch.toml": "TaskName = \"rest\"\nRepetitionTime = 2.5\n",
	}
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(body), 0o644))
	}
	for path := range files {
		t.Run(path, func(t *testing.T) {
			m, err := Load(fsys, path)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"TaskName": "rest", "RepetitionTime": 2.5}, m)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/p/list.json", []byte(`[1, 2]`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/p/list.yaml", []byte("- 1\n- 2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/p/bad.toml", []byte("= nope"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/p/patch.ini", []byte("a=1"), 0o644))

	_, err := Load(fsys, "/p/list.json")
	assert.ErrorIs(t, err, ErrNotObject)
	_, err = Load(fsys, "/p/list.yaml")
	assert.ErrorIs(t, err, ErrNotObject)
	_, err = Load(fsys, "/p/bad.toml")
	assert.Error(t, err)
	_, err = Load(fsys, "/p/patch.ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Load(fsys, "/p/absent.json")
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatTOML} {
		m, err := Decode(f, nil)
		require.NoError(t, err, f)
		assert.Empty(t, m)
		assert.NotNil(t, m)
	}
}

func TestDecode_Nested(t *testing.T) {
	m, err := Decode(FormatYAML, []byte("Sequence:\n  Name: mprage\n  Flip: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Sequence": map[string]any{"Name": "mprage", "Flip": 8}}, m)
}

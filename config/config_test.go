package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/arcfit/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARCFIT_CONFIG", "")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.Edit.MinimumConnectionDistance)
	assert.Equal(t, space.WorldUp, s.UpHint())
	assert.Equal(t, 1e-3, s.Fit.DegenerateHalfChord)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arcfit.yaml")
	content := "edit:\n  minimum_connection_distance: 0.5\n  up: [0, 0, 1]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Edit.MinimumConnectionDistance)
	assert.Equal(t, space.V(0, 0, 1), s.UpHint())
	//
	t.Setenv("ARCFIT_EDIT_MINIMUM_CONNECTION_DISTANCE", "0.75")
	s, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.Edit.MinimumConnectionDistance)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Edit.MinimumConnectionDistance = -1
	assert.Error(t, s.Validate())
	s = Default()
	s.Edit.Up = []float64{1}
	assert.Error(t, s.Validate())
	assert.NoError(t, Default().Validate())
}

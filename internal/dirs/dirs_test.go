package dirs

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))

	cfg, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "config", "videomorph"), cfg)

	p, err := ProfilesPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg, "profiles.yaml"), p)

	require.NoError(t, EnsureConfigDir())
	assert.DirExists(t, cfg)
}

func TestEnsure(t *testing.T) {
	assert.Error(t, Ensure(""))
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Ensure(dir))
	assert.DirExists(t, dir)
}

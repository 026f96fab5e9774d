package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "videomorph"}
	pf := root.PersistentFlags()
	pf.StringP("out-dir", "o", "", "")
	pf.Bool("verbose", false, "")
	pf.String("converter", "", "")
	pf.String("profiles", "", "")
	pf.Int("threads", 0, "")
	pf.String("log-level", "", "")
	return root
}

func TestInit_FileEnvAndFlags(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	viper.Reset()
	t.Cleanup(viper.Reset)

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("VIDEOMORPH_CONVERTER", "avconv")

	cfgDir := filepath.Join(base, "videomorph")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"),
		[]byte("threads: 4\nout_dir: /tmp/converted\n"), 0o644))

	root := newRoot()
	require.NoError(t, root.PersistentFlags().Set("out-dir", "flag-dir"))
	require.NoError(t, Init(root))

	assert.Equal(t, 4, viper.GetInt(KeyThreads))
	assert.Equal(t, "avconv", viper.GetString(KeyConverter))
	assert.Equal(t, "flag-dir", viper.GetString(KeyOutDir))
	assert.Equal(t, "warn", viper.GetString(KeyLogLevel))
}

func TestInit_BrokenConfigIsReported(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	viper.Reset()
	t.Cleanup(viper.Reset)

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	cfgDir := filepath.Join(base, "videomorph")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("threads: [\n"), 0o644))

	assert.Error(t, Init(newRoot()))
}

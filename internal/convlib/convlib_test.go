package convlib

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePath makes lookPath resolve only the given names.
func fakePath(t *testing.T, found map[string]string) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func TestDetect_PrefersFFmpeg(t *testing.T) {
	fakePath(t, map[string]string{
		"ffmpeg":  "/nonexistent/bin/ffmpeg",
		"ffprobe": "/nonexistent/bin/ffprobe",
		"avconv":  "/nonexistent/bin/avconv",
		"avprobe": "/nonexistent/bin/avprobe",
	})

	lib, err := Detect("")
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent/bin/ffmpeg", lib.Converter)
	assert.Equal(t, "/nonexistent/bin/ffprobe", lib.Prober)
	assert.Equal(t, FFmpeg, lib.Name())
	assert.Equal(t, "ffprobe", lib.ProberName())
}

func TestDetect_FallsBackToAvconv(t *testing.T) {
	fakePath(t, map[string]string{
		"avconv":  "/nonexistent/bin/avconv",
		"avprobe": "/nonexistent/bin/avprobe",
	})

	lib, err := Detect("")
	require.NoError(t, err)
	assert.Equal(t, Avconv, lib.Name())
	assert.Equal(t, "/nonexistent/bin/avprobe", lib.Prober)
}

func TestDetect_ConverterWithoutProber(t *testing.T) {
	fakePath(t, map[string]string{"ffmpeg": "/nonexistent/bin/ffmpeg"})

	_, err := Detect("ffmpeg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "ffprobe")
}

func TestDetect_NothingInstalled(t *testing.T) {
	fakePath(t, nil)

	_, err := Detect("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetect_ExplicitPathUsesSiblingProber(t *testing.T) {
	fakePath(t, nil)
	dir := t.TempDir()
	conv := filepath.Join(dir, "ffmpeg")
	touch(t, conv)
	touch(t, filepath.Join(dir, "ffprobe"))

	lib, err := Detect(conv)
	require.NoError(t, err)
	assert.Equal(t, conv, lib.Converter)
	assert.Equal(t, filepath.Join(dir, "ffprobe"), lib.Prober)
}

func TestDetect_ExplicitPathMissing(t *testing.T) {
	fakePath(t, nil)
	_, err := Detect(filepath.Join(t.TempDir(), "ffmpeg"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFamily(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/nonexistent/bin/ffmpeg", want: FFmpeg},
		{path: "/opt/bin/FFmpeg-6.exe", want: FFmpeg},
		{path: "/opt/avconv", want: Avconv},
		{path: "/nonexistent/bin/handbrake", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, family(tt.path))
		})
	}
}

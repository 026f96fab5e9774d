package profile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_DVDFullscreen(t *testing.T) {
	pr, err := Default().Lookup("DVD Fullscreen (4:3)")
	require.NoError(t, err)

	assert.Equal(t, "DVD", pr.Profile())
	assert.Equal(t, "[DVDF]", pr.Tag)
	assert.Equal(t, ".mpg", pr.Extension)
	assert.Equal(t, []string{
		"-f", "dvd", "-target", "ntsc-dvd", "-vcodec", "mpeg2video",
		"-r", "29.97", "-s", "352x480", "-aspect", "4:3", "-b:v", "4000k",
		"-mbd", "rd", "-cmp", "2", "-subcmp", "2", "-acodec", "mp2",
		"-b:a", "192k", "-ar", "48000", "-ac", "2",
	}, pr.Args())
}

func TestDefault_EveryPresetComplete(t *testing.T) {
	c := Default()
	for _, p := range c.Profiles {
		for _, pr := range p.Presets {
			assert.NotEmpty(t, pr.Tag, "preset %q has no tag", pr.Quality)
			assert.True(t, strings.HasPrefix(pr.Extension, "."), "preset %q extension %q", pr.Quality, pr.Extension)
			assert.NotContains(t, pr.Params, "\n", "preset %q params must fold to one line", pr.Quality)
		}
	}
}

func TestLookup_UnknownQualitySuggests(t *testing.T) {
	_, err := Default().Lookup("dvd full")
	require.Error(t, err)

	var uq *UnknownQualityError
	require.True(t, errors.As(err, &uq))
	assert.Equal(t, "dvd full", uq.Quality)
	assert.Contains(t, uq.Suggestions, "DVD Fullscreen (4:3)")
	assert.LessOrEqual(t, len(uq.Suggestions), 3)
	assert.Contains(t, err.Error(), "did you mean")
}

func TestLookup_SwappedLetterSuggests(t *testing.T) {
	for _, q := range []string{"DVD Fullscrean (4:3)", "dvd fullscrean (4:3)", "DVD Fulscreen (4:3)"} {
		t.Run(q, func(t *testing.T) {
			_, err := Default().Lookup(q)
			var uq *UnknownQualityError
			require.True(t, errors.As(err, &uq))
			require.NotEmpty(t, uq.Suggestions)
			assert.Equal(t, "DVD Fullscreen (4:3)", uq.Suggestions[0])
			assert.LessOrEqual(t, len(uq.Suggestions), 3)
		})
	}
}

func TestLookup_UnknownQualityNoSuggestion(t *testing.T) {
	_, err := Default().Lookup("zzzzzz")
	var uq *UnknownQualityError
	require.True(t, errors.As(err, &uq))
	assert.Empty(t, uq.Suggestions)
	assert.Equal(t, `unknown quality "zzzzzz"`, err.Error())
}

func TestNamesAndQualities(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"DVD", "MP4", "WEBM", "AVI", "OGV", "MP3"}, c.Names())

	qs, err := c.Qualities("dvd")
	require.NoError(t, err)
	assert.Equal(t, []string{"DVD Fullscreen (4:3)", "DVD Widescreen (16:9)"}, qs)

	_, err = c.Qualities("VCD")
	assert.ErrorContains(t, err, `unknown profile "VCD"`)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "empty catalog",
			doc:     "profiles: []\n",
			wantErr: "catalog is empty",
		},
		{
			name: "missing params",
			doc: `profiles:
  - name: X
    presets:
      - quality: Q
        extension: .x
`,
			wantErr: `"Q" has no params`,
		},
		{
			name: "missing extension",
			doc: `profiles:
  - name: X
    presets:
      - quality: Q
        params: -f x
`,
			wantErr: `"Q" has no extension`,
		},
		{
			name: "duplicate quality across profiles",
			doc: `profiles:
  - name: X
    presets:
      - {quality: Q, params: -f x, extension: .x}
  - name: Y
    presets:
      - {quality: Q, params: -f y, extension: .y}
`,
			wantErr: `duplicate quality "Q"`,
		},
		{
			name:    "unknown field",
			doc:     "profiles:\n  - name: X\n    colour: red\n",
			wantErr: "parse profiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_NormalizesExtension(t *testing.T) {
	c, err := Load(strings.NewReader(`profiles:
  - name: MKV
    presets:
      - {quality: MKV Copy, params: -c copy, extension: mkv, tag: "[MKV]"}
`))
	require.NoError(t, err)
	pr, err := c.Lookup("MKV Copy")
	require.NoError(t, err)
	assert.Equal(t, ".mkv", pr.Extension)
	assert.Equal(t, []string{"-c", "copy"}, pr.Args())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	c, err := Resolve(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Names(), c.Names())

	custom := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(custom, []byte(`profiles:
  - name: MKV
    presets:
      - {quality: MKV Copy, params: -c copy, extension: .mkv}
`), 0o644))
	c, err = Resolve(custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"MKV"}, c.Names())

	require.NoError(t, os.WriteFile(custom, []byte("profiles: [\n"), 0o644))
	_, err = Resolve(custom)
	assert.Error(t, err)
}

func TestExport_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf))
	c, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default().Names(), c.Names())
}

func TestConversionProfile(t *testing.T) {
	cp, err := NewConversionProfile(Default(), "DVD Fullscreen (4:3)")
	require.NoError(t, err)
	assert.Equal(t, "DVD", cp.Name())
	assert.Equal(t, "[DVDF]", cp.Tag())

	require.NoError(t, cp.SetQuality("MP4 Widescreen (16:9)"))
	assert.Equal(t, "MP4", cp.Name())
	assert.Equal(t, ".mp4", cp.Extension())
	assert.Contains(t, cp.Params(), "libx264")

	err = cp.SetQuality("nope")
	assert.Error(t, err)
	assert.Equal(t, "MP4 Widescreen (16:9)", cp.Quality(), "failed switch keeps previous quality")

	_, err = NewConversionProfile(Default(), "nope")
	assert.Error(t, err)
}

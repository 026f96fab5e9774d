package media

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videomorph/internal/probe"
	"videomorph/internal/profile"
)

const dvdFullscreen = "DVD Fullscreen (4:3)"

func dvdProfile(t *testing.T) *profile.ConversionProfile {
	t.Helper()
	cp, err := profile.NewConversionProfile(profile.Default(), dvdFullscreen)
	require.NoError(t, err)
	return cp
}

func dadInfo() probe.Info {
	return probe.Info{
		probe.KeyDuration:       "120.720000",
		probe.KeyFileSize:       "21227416",
		probe.KeyFormatName:     "mpeg",
		probe.KeyFormatLongName: "MPEG-PS (MPEG-2 Program Stream)",
	}
}

func newDad(t *testing.T) *MediaFile {
	t.Helper()
	return NewMediaFile("Dad.mpg", dvdProfile(t), dadInfo(), WithThreads(3))
}

func TestMediaFile_Name(t *testing.T) {
	f := newDad(t)
	assert.Equal(t, "Dad", f.Name(false))
	assert.Equal(t, "Dad.mpg", f.Name(true))

	nested := NewMediaFile(filepath.Join("home", "me", "clip.final.avi"), dvdProfile(t), nil)
	assert.Equal(t, "clip.final", nested.Name(false))
	assert.Equal(t, "clip.final.avi", nested.Name(true))
}

func TestMediaFile_GetInfo(t *testing.T) {
	f := newDad(t)
	d, err := f.Duration()
	require.NoError(t, err)
	assert.InDelta(t, 120.72, d, 1e-9)
	assert.Equal(t, "mpeg", f.GetInfo(probe.KeyFormatName))
	assert.Equal(t, "", f.GetInfo("no_such_key"))
}

func TestMediaFile_BuildConversionCmd(t *testing.T) {
	f := newDad(t)
	args, err := f.BuildConversionCmd(".", dvdFullscreen)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-i", "Dad.mpg", "-f", "dvd", "-target", "ntsc-dvd", "-vcodec", "mpeg2video",
		"-r", "29.97", "-s", "352x480", "-aspect", "4:3", "-b:v", "4000k",
		"-mbd", "rd", "-cmp", "2", "-subcmp", "2", "-acodec", "mp2",
		"-b:a", "192k", "-ar", "48000", "-ac", "2", "-threads", "3", "-y",
		"." + string(filepath.Separator) + "[DVDF]-Dad.mpg",
	}, args)
}

func TestMediaFile_BuildConversionCmd_SwitchesQuality(t *testing.T) {
	f := newDad(t)
	out := filepath.Join("out", "dir") + string(filepath.Separator)

	args, err := f.BuildConversionCmd(out, "MP4 Widescreen (16:9)")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "dir", "[MP4W]-Dad.mp4"), args[len(args)-1])
	assert.Equal(t, "MP4", f.Profile.Name())

	_, err = f.BuildConversionCmd(out, "Betamax")
	var uq *profile.UnknownQualityError
	assert.True(t, errors.As(err, &uq))
}

func TestMediaFile_BuildConversionCmd_RefusesOverwritingInput(t *testing.T) {
	cat, err := profile.Load(stringsReader(`profiles:
  - name: MPG
    presets:
      - {quality: Remux, params: -c copy, extension: .mpg}
`))
	require.NoError(t, err)
	cp, err := profile.NewConversionProfile(cat, "Remux")
	require.NoError(t, err)

	f := NewMediaFile("Dad.mpg", cp, dadInfo())
	_, err = f.BuildConversionCmd(".", "")
	assert.ErrorContains(t, err, "overwrite the input")
}

func TestMediaFile_BuildConversionCmd_RefusedQualityIsNotKept(t *testing.T) {
	cat, err := profile.Load(stringsReader(`profiles:
  - name: MPG
    presets:
      - {quality: Small, tag: "[S]", params: -s 352x240, extension: .mpg}
      - {quality: Remux, params: -c copy, extension: .mpg}
`))
	require.NoError(t, err)
	cp, err := profile.NewConversionProfile(cat, "Small")
	require.NoError(t, err)

	f := NewMediaFile("Dad.mpg", cp, dadInfo())
	_, err = f.BuildConversionCmd(".", "Remux")
	assert.ErrorContains(t, err, "overwrite the input")
	assert.Equal(t, "Small", cp.Quality())

	args, err := f.BuildConversionCmd(".", "")
	require.NoError(t, err)
	assert.Equal(t, "./[S]-Dad.mpg", args[len(args)-1])
}

func TestMediaFile_Duration_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: "wrong"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-1.5"},
		{name: "missing", value: ""},
		{name: "not available", value: "N/A"},
		{name: "infinite", value: "inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDad(t)
			f.Info[probe.KeyDuration] = tt.value
			_, err := f.Duration()
			var ime *InvalidMetadataError
			require.True(t, errors.As(err, &ime), "got %v", err)
			assert.Equal(t, probe.KeyDuration, ime.Key)
			assert.Equal(t, tt.value, ime.Value)
		})
	}
}

func TestMediaFile_NewHasUniqueIDAndTodoStatus(t *testing.T) {
	a, b := newDad(t), newDad(t)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, StatusTodo, a.Status())
	assert.GreaterOrEqual(t, NewMediaFile("x.mpg", dvdProfile(t), nil).Threads, 1)
}

// Package convlib locates the external conversion tools: a converter
// (ffmpeg or avconv) and the prober that ships with it.
package convlib

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	FFmpeg = "ffmpeg"
	Avconv = "avconv"
)

// ErrNotFound is wrapped by every lookup failure.
var ErrNotFound = errors.New("conversion tool not found")

// probers maps a converter family to its prober binary.
var probers = map[string]string{
	FFmpeg: "ffprobe",
	Avconv: "avprobe",
}

// ConversionLib holds resolved binary paths.
type ConversionLib struct {
	Converter string
	Prober    string
}

// Name returns the converter family, ffmpeg or avconv.
func (c ConversionLib) Name() string {
	return family(c.Converter)
}

// ProberName returns the prober family, ffprobe or avprobe.
func (c ConversionLib) ProberName() string {
	return probers[c.Name()]
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Detect resolves the converter and its prober. preferred may be empty,
// a family name ("ffmpeg", "avconv"), or an explicit path to a converter.
// With no preference ffmpeg wins over avconv.
func Detect(preferred string) (ConversionLib, error) {
	var candidates []string
	switch {
	case preferred == "":
		candidates = []string{FFmpeg, Avconv}
	default:
		candidates = []string{preferred}
	}

	var lastErr error
	for _, c := range candidates {
		conv, err := findBinary(c)
		if err != nil {
			lastErr = err
			continue
		}
		prober, err := findProber(conv)
		if err != nil {
			lastErr = err
			continue
		}
		return ConversionLib{Converter: conv, Prober: prober}, nil
	}
	if preferred == "" {
		return ConversionLib{}, fmt.Errorf("%w: could not find ffmpeg or avconv in PATH. Please install ffmpeg", ErrNotFound)
	}
	return ConversionLib{}, lastErr
}

func findBinary(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			return name, nil
		}
		return "", fmt.Errorf("%w: no converter at %q", ErrNotFound, name)
	}
	p, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: could not find %s in PATH. Please install %s", ErrNotFound, name, name)
	}
	return p, nil
}

// findProber prefers a prober sitting next to the converter, so a custom
// ffmpeg build is paired with its own ffprobe.
func findProber(converter string) (string, error) {
	fam := family(converter)
	name, ok := probers[fam]
	if !ok {
		return "", fmt.Errorf("%w: unknown converter family for %q (want ffmpeg or avconv)", ErrNotFound, converter)
	}
	sibling := filepath.Join(filepath.Dir(converter), name+filepath.Ext(converter))
	if fi, err := os.Stat(sibling); err == nil && !fi.IsDir() {
		return sibling, nil
	}
	p, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: found %s but not %s. Please install %s", ErrNotFound, converter, name, name)
	}
	return p, nil
}

// family guesses ffmpeg or avconv from a binary path, e.g. /opt/bin/ffmpeg-6.exe.
func family(path string) string {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasPrefix(base, FFmpeg):
		return FFmpeg
	case strings.HasPrefix(base, Avconv):
		return Avconv
	default:
		return ""
	}
}

// Package media models the files queued for conversion and the ordered list
// that holds them.
package media

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"videomorph/internal/probe"
	"videomorph/internal/profile"
)

// Status is the conversion state of a queued file.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusStopped Status = "stopped"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// DefaultThreads leaves one core for the rest of the system.
func DefaultThreads() int {
	return max(1, runtime.NumCPU()-1)
}

// MediaFile is one input file with its probed metadata and the profile it
// will be converted with.
type MediaFile struct {
	ID      string
	Path    string
	Profile *profile.ConversionProfile
	Info    probe.Info
	Threads int

	mu     sync.Mutex
	status Status
}

// FileOption configures a MediaFile.
type FileOption func(*MediaFile)

// WithThreads sets the -threads value passed to the converter.
func WithThreads(n int) FileOption {
	return func(f *MediaFile) {
		if n > 0 {
			f.Threads = n
		}
	}
}

// NewMediaFile wraps path. info is usually the result of a probe.
func NewMediaFile(path string, cp *profile.ConversionProfile, info probe.Info, opts ...FileOption) *MediaFile {
	if info == nil {
		info = probe.Info{}
	}
	f := &MediaFile{
		ID:      uuid.New().String(),
		Path:    path,
		Profile: cp,
		Info:    info,
		Threads: DefaultThreads(),
		status:  StatusTodo,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Name returns the base name, optionally keeping the extension.
func (f *MediaFile) Name(withExtension bool) string {
	base := filepath.Base(f.Path)
	if withExtension {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GetInfo returns a metadata value or "" when the prober did not report it.
func (f *MediaFile) GetInfo(key string) string {
	return f.Info[key]
}

// Duration returns the probed duration in seconds.
func (f *MediaFile) Duration() (float64, error) {
	raw := f.GetInfo(probe.KeyDuration)
	d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidMetadataError{Path: f.Path, Key: probe.KeyDuration, Value: raw, Err: errors.Unwrap(err)}
	}
	if d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, &InvalidMetadataError{Path: f.Path, Key: probe.KeyDuration, Value: raw, Err: errors.New("not a positive number")}
	}
	return d, nil
}

// Status returns the conversion state.
func (f *MediaFile) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// SetStatus changes the conversion state.
func (f *MediaFile) SetStatus(s Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

// OutputName is the file name the converter writes: <tag>-<name><ext>.
func (f *MediaFile) OutputName() string {
	name := f.Name(false) + f.Profile.Extension()
	if tag := f.Profile.Tag(); tag != "" {
		return tag + "-" + name
	}
	return name
}

// OutputPath joins outputDir and OutputName without cleaning, so "."
// yields "./name".
func (f *MediaFile) OutputPath(outputDir string) string {
	if outputDir == "" {
		outputDir = "."
	}
	sep := string(filepath.Separator)
	return strings.TrimSuffix(outputDir, sep) + sep + f.OutputName()
}

// BuildConversionCmd returns the converter arguments for this file. A
// non-empty quality switches the shared profile, unless the command is
// refused.
func (f *MediaFile) BuildConversionCmd(outputDir, quality string) ([]string, error) {
	prev := f.Profile.Quality()
	if quality != "" && quality != prev {
		if err := f.Profile.SetQuality(quality); err != nil {
			return nil, err
		}
	}
	out := f.OutputPath(outputDir)
	if sameFile(out, f.Path) {
		// A refused command leaves the profile as it was.
		_ = f.Profile.SetQuality(prev)
		return nil, fmt.Errorf("%s: output would overwrite the input", f.Path)
	}

	params := f.Profile.Params()
	args := make([]string, 0, len(params)+7)
	args = append(args, "-i", f.Path)
	args = append(args, params...)
	args = append(args, "-threads", strconv.Itoa(f.Threads), "-y", out)
	return args, nil
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// Package probe reads container metadata through ffprobe or avprobe.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"videomorph/internal/util"
)

// Info keys filled by Probe.
const (
	KeyFilename       = "filename"
	KeyDuration       = "format_duration"
	KeyFileSize       = "file_size"
	KeyFormatName     = "format_name"
	KeyFormatLongName = "format_long_name"
	KeyBitRate        = "bit_rate"
	KeyStreams        = "nb_streams"
)

// Info is raw prober output. Values are kept as strings; callers coerce
// the ones they rely on.
type Info map[string]string

// ProbeError carries the prober's stderr when it fails on a file.
type ProbeError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Path, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

// probeFormat is the "format" object both ffprobe and avprobe emit in JSON mode.
type probeFormat struct {
	Filename       string          `json:"filename"`
	NbStreams      json.RawMessage `json:"nb_streams"`
	FormatName     string          `json:"format_name"`
	FormatLongName string          `json:"format_long_name"`
	Duration       json.RawMessage `json:"duration"`
	Size           json.RawMessage `json:"size"`
	BitRate        json.RawMessage `json:"bit_rate"`
}

type probeOutput struct {
	Format probeFormat `json:"format"`
}

type cacheKey struct {
	path  string
	size  int64
	mtime time.Time
}

// Prober runs the external prober. It is safe for concurrent use.
type Prober struct {
	path   string
	runner util.CmdRunner

	mu    sync.Mutex
	cache map[cacheKey]Info
}

// Option configures a Prober.
type Option func(*Prober)

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(p *Prober) {
		p.runner = r
	}
}

// New returns a Prober for the ffprobe or avprobe binary at path.
func New(path string, opts ...Option) *Prober {
	p := &Prober{path: path, cache: make(map[cacheKey]Info)}
	for _, o := range opts {
		o(p)
	}
	if p.runner == nil {
		p.runner = util.NewDefaultRunner()
	}
	return p
}

// Args returns the prober arguments for file. avprobe spells the output
// format flag -of; ffprobe accepts -print_format.
func (p *Prober) Args(file string) []string {
	formatFlag := "-print_format"
	if strings.HasPrefix(strings.ToLower(filepath.Base(p.path)), "avprobe") {
		formatFlag = "-of"
	}
	return []string{"-v", "quiet", formatFlag, "json", "-show_format", file}
}

// Probe returns the metadata of file. Results are cached until the file's
// size or modification time changes.
func (p *Prober) Probe(ctx context.Context, file string) (Info, error) {
	fi, err := util.RegularFile(file)
	if err != nil {
		return nil, &ProbeError{Path: file, Err: err}
	}
	key := cacheKey{path: file, size: fi.Size(), mtime: fi.ModTime()}

	p.mu.Lock()
	cached, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return cached.clone(), nil
	}

	res, err := p.runner.Run(ctx, util.CmdSpec{
		Path:          p.path,
		Args:          p.Args(file),
		CaptureStdout: true,
	})
	if err != nil {
		return nil, &ProbeError{Path: file, Stderr: string(res.Stderr), Err: err}
	}

	info, err := Parse(res.Stdout)
	if err != nil {
		return nil, &ProbeError{Path: file, Err: err}
	}
	if info[KeyFileSize] == "" {
		info[KeyFileSize] = fmt.Sprint(fi.Size())
	}
	slog.Debug("probed", "file", file, "duration", info[KeyDuration], "format", info[KeyFormatName])

	p.mu.Lock()
	p.cache[key] = info
	p.mu.Unlock()
	return info.clone(), nil
}

// Parse converts prober JSON into Info. Numbers may arrive quoted (ffprobe)
// or bare (older avprobe); both are kept as their textual form.
func Parse(data []byte) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse prober output: %w", err)
	}
	f := out.Format
	if f.FormatName == "" && len(f.Duration) == 0 {
		return nil, fmt.Errorf("parse prober output: no format section")
	}
	info := Info{
		KeyFilename:       f.Filename,
		KeyFormatName:     f.FormatName,
		KeyFormatLongName: f.FormatLongName,
		KeyDuration:       rawText(f.Duration),
		KeyFileSize:       rawText(f.Size),
		KeyBitRate:        rawText(f.BitRate),
		KeyStreams:        rawText(f.NbStreams),
	}
	return info, nil
}

func rawText(m json.RawMessage) string {
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(m, &s) == nil {
		return s
	}
	return string(m)
}

func (i Info) clone() Info {
	c := make(Info, len(i))
	for k, v := range i {
		c[k] = v
	}
	return c
}

// Package converter runs the external converter for a single queued file.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videomorph/internal/media"
	"videomorph/internal/progress"
	"videomorph/internal/util"
)

// Options control converter execution.
type Options struct {
	ConverterPath string
	OutputDir     string
	Quality       string // empty keeps the file's current quality
	Verbose       bool

	Runner   util.CmdRunner
	Reporter progress.Reporter
}

// Output describes a finished conversion.
type Output struct {
	Path    string
	Bytes   int64
	Elapsed time.Duration
}

// ConversionError is returned when the converter exits with an error.
type ConversionError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("conversion failed: %v", e.Err)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Convert converts f into opts.OutputDir. Progress is parsed from the
// converter's stderr status line and reported per file.
func Convert(ctx context.Context, f *media.MediaFile, opts Options) (Output, error) {
	if opts.ConverterPath == "" {
		return Output{}, errors.New("converter path is required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Nop{}
	}

	args, err := f.BuildConversionCmd(opts.OutputDir, opts.Quality)
	if err != nil {
		return Output{}, err
	}
	outPath := args[len(args)-1]
	if err := util.EnsureDir(filepath.Dir(outPath)); err != nil {
		return Output{}, fmt.Errorf("ensure output dir: %w", err)
	}

	dur, _ := f.Duration()
	ps := &ProgressState{DurationSec: dur}
	start := time.Now()

	res, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    opts.ConverterPath,
		Args:    args,
		Verbose: opts.Verbose,
		StderrLine: func(line string) {
			if u, ok := ps.UpdateFromLine(line, f.ID); ok {
				rep.Update(u)
				return
			}
			if opts.Verbose {
				rep.Log(progress.Log{FileID: f.ID, Stream: progress.StreamStderr, Line: line})
			}
		},
	})
	if runErr != nil {
		// Delete incomplete file
		_ = util.RemoveIfExists(outPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, ctxErr
		}
		return Output{}, &ConversionError{Args: args, Stderr: string(res.Stderr), Err: runErr}
	}

	fi, err := os.Stat(outPath)
	if err != nil {
		return Output{}, fmt.Errorf("stat output: %w", err)
	}
	return Output{Path: outPath, Bytes: fi.Size(), Elapsed: time.Since(start)}, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

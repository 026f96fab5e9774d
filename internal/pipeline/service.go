// Package pipeline runs the conversion queue held in a media.MediaList.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"videomorph/internal/converter"
	"videomorph/internal/media"
	"videomorph/internal/model"
	"videomorph/internal/progress"
	"videomorph/internal/util"
	"videomorph/internal/util/format"
)

// Service converts every pending file of a list, one at a time.
type Service struct {
	converterPath string
	opts          model.CLIOptions
	list          *media.MediaList
	runner        util.CmdRunner
	reporter      progress.Reporter

	mu      sync.Mutex
	cancel  context.CancelFunc // cancels the running file only
	skipped bool
}

// Option configures a Service.
type Option func(*Service)

// WithConverterPath sets the ffmpeg/avconv binary path.
func WithConverterPath(p string) Option {
	return func(s *Service) {
		s.converterPath = p
	}
}

// WithCLIOptions sets the CLI options used for planning and execution.
func WithCLIOptions(o model.CLIOptions) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// NewService constructs a Service over list.
func NewService(list *media.MediaList, opts ...Option) *Service {
	s := &Service{list: list}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	return s
}

// List returns the queue the service works on.
func (s *Service) List() *media.MediaList { return s.list }

// FileError pairs a failed file with its error.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// Summary counts the outcome of a Run.
type Summary struct {
	Done    int
	Failed  int
	Skipped int
	Stopped int
	Outputs []converter.Output
	Errors  []FileError
}

// Run converts pending files in list order. A failing file does not stop
// the queue. Cancelling ctx stops the running file and every pending one;
// Run then returns ctx.Err(). Otherwise the error joins the per-file
// failures, or is nil.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.converterPath == "" {
		return sum, errors.New("converter path is required")
	}

	// Files finished by an earlier run do not count towards this one.
	total := s.list.RemainingDuration()
	var processed float64

	for {
		if err := ctx.Err(); err != nil {
			sum.Stopped += s.list.StopAll()
			return sum, err
		}
		f, ok := s.list.Next()
		if !ok {
			break
		}
		dur, _ := f.Duration()
		f.SetStatus(media.StatusRunning)

		fctx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.cancel, s.skipped = cancel, false
		s.mu.Unlock()

		out, err := converter.Convert(fctx, f, converter.Options{
			ConverterPath: s.converterPath,
			OutputDir:     s.opts.OutDir,
			Quality:       s.opts.Quality,
			Verbose:       s.opts.Verbose,
			Runner:        s.runner,
			Reporter:      overallReporter{Reporter: s.reporter, base: processed, total: total},
		})

		s.mu.Lock()
		skipped := s.skipped
		s.cancel, s.skipped = nil, false
		s.mu.Unlock()
		cancel()

		processed += dur
		switch {
		case err == nil:
			f.SetStatus(media.StatusDone)
			sum.Done++
			sum.Outputs = append(sum.Outputs, out)
			s.emitSaved(f, out)
		case ctx.Err() != nil:
			f.SetStatus(media.StatusStopped)
			sum.Stopped++
			s.emitResult(f, progress.StageStopped, "Stopped", ctx.Err())
		case skipped:
			f.SetStatus(media.StatusSkipped)
			sum.Skipped++
			s.emitResult(f, progress.StageSkipped, "Skipped", nil)
		default:
			f.SetStatus(media.StatusFailed)
			sum.Failed++
			sum.Errors = append(sum.Errors, FileError{Path: f.Path, Err: err})
			slog.Warn("conversion failed", "file", f.Path, "err", err)
			s.emitResult(f, progress.StageError, "Failed", err)
		}
	}

	if len(sum.Errors) == 0 {
		return sum, nil
	}
	errs := make([]error, len(sum.Errors))
	for i, fe := range sum.Errors {
		errs[i] = fe
	}
	return sum, errors.Join(errs...)
}

// Skip cancels the running file only. The queue moves on to the next
// pending file. It reports whether a file was running.
func (s *Service) Skip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.skipped = true
	s.cancel()
	return true
}

func (s *Service) emitSaved(f *media.MediaFile, out converter.Output) {
	s.reporter.Update(progress.Update{
		FileID:  f.ID,
		Stage:   progress.StageCompleted,
		Percent: 100,
		Overall: -1,
		Message: fmt.Sprintf("Saved: %s (%s)", filepath.Base(out.Path), format.HumanizeBytes(out.Bytes)),
	})
	s.reporter.Result(progress.Result{
		FileID:     f.ID,
		Stage:      progress.StageCompleted,
		OutputPath: out.Path,
		Bytes:      out.Bytes,
	})
}

func (s *Service) emitResult(f *media.MediaFile, stage progress.Stage, msg string, err error) {
	s.reporter.Update(progress.Update{
		FileID:  f.ID,
		Stage:   stage,
		Percent: -1,
		Overall: -1,
		Message: msg,
	})
	s.reporter.Result(progress.Result{FileID: f.ID, Stage: stage, Err: err})
}

// overallReporter fills Update.Overall from the time already converted in
// this run plus the position inside the current file.
type overallReporter struct {
	progress.Reporter
	base  float64
	total float64
}

func (r overallReporter) Update(u progress.Update) {
	if r.total > 0 {
		u.Overall = min((r.base+u.Elapsed.Seconds())/r.total*100, 100)
	}
	r.Reporter.Update(u)
}

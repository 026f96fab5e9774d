package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"videomorph/internal/media"
	"videomorph/internal/pipeline"
	"videomorph/internal/progress"
	"videomorph/internal/ui"
	"videomorph/internal/util"
	"videomorph/internal/util/format"
)

type runMode struct {
	ForceTUI bool
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "convert FILES...",
		Short:         "Convert media files with a quality preset",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, runMode{})
		},
	}
	bindQualityFlag(cmd.Flags())
	cmd.Flags().Bool("no-ui", false, "Disable TUI; use a plain progress bar")
	cmd.Flags().Bool("dry-run", false, "Print the plan instead of converting")
	return cmd
}

func newTuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui FILES...",
		Short:         "Convert media files in the interactive queue view",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Force TUI; if stdout is not a terminal, ui.Run will error appropriately.
			return runConvert(cmd, args, runMode{ForceTUI: true})
		},
	}
	bindQualityFlag(cmd.Flags())
	return cmd
}

func runConvert(cmd *cobra.Command, args []string, mode runMode) error {
	ctx := cmd.Context()
	in, err := loadQueue(ctx, cmd, args)
	if err != nil {
		return err
	}
	if err := reportRejected(cmd, in); err != nil {
		return err
	}
	if in.Options.DryRun {
		return printPlan(cmd, in)
	}
	if err := util.EnsureDir(in.Options.OutDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	opts := []pipeline.Option{
		pipeline.WithConverterPath(in.Lib.Converter),
		pipeline.WithCLIOptions(in.Options),
	}

	var sum pipeline.Summary
	useTUI := mode.ForceTUI || (!in.Options.NoUI && isTerminal())
	if useTUI {
		sum, err = ui.Run(ctx, in.List, opts...)
	} else {
		rep := newBarReporter(cmd.ErrOrStderr(), in.List)
		sum, err = pipeline.NewService(in.List, append(opts, pipeline.WithReporter(rep))...).Run(ctx)
		rep.finish()
	}

	printSummary(cmd.OutOrStdout(), sum)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitCLIError, Err: errors.New("interrupted")}
	default:
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}
}

func printSummary(w io.Writer, sum pipeline.Summary) {
	for _, out := range sum.Outputs {
		fmt.Fprintf(w, "Saved: %s (%s)\n", out.Path, format.HumanizeBytes(out.Bytes))
	}
	fmt.Fprintf(w, "Converted %d, failed %d, skipped %d, stopped %d\n",
		sum.Done, sum.Failed, sum.Skipped, sum.Stopped)
}

// barReporter draws the plain-mode progress bar for the whole queue.
type barReporter struct {
	mu    sync.Mutex
	w     io.Writer
	bar   *progressbar.ProgressBar
	names map[string]string
}

func newBarReporter(w io.Writer, list *media.MediaList) *barReporter {
	r := &barReporter{w: w, names: make(map[string]string)}
	r.track(list)
	return r
}

// track picks up files added to list since the last call and starts a
// fresh bar.
func (r *barReporter) track(list *media.MediaList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range list.Files() {
		r.names[f.ID] = f.Name(true)
	}
	r.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Stage != progress.StageConverting {
		return
	}
	r.bar.Describe(r.names[u.FileID])
	if u.Overall >= 0 {
		_ = r.bar.Set(int(u.Overall))
	}
}

func (r *barReporter) Log(l progress.Log) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.bar.Clear()
	fmt.Fprintln(r.w, l.Line)
}

func (r *barReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.bar.Clear()
	name := r.names[res.FileID]
	switch {
	case res.Stage == progress.StageCompleted:
		fmt.Fprintf(r.w, "done     %s -> %s\n", name, filepath.Base(res.OutputPath))
	case res.Err != nil && res.Stage == progress.StageError:
		fmt.Fprintf(r.w, "failed   %s: %v\n", name, res.Err)
	default:
		fmt.Fprintf(r.w, "%-8s %s\n", res.Stage, name)
	}
}

func (r *barReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.bar.Finish()
}

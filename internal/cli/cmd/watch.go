package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"videomorph/internal/pipeline"
	"videomorph/internal/util"
	"videomorph/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watch DIR",
		Short:         "Convert media files as they appear in DIR",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE:          runWatch,
	}
	bindQualityFlag(cmd.Flags())
	cmd.Flags().Duration("settle", 2*time.Second, "How long a new file must stay unchanged before it is converted")
	cmd.Flags().StringSlice("ext", nil, "Extensions to pick up (default: common video containers)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in, err := loadQueue(ctx, cmd, nil)
	if err != nil {
		return err
	}
	if err := util.EnsureDir(in.Options.OutDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	settle, _ := cmd.Flags().GetDuration("settle")
	opts := []watch.Option{watch.WithSettle(settle)}
	if exts, _ := cmd.Flags().GetStringSlice("ext"); len(exts) > 0 {
		opts = append(opts, watch.WithExtensions(exts...))
	}
	w := watch.New(args[0], opts...)

	rep := newBarReporter(cmd.ErrOrStderr(), in.List)
	svc := pipeline.NewService(in.List,
		pipeline.WithConverterPath(in.Lib.Converter),
		pipeline.WithCLIOptions(in.Options),
		pipeline.WithReporter(rep),
	)
	// Our own outputs land in the watched dir when -o points there.
	outputs := make(map[string]bool)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", args[0])
	err = w.Run(ctx, func(ctx context.Context, path string) {
		if abs, err := filepath.Abs(path); err == nil && outputs[abs] {
			return
		}
		for _, r := range in.List.Populate(ctx, in.Prober, in.Profile, []string{path}, in.fileOptions()...) {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", r.Path, r.Err)
		}
		for _, f := range in.List.Files() {
			if abs, err := filepath.Abs(f.OutputPath(in.Options.OutDir)); err == nil {
				outputs[abs] = true
			}
		}
		rep.track(in.List)
		sum, _ := svc.Run(ctx)
		rep.finish()
		printSummary(out, sum)
	})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return nil
}

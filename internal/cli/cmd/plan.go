package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"videomorph/internal/pipeline"
	"videomorph/internal/util"
	"videomorph/internal/util/format"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan FILES...",
		Short:         "Show converter commands and size estimates without executing",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runPlan,
	}
	bindQualityFlag(cmd.Flags())
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	in, err := loadQueue(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	if err := reportRejected(cmd, in); err != nil {
		return err
	}
	return printPlan(cmd, in)
}

func printPlan(cmd *cobra.Command, in queueInputs) error {
	svc := pipeline.NewService(in.List,
		pipeline.WithConverterPath(in.Lib.Converter),
		pipeline.WithCLIOptions(in.Options),
	)
	plans := svc.Plan()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Dry-run plan:")
	fmt.Fprintf(w, "- Converter:      %s (%s)\n", in.Lib.Converter, in.Lib.Name())
	fmt.Fprintf(w, "- Output dir:     %s\n", in.Options.OutDir)
	var failed error
	for _, p := range plans {
		fmt.Fprintf(w, "\n%s\n", p.Path)
		if p.Err != nil {
			fmt.Fprintf(w, "  error:    %v\n", p.Err)
			if failed == nil {
				failed = p.Err
			}
			continue
		}
		fmt.Fprintf(w, "  quality:  %s\n", p.Quality)
		fmt.Fprintf(w, "  duration: %s\n", format.Clock(p.DurationSec))
		fmt.Fprintf(w, "  output:   %s\n", p.OutputPath)
		if p.EstBytes > 0 {
			fmt.Fprintf(w, "  estimate: ~%s\n", format.HumanizeBytes(p.EstBytes))
		} else {
			fmt.Fprintf(w, "  estimate: unknown (no fixed bitrate)\n")
		}
		fmt.Fprintf(w, "  command:  %s\n", util.ShellQuote(in.Lib.Converter, p.Args))
	}
	fmt.Fprintf(w, "\nTotal: %d file(s), %s, ~%s\n",
		len(plans), format.Clock(in.List.Duration()), format.HumanizeBytes(pipeline.EstimatedBytes(plans)))

	if failed != nil {
		return &ExitError{Code: ExitCLIError, Err: errors.New("some files cannot be converted with the chosen quality")}
	}
	return nil
}

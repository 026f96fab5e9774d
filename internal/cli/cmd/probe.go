package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"videomorph/internal/util/format"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probe FILES...",
		Short:         "Print media metadata and the total queue duration",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadQueue(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, f := range in.List.Files() {
				fmt.Fprintf(w, "%s\n", f.Path)
				keys := make([]string, 0, len(f.Info))
				for k := range f.Info {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "  %-17s %s\n", k+":", f.Info[k])
				}
			}
			fmt.Fprintf(w, "Total duration: %s (%d file(s))\n", format.Clock(in.List.Duration()), in.List.Len())

			if err := reportRejected(cmd, in); err != nil {
				return err
			}
			if len(in.Rejected) > 0 {
				return &ExitError{Code: exitCodeFor(in.Rejected[0].Err), Err: fmt.Errorf("%d file(s) rejected", len(in.Rejected))}
			}
			return nil
		},
	}
	bindQualityFlag(cmd.Flags())
	return cmd
}

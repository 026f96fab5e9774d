package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"videomorph/internal/convlib"
	"videomorph/internal/dirs"
	"videomorph/internal/util"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg/ffprobe or avconv/avprobe)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := optionsFromFlags(cmd)
			lib, err := convlib.Detect(opts.Converter)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Converter: %s (%s)\n", lib.Converter, lib.Name())
			fmt.Fprintf(w, "Prober:    %s (%s)\n", lib.Prober, lib.ProberName())

			if p := opts.Profiles; p != "" {
				fmt.Fprintf(w, "Profiles:  %s\n", p)
			} else if p, err := dirs.ProfilesPath(); err == nil {
				if _, err := util.RegularFile(p); err == nil {
					fmt.Fprintf(w, "Profiles:  %s\n", p)
				} else {
					fmt.Fprintf(w, "Profiles:  built-in (create %s to customize)\n", p)
				}
			}
			if cfg := viper.ConfigFileUsed(); cfg != "" {
				fmt.Fprintf(w, "Config:    %s\n", cfg)
			}
			return nil
		},
	}
}

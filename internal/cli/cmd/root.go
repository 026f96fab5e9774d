package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"videomorph/internal/config"
	"videomorph/internal/logging"
)

const (
	ExitOK              = 0
	ExitCLIError        = 1
	ExitMissingDep      = 2
	ExitProbeError      = 3
	ExitConversionError = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "videomorph",
		Short: "Batch video converter driven by ffmpeg or avconv",
		Long: "videomorph converts queues of media files with ffmpeg or avconv. Pick a quality " +
			"preset from a profile catalog, probe the inputs, and watch the queue convert one file at a time.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			level := viper.GetString(config.KeyLogLevel)
			if viper.GetBool(config.KeyVerbose) {
				level = "debug"
			}
			logging.Init(os.Stderr, level, viper.GetString(config.KeyLogFormat))
			return nil
		},
	}

	// Persistent flags available to all subcommands
	pf := root.PersistentFlags()
	pf.StringP("out-dir", "o", ".", "Output directory")
	pf.BoolP("verbose", "v", false, "Show full subprocess commands/output")
	pf.String("converter", "", "Converter to use: ffmpeg, avconv or a path (default: auto-detect)")
	pf.String("profiles", "", "Profile catalog file (default: <config dir>/profiles.yaml, else built-in)")
	pf.Int("threads", 0, "Converter threads per file (default: CPU count - 1)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	// Subcommands
	root.AddCommand(newConvertCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

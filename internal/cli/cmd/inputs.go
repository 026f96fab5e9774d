package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"videomorph/internal/config"
	"videomorph/internal/convlib"
	"videomorph/internal/converter"
	"videomorph/internal/dirs"
	"videomorph/internal/media"
	"videomorph/internal/model"
	"videomorph/internal/probe"
	"videomorph/internal/profile"
)

func bindQualityFlag(fs *pflag.FlagSet) {
	fs.StringP("quality", "q", "", "Quality preset name, e.g. \"DVD Fullscreen (4:3)\" (default: first preset of the catalog)")
}

// optionsFromFlags reads persistent settings through viper, so flags win
// over VIDEOMORPH_* variables, which win over the config file.
func optionsFromFlags(cmd *cobra.Command) model.CLIOptions {
	quality, _ := cmd.Flags().GetString("quality")
	noUI, _ := cmd.Flags().GetBool("no-ui")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	return model.CLIOptions{
		OutDir:    viper.GetString(config.KeyOutDir),
		Quality:   quality,
		Threads:   viper.GetInt(config.KeyThreads),
		Converter: viper.GetString(config.KeyConverter),
		Profiles:  viper.GetString(config.KeyProfiles),
		DryRun:    dryRun,
		Verbose:   viper.GetBool(config.KeyVerbose),
		NoUI:      noUI,
	}
}

func loadCatalog(opts model.CLIOptions) (*profile.Catalog, error) {
	path := opts.Profiles
	if path == "" {
		p, err := dirs.ProfilesPath()
		if err != nil {
			return profile.Default(), nil
		}
		path = p
	}
	return profile.Resolve(path)
}

func defaultQuality(cat *profile.Catalog) string {
	for _, name := range cat.Names() {
		if qs, err := cat.Qualities(name); err == nil && len(qs) > 0 {
			return qs[0]
		}
	}
	return ""
}

// queueInputs is everything a queue-oriented command needs.
type queueInputs struct {
	Options  model.CLIOptions
	Lib      convlib.ConversionLib
	Prober   *probe.Prober
	Profile  *profile.ConversionProfile
	List     *media.MediaList
	Rejected []media.Rejected
}

func (in queueInputs) fileOptions() []media.FileOption {
	return []media.FileOption{media.WithThreads(in.Options.ThreadsOrDefault(media.DefaultThreads()))}
}

// loadQueue resolves the tools and the profile, then probes paths into a
// new list. Rejected paths are returned, not treated as fatal.
func loadQueue(ctx context.Context, cmd *cobra.Command, paths []string) (queueInputs, error) {
	in := queueInputs{Options: optionsFromFlags(cmd)}

	cat, err := loadCatalog(in.Options)
	if err != nil {
		return in, &ExitError{Code: ExitCLIError, Err: err}
	}
	if in.Options.Quality == "" {
		in.Options.Quality = defaultQuality(cat)
	}
	in.Profile, err = profile.NewConversionProfile(cat, in.Options.Quality)
	if err != nil {
		return in, &ExitError{Code: ExitCLIError, Err: err}
	}

	in.Lib, err = convlib.Detect(in.Options.Converter)
	if err != nil {
		return in, &ExitError{Code: ExitMissingDep, Err: err}
	}

	in.Prober = probe.New(in.Lib.Prober)
	in.List = media.NewMediaList()
	in.Rejected = in.List.Populate(ctx, in.Prober, in.Profile, paths, in.fileOptions()...)
	if err := ctx.Err(); err != nil {
		return in, &ExitError{Code: ExitCLIError, Err: err}
	}
	return in, nil
}

// reportRejected prints the rejected paths and fails when nothing is left
// to work on.
func reportRejected(cmd *cobra.Command, in queueInputs) error {
	for _, r := range in.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", r.Path, r.Err)
	}
	if in.List.Len() == 0 {
		err := errors.New("no usable input files")
		if len(in.Rejected) > 0 {
			err = fmt.Errorf("%s: %w", err.Error(), in.Rejected[0].Err)
		}
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}
	return nil
}

// exitCodeFor maps an error to the CLI exit code.
func exitCodeFor(err error) int {
	var (
		ee  *ExitError
		ime *media.InvalidMetadataError
		pe  *probe.ProbeError
		ce  *converter.ConversionError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ee):
		return ee.Code
	case errors.Is(err, convlib.ErrNotFound):
		return ExitMissingDep
	case errors.As(err, &ime), errors.As(err, &pe):
		return ExitProbeError
	case errors.As(err, &ce):
		return ExitConversionError
	default:
		return ExitCLIError
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

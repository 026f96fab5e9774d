package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"videomorph/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profiles [PROFILE]",
		Short:         "List conversion profiles, or the qualities of one profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(optionsFromFlags(cmd))
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range cat.Names() {
					qs, _ := cat.Qualities(name)
					fmt.Fprintf(w, "%-6s %d preset(s)\n", name, len(qs))
				}
				return nil
			}
			qs, err := cat.Qualities(args[0])
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUALITY\tTAG\tEXT\tPARAMS")
			for _, q := range qs {
				p, _ := cat.Lookup(q)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Quality, p.Tag, p.Extension, p.Params)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newProfilesExportCmd())
	return cmd
}

func newProfilesExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "export [FILE]",
		Short:         "Write the built-in catalog to FILE (default: stdout) for customization",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return profile.Export(cmd.OutOrStdout())
			}
			force, _ := cmd.Flags().GetBool("force")
			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(args[0], flags, 0o644)
			if err != nil {
				if errors.Is(err, os.ErrExist) {
					err = fmt.Errorf("%s already exists (use --force to overwrite)", args[0])
				}
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if err := profile.Export(f); err != nil {
				_ = f.Close()
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if err := f.Close(); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

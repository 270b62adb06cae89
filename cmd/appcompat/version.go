package appcompat

import (
	"fmt"

	"github.com/appcompat/appcompat/internal/config"
	"github.com/appcompat/appcompat/internal/update"
	"github.com/spf13/cobra"
)

func newVersionCmd(flags *ctlFlags) *cobra.Command {
	var noUpdateCheck bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			out := c.OutOrStdout()
			fmt.Fprintln(out, "appcompat", version)

			fc, err := flags.settings()
			if err != nil {
				return err
			}
			if noUpdateCheck || !config.Bool(fc.UpdateCheck, true) {
				return nil
			}
			latest, newer, _ := update.Check(c.Context(), version, false)
			if newer {
				fmt.Fprintf(out, "A newer release is available: %s (run appcompatctl self-update)\n", latest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noUpdateCheck, "no-update-check", false, "disable update check")
	return cmd
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update appcompat to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := selfUpdate(); err != nil {
				return fmt.Errorf("self-update: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), "updated to the latest release")
			return nil
		},
	}
}

package appcompat

import (
	"fmt"

	"github.com/appcompat/appcompat/internal/launcher"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func newCommandCmd(flags *ctlFlags) *cobra.Command {
	var copyLine, keep bool
	cmd := &cobra.Command{
		Use:   "command [--copy] [--keep] [--] [veridex arguments...]",
		Short: "Print the veridex command line appcompat would run",
		Long:  "command materializes the resources and prints the assembled veridex command line, shell-quoted, without running it. Without --keep the files are removed again on exit.",
		Example: `
# Inspect the arguments passed to veridex
appcompatctl command -- --dex-file app.apk

# Keep the files and copy the command for manual runs
appcompatctl command --keep --copy -- --dex-file app.apk
`,
		RunE: func(c *cobra.Command, args []string) error {
			fc, err := flags.settings()
			if err != nil {
				return err
			}
			log := newLogger(fc, c.ErrOrStderr())
			b, err := openBundle(fc)
			if err != nil {
				return err
			}
			opts := launcherOptions(fc, c.OutOrStdout(), log)
			opts.Banner = false
			if keep {
				opts.Materialize.Keep = true
			}

			p, err := launcher.New(b, opts).Prepare(args)
			if err != nil {
				return err
			}
			defer p.Close()

			line := p.Invocation.String()
			fmt.Fprintln(c.OutOrStdout(), line)
			if !opts.Materialize.Keep && opts.Materialize.CacheDir == "" {
				fmt.Fprintf(c.ErrOrStderr(), "note: %s is removed on exit; use --keep to retain it\n", p.Workspace())
			}
			if copyLine {
				if err := clipboard.WriteAll(line); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(c.ErrOrStderr(), "copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&copyLine, "copy", false, "copy the command line to the clipboard")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the materialized files")
	return cmd
}

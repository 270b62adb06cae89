package appcompat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/appcompat/appcompat/internal/config"
	"github.com/appcompat/appcompat/internal/launcher"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(flags *ctlFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	var output string
	var force, keepTemp, noBanner, history bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .appcompat.yml with the default options",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s exists; use --force to overwrite", output)
				}
			}
			fc := config.FileConfig{
				KeepTemp: boolPtr(keepTemp),
				NoBanner: boolPtr(noBanner),
				History:  boolPtr(history),
				LogLevel: strPtr("warn"),
				Veridex: &config.VeridexConfig{
					ExcludeAPILists: strPtr(launcher.DefaultExcludeAPILists),
				},
			}
			b, err := yaml.Marshal(&fc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, b, 0644); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "Wrote", output)
			return nil
		},
	}
	initCmd.Flags().StringVar(&output, "output", ".appcompat.yml", "output file path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "keep extracted resources after each run")
	initCmd.Flags().BoolVar(&noBanner, "no-banner", false, "suppress the notice banner")
	initCmd.Flags().BoolVar(&history, "history", false, "record runs in the history log")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			fc, err := flags.settings()
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(&fc)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if useColor(fc, out) {
				return highlightYAML(out, string(b))
			}
			_, err = out.Write(b)
			return err
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config files that are consulted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			out := c.OutOrStdout()
			explicit := flags.configPath
			if explicit == "" {
				explicit = config.ConfigPath()
			}
			if explicit != "" {
				fmt.Fprintln(out, "explicit:", explicit)
			}
			if wd, err := os.Getwd(); err == nil {
				if p, err := config.FindLocal(wd); err == nil {
					fmt.Fprintln(out, "local:   ", p)
				}
			}
			if p := config.GlobalPath(); p != "" {
				state := "missing"
				if _, err := os.Stat(p); err == nil {
					state = "present"
				} else if !errors.Is(err, os.ErrNotExist) {
					state = err.Error()
				}
				fmt.Fprintf(out, "global:   %s (%s)\n", p, state)
			}
			return nil
		},
	}

	cfgCmd.AddCommand(initCmd, showCmd, pathCmd)
	return cfgCmd
}

func highlightYAML(w io.Writer, src string) error {
	lexer := lexers.Get("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		_, err = io.WriteString(w, src)
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		_, err = io.WriteString(w, src)
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

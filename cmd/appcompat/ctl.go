package appcompat

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/appcompat/appcompat/internal/config"
	"github.com/spf13/cobra"
)

// ctlFlags are the persistent flags of appcompatctl. Set flags form the
// highest-precedence configuration layer.
type ctlFlags struct {
	configPath string
	assetsDir  string
	logLevel   string
	noColor    bool
}

func (f *ctlFlags) layer() config.FileConfig {
	var fc config.FileConfig
	fc.AssetsDir = optStrPtr(f.assetsDir)
	fc.LogLevel = optStrPtr(f.logLevel)
	if f.noColor {
		fc.NoColor = boolPtr(true)
	}
	return fc
}

func (f *ctlFlags) settings() (config.FileConfig, error) {
	return loadConfig(f.layer(), f.configPath)
}

// newCtlCmd builds the appcompatctl command tree.
func newCtlCmd() *cobra.Command {
	flags := &ctlFlags{}
	root := &cobra.Command{
		Use:           "appcompatctl",
		Short:         "Maintain the appcompat launcher and its bundled resources",
		Long:          "appcompatctl inspects, verifies and rebuilds the resources bundled with appcompat, prints the veridex command line it would run, and manages configuration and run history.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: .appcompat.yml, then ~/.config/appcompat/config.yml)")
	root.PersistentFlags().StringVar(&flags.assetsDir, "assets-dir", "", "read resources from this directory instead of the bundle")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colorized output")

	root.AddCommand(
		newAssetsCmd(flags),
		newCommandCmd(flags),
		newConfigCmd(flags),
		newHistoryCmd(flags),
		newVersionCmd(flags),
		newSelfUpdateCmd(),
		newCompletionCmd(root),
	)
	return root
}

// ExecuteCtl runs appcompatctl. It should be called by the main package.
func ExecuteCtl() {
	os.Exit(runCtl(os.Args[1:], os.Stdout, os.Stderr))
}

func runCtl(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newCtlCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return 0
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func strPtr(s string) *string { return &s }
func boolPtr(v bool) *bool    { return &v }

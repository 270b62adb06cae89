package appcompat

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// newRootCmd builds the launcher command. It defines no flags: every
// argument, --help included, belongs to veridex. The child's exit status
// is stored in code.
func newRootCmd(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "appcompat [veridex arguments...]",
		Short:              "Check an app for hidden API usage with veridex",
		Long:               "appcompat extracts the bundled veridex analyzer, its API flags and core stub archives, then runs veridex with the given arguments.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(c *cobra.Command, args []string) error {
			var err error
			*code, err = launch(c.Context(), args, c.InOrStdin(), c.OutOrStdout(), c.ErrOrStderr())
			return err
		},
	}
	return cmd
}

// Execute runs the appcompat launcher and exits with the status of veridex.
// Launcher failures exit 2. It should be called by the main package.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	// cobra intercepts its hidden completion commands even with flag
	// parsing disabled; those words belong to veridex here.
	if len(args) > 0 && (args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd) {
		code, err := launch(context.Background(), args, stdin, stdout, stderr)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 2
		}
		return code
	}

	code := 0
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return code
}

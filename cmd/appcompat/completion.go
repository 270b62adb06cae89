package appcompat

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
appcompatctl completion bash > /etc/bash_completion.d/appcompatctl

# Zsh
appcompatctl completion zsh > "${fpath[1]}/_appcompatctl"

# Fish
appcompatctl completion fish > ~/.config/fish/completions/appcompatctl.fish

# PowerShell
appcompatctl completion powershell > $PROFILE\appcompatctl.ps1
`,
	}
}

package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for fontfetch.

Bash:
  $ source <(fontfetch completion bash)

Zsh:
  $ fontfetch completion zsh > "${fpath[1]}/_fontfetch"

Fish:
  $ fontfetch completion fish > ~/.config/fish/completions/fontfetch.fish

PowerShell:
  PS> fontfetch completion powershell | Out-String | Invoke-Expression

Family names complete from the cached catalog; run "fontfetch catalog fetch"
once to enable that.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeFamilies suggests catalog families without touching the network.
func (c *CLI) completeFamilies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	eng, err := c.openEngine(cmd.Context(), cfg, loggerFromContext(cmd.Context()))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer eng.Close()
	if !eng.Catalog.Exist() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completionCandidates(eng.Catalog.Families(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completionCandidates returns families with the given prefix,
// case-insensitively.
func completionCandidates(families []string, prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, f := range families {
		if strings.HasPrefix(strings.ToLower(f), prefix) {
			out = append(out, f)
		}
	}
	return out
}

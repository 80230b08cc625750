package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/sink"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dailyart.

To load completions:

Bash:
  $ source <(dailyart completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ dailyart completion bash > /etc/bash_completion.d/dailyart
  # macOS:
  $ dailyart completion bash > $(brew --prefix)/etc/bash_completion.d/dailyart

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ dailyart completion zsh > "${fpath[1]}/_dailyart"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ dailyart completion fish | source

  # To load completions for each session, execute once:
  $ dailyart completion fish > ~/.config/fish/completions/dailyart.fish

PowerShell:
  PS> dailyart completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> dailyart completion powershell > dailyart.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// registerArtFlagCompletions completes --style, --format and --palette.
func (c *CLI) registerArtFlagCompletions(cmd *cobra.Command) {
	fixed := func(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("style", fixed(pipeline.Styles()))
	_ = cmd.RegisterFlagCompletionFunc("format", fixed(sink.Formats()))
	_ = cmd.RegisterFlagCompletionFunc("palette", func(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
		reg := palette.Default()
		if cfg, err := c.Config(); err == nil {
			if r, err := cfg.Registry(); err == nil {
				reg = r
			}
		}
		var out []string
		for _, p := range reg.All() {
			if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(prefix)) {
				out = append(out, p.Name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

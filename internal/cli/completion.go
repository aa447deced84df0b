package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/snapshot"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for objgraph.

Besides commands and flags, the script completes snapshot ids for
"store get" and "store delete" by listing the store selected with
--config, so keep --config ahead of the id on the command line.

Load it for the current shell:

  $ source <(objgraph completion bash)
  $ source <(objgraph completion zsh)
  $ objgraph completion fish | source
  PS> objgraph completion powershell | Out-String | Invoke-Expression

To install it permanently, write the script to the completion directory of
your shell, for example:

  $ objgraph completion bash > /etc/bash_completion.d/objgraph
  $ objgraph completion zsh > "${fpath[1]}/_objgraph"
  $ objgraph completion fish > ~/.config/fish/completions/objgraph.fish
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

// completeSnapshotIDs offers the ids in the configured namespace that start
// with toComplete. Cobra skips the persistent pre-run hooks while completing,
// so the config is loaded here. Store errors yield no candidates.
func (c *CLI) completeSnapshotIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if err := c.setup(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()

	var ids []string
	err := c.withRunner(ctx, func(r *snapshot.Runner) error {
		all, err := r.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range all {
			if strings.HasPrefix(id, toComplete) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		c.Logger.Debug("complete snapshot ids", "err", err)
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/session"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for flowchart.

Completions cover commands, flags, formats and layouts, and the ids of
saved drafts for --draft, "drafts show" and "drafts rm".

Bash:
  $ source <(flowchart completion bash)

Zsh:
  $ flowchart completion zsh > "${fpath[1]}/_flowchart"

Fish:
  $ flowchart completion fish > ~/.config/fish/completions/flowchart.fish

PowerShell:
  PS> flowchart completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Generating a script needs no config or draft store.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
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

	return cmd
}

// registerDraftFlag adds --draft to cmd with draft id completion.
func (c *CLI) registerDraftFlag(cmd *cobra.Command, p *string, usage string) {
	cmd.Flags().StringVar(p, "draft", "", usage)
	_ = cmd.RegisterFlagCompletionFunc("draft", c.completeDraftIDs)
}

// completeDraftIDs lists saved drafts whose id starts with toComplete.
// Ids already on the command line are left out.
func (c *CLI) completeDraftIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := c.requireDraftStore(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer s.Close()

	drafts, err := s.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return draftCompletions(drafts, args, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// draftCompletions formats matching drafts as "id\tdescription".
func draftCompletions(drafts []*session.Draft, exclude []string, prefix string) []string {
	var out []string
	for _, d := range drafts {
		if !strings.HasPrefix(d.ID, prefix) || slices.Contains(exclude, d.ID) {
			continue
		}
		desc := fmt.Sprintf("%d shapes, %d edges", len(d.Diagram.Shapes), len(d.Diagram.Edges))
		if d.Name != "" {
			desc = d.Name + ", " + desc
		}
		out = append(out, d.ID+"\t"+desc)
	}
	return out
}

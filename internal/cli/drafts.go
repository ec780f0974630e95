package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/config"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/session"
)

// draftsCommand creates the draft management command.
func (c *CLI) draftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage autosaved drafts",
	}

	cmd.AddCommand(c.draftsListCommand())
	cmd.AddCommand(c.draftsShowCommand())
	cmd.AddCommand(c.draftsRemoveCommand())
	cmd.AddCommand(c.draftsClearCommand())
	cmd.AddCommand(c.draftsPathCommand())

	return cmd
}

// withDrafts opens the draft store for the duration of fn.
func (c *CLI) withDrafts(ctx context.Context, fn func(session.Store) error) error {
	s, err := c.requireDraftStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (c *CLI) draftsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved drafts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withDrafts(ctx, func(s session.Store) error {
				if err := s.Cleanup(ctx); err != nil {
					c.Logger.Debug("draft cleanup failed", "err", err)
				}
				drafts, err := s.List(ctx)
				if err != nil {
					return err
				}
				if len(drafts) == 0 {
					printInfo("No drafts")
					return nil
				}
				fmt.Println(draftsTable(drafts, time.Now()))
				printNextStep("Resume with", "flowchart edit --draft ID")
				return nil
			})
		},
	}
}

func (c *CLI) draftsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one draft",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeDraftIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withDrafts(ctx, func(s session.Store) error {
				d, err := session.Load(ctx, s, args[0])
				if err != nil {
					return err
				}
				for _, kv := range draftDetails(d, s.Backend(), time.Now()) {
					printKeyValue(kv[0], kv[1])
				}
				printNextStep("Resume with", "flowchart edit --draft "+d.ID)
				return nil
			})
		},
	}
}

// draftDetails lists the fields shown by "drafts show".
func draftDetails(d *session.Draft, backend string, now time.Time) [][2]string {
	name := d.Name
	if name == "" {
		name = "—"
	}
	expires := "never"
	if !d.ExpiresAt.IsZero() {
		expires = d.ExpiresAt.Local().Format("Jan 2, 2006 15:04")
	}
	return [][2]string{
		{"ID", d.ID},
		{"Name", name},
		{"Backend", backend},
		{"Shapes", fmt.Sprintf("%d", len(d.Diagram.Shapes))},
		{"Edges", fmt.Sprintf("%d", len(d.Diagram.Edges))},
		{"Dangling", fmt.Sprintf("%d", len(d.Diagram.Dangling()))},
		{"Created", formatRelativeTime(d.CreatedAt, now)},
		{"Updated", formatRelativeTime(d.UpdatedAt, now)},
		{"Expires", expires},
	}
}

// draftsTable renders drafts as a bordered table.
func draftsTable(drafts []*session.Draft, now time.Time) string {
	rows := make([][]string, len(drafts))
	for i, d := range drafts {
		name := d.Name
		if name == "" {
			name = "—"
		}
		expires := "never"
		if !d.ExpiresAt.IsZero() {
			expires = d.ExpiresAt.Local().Format("Jan 2, 2006")
		}
		rows[i] = []string{
			d.ID,
			name,
			fmt.Sprintf("%d", len(d.Diagram.Shapes)),
			fmt.Sprintf("%d", len(d.Diagram.Edges)),
			formatRelativeTime(d.UpdatedAt, now),
			expires,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Shapes", "Edges", "Updated", "Expires").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col >= 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// formatRelativeTime formats t relative to now ("5m ago", "3d ago").
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

func (c *CLI) draftsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm ID...",
		Aliases:           []string{"remove"},
		Short:             "Delete drafts",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeDraftIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withDrafts(ctx, func(s session.Store) error {
				for _, id := range args {
					if err := errors.ValidateDraftID(id); err != nil {
						return err
					}
					if err := s.Delete(ctx, id); err != nil {
						return err
					}
					printSuccess("Deleted draft %s", id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) draftsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withDrafts(ctx, func(s session.Store) error {
				n, err := session.Clear(ctx, s)
				if err != nil {
					return err
				}
				printSuccess("Deleted %d drafts", n)
				printDetail("Backend: %s", s.Backend())
				return nil
			})
		},
	}
}

func (c *CLI) draftsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where drafts are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := c.cfg.Drafts
			switch d.Backend {
			case config.BackendRedis:
				fmt.Println("redis://" + d.RedisAddr)
			case config.BackendMongo:
				fmt.Println(d.MongoURI + "/" + d.MongoDatabase)
			case config.BackendNone:
				printInfo("Drafts are disabled")
			default:
				s, err := session.NewFileStore(d.Dir)
				if err != nil {
					return err
				}
				fmt.Println(s.Path())
			}
			return nil
		},
	}
}

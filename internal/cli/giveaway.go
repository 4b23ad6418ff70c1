package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Voridan/giveaway-platform/internal/app"
	"github.com/Voridan/giveaway-platform/internal/common/validation"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	giveawaysvc "github.com/Voridan/giveaway-platform/internal/service/giveaway"
)

// NewGiveawayCommand groups moderation and lifecycle operations.
func NewGiveawayCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "giveaway",
		Aliases: []string{"g"},
		Short:   "Moderate and inspect giveaways",
	}

	cmd.AddCommand(idCommand(opts, "approve", "Approve a giveaway and notify its owner",
		func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error {
			g, err := a.Service.Approve(cmd.Context(), id)
			if err != nil {
				return err
			}
			return out.Print(g, fmt.Sprintf("giveaway %d approved", g.ID))
		}))
	cmd.AddCommand(idCommand(opts, "reject", "Reject and delete a giveaway pending moderation",
		func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error {
			if err := a.Service.Reject(cmd.Context(), id); err != nil {
				return err
			}
			return out.Print(map[string]int64{"rejected": id}, fmt.Sprintf("giveaway %d rejected", id))
		}))
	cmd.AddCommand(idCommand(opts, "end", "End a giveaway",
		func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error {
			if err := a.Service.End(cmd.Context(), id); err != nil {
				return err
			}
			return out.Print(map[string]int64{"ended": id}, fmt.Sprintf("giveaway %d ended", id))
		}))
	cmd.AddCommand(idCommand(opts, "winner", "Draw the winner of an ended giveaway",
		func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error {
			w, err := a.Service.SelectWinner(cmd.Context(), id)
			if err != nil {
				return err
			}
			return out.Print(map[string]string{"winner": w}, w)
		}))
	cmd.AddCommand(idCommand(opts, "results", "Show participants and winner",
		func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error {
			r, err := a.Service.Results(cmd.Context(), id)
			if err != nil {
				return err
			}
			winner := "-"
			if r.Winner != nil {
				winner = *r.Winner
			}
			return out.Print(r, fmt.Sprintf("participants=%d winner=%s\n%s",
				len(r.Participants), winner, strings.Join(r.Participants, " ")))
		}))
	cmd.AddCommand(idCommand(opts, "stats", "Show participant counts of an owner's giveaways",
		func(cmd *cobra.Command, a *app.App, ownerID int64, out *OutputFormatter) error {
			stats, err := a.Service.ParticipantsStats(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			var b strings.Builder
			for _, s := range stats {
				fmt.Fprintf(&b, "%d\t%d\t%s\n", s.ID, s.ParticipantsCount, s.Title)
			}
			return out.Print(stats, strings.TrimRight(b.String(), "\n"))
		}))
	cmd.AddCommand(newListCommand(opts))
	return cmd
}

type idRunner func(cmd *cobra.Command, a *app.App, id int64, out *OutputFormatter) error

func idCommand(opts *RootOptions, use, short string, run idRunner) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			if err := validation.ValidatePositiveInt(id, "id"); err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				return run(cmd, a, id, &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()})
			})
		},
	}
}

type ListOptions struct {
	*RootOptions
	Shape    string
	UserID   int64
	LastID   int64
	Offset   int
	Limit    int
	Backward bool
}

func newListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Page through giveaways (unmoderated, owned or partnered)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := giveawaysvc.PageParams{Offset: opts.Offset, Limit: opts.Limit}
			if opts.LastID > 0 {
				params.LastItemID = &opts.LastID
			}
			forward := !opts.Backward
			params.Forward = &forward

			return opts.withApp(cmd.Context(), func(a *app.App) error {
				var (
					page *dg.Page
					err  error
				)
				switch opts.Shape {
				case "unmoderated":
					page, err = a.Service.ListUnmoderated(cmd.Context(), params)
				case "owned":
					page, err = a.Service.ListOwned(cmd.Context(), opts.UserID, params)
				case "partnered":
					page, err = a.Service.ListPartnered(cmd.Context(), opts.UserID, params)
				default:
					return fmt.Errorf("invalid shape %q: must be unmoderated, owned or partnered", opts.Shape)
				}
				if err != nil {
					return err
				}
				var b strings.Builder
				fmt.Fprintf(&b, "total %d\n", page.Total)
				for _, g := range page.Items {
					fmt.Fprintf(&b, "%d\t%s\t%d\t%s\n", g.ID, g.State(), g.ParticipantsCount, g.Title)
				}
				out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(page, strings.TrimRight(b.String(), "\n"))
			})
		},
	}
	cmd.Flags().StringVar(&opts.Shape, "shape", "unmoderated", "unmoderated|owned|partnered")
	cmd.Flags().Int64Var(&opts.UserID, "user", 0, "user id for owned and partnered")
	cmd.Flags().Int64Var(&opts.LastID, "last-id", 0, "resume after this giveaway id")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip after the cursor")
	cmd.Flags().IntVar(&opts.Limit, "limit", dg.DefaultPageLimit, "page size")
	cmd.Flags().BoolVar(&opts.Backward, "backward", false, "page towards lower ids")
	return cmd
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Voridan/giveaway-platform/internal/app"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
)

type CollectOptions struct {
	*RootOptions
	PostURL string
	Enqueue bool
	AsOwner int64
}

// NewCollectCommand runs a collection in-process, or enqueues one the way
// the owner would.
func NewCollectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "collect <giveaway-id>",
		Short: "Collect post commenters as participants",
		Long: `Collect post commenters as participants.

Without --enqueue the run happens in this process and bypasses the
ownership and moderation checks of the request path; the merge still
refuses giveaways that are on moderation or ended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid giveaway id %q: %w", args[0], err)
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				if opts.Enqueue {
					if err := a.Service.CollectParticipants(cmd.Context(), id, opts.AsOwner, opts.PostURL); err != nil {
						return err
					}
					return out.Print(map[string]interface{}{"giveaway_id": id, "enqueued": true}, "collection enqueued")
				}

				postURL := opts.PostURL
				if postURL == "" {
					g, err := a.Service.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					postURL = g.PostURL
				}
				res, err := a.NewCollector().Collect(cmd.Context(), dg.CollectRequested{GiveawayID: id, PostURL: postURL})
				if err != nil {
					return err
				}
				return out.Print(res, fmt.Sprintf("pages=%d collected=%d added=%d stop=%s",
					res.Pages, res.Collected, res.Added, res.Stop))
			})
		},
	}

	cmd.Flags().StringVar(&opts.PostURL, "url", "", "post url (defaults to the giveaway's post)")
	cmd.Flags().BoolVar(&opts.Enqueue, "enqueue", false, "publish a collect request instead of running locally")
	cmd.Flags().Int64Var(&opts.AsOwner, "as", 0, "caller user id for --enqueue")
	return cmd
}

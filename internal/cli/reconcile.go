package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Voridan/giveaway-platform/internal/app"
)

// NewReconcileCommand recounts participant counters once.
func NewReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair participant counters that drifted from the stored entrants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				fixed, err := a.Service.ReconcileCounts(cmd.Context())
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(map[string]int{"fixed": fixed}, fmt.Sprintf("fixed %d giveaway(s)", fixed))
			})
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Voridan/giveaway-platform/internal/app"
	"github.com/Voridan/giveaway-platform/internal/common/config"
	"github.com/Voridan/giveaway-platform/internal/common/logger"
)

const serviceName = "giveawayctl"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the operator CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Operate the giveaway platform",
		Long:  "Operator tooling for migrations, moderation, collection runs and counter maintenance.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewCollectCommand(opts))
	cmd.AddCommand(NewGiveawayCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(serviceName, o.Verbose || cfg.Debug)
	o.cfg = cfg
	return cfg, nil
}

// withApp wires the application for the duration of fn.
func (o *RootOptions) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, serviceName)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

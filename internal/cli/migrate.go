package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Voridan/giveaway-platform/internal/platform/postgres"
)

type MigrateOptions struct {
	*RootOptions
	DSN string
}

// NewMigrateCommand creates the migrate command with up, down and version.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database URL (defaults to DB_* settings)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := opts.dsn()
			if err != nil {
				return err
			}
			return postgres.MigrateUp(dsn)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down <steps>",
		Short: "Roll back the given number of migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			dsn, err := opts.dsn()
			if err != nil {
				return err
			}
			return postgres.MigrateDown(dsn, steps)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := opts.dsn()
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(dsn)
			if err != nil {
				return err
			}
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Print(map[string]interface{}{"version": version, "dirty": dirty},
				fmt.Sprintf("version %d (dirty=%t)", version, dirty))
		},
	})
	return cmd
}

func (o *MigrateOptions) dsn() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}
	cfg, err := o.config()
	if err != nil {
		return "", err
	}
	return cfg.Postgres.GetDSN(), nil
}

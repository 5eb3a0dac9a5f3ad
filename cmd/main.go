package main

import (
	"fmt"
	"os"

	"clinic-calendar/cmd/bootstrap"
	"clinic-calendar/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-calendar",
		Short: "Calendar gateway for the clinic backend",
		// Running without a subcommand serves, as the container entrypoint expects.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	// Initialize application with all dependencies
	app, err := bootstrap.New()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Run the application
	return app.Run()
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run audit log database migrations",
	}
	cmd.PersistentFlags().String("dir", "./migrations", "Path to migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, (*database.Migrator).Up)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, (*database.Migrator).Down)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version: %d dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, run func(*database.Migrator) error) error {
	dir, _ := cmd.Flags().GetString("dir")

	cfg, log, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	migrator, err := database.NewMigrator(cfg.DB, dir, log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return run(migrator)
}

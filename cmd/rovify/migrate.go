package main

import (
	"fmt"
	"rovify-backend/config"
	"rovify-backend/database"
	"rovify-backend/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations(0)
	},
}

var downSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if downSteps < 1 {
			return fmt.Errorf("migrate down: --steps must be at least 1")
		}
		return runMigrations(-downSteps)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigrations(steps int) error {
	version, dirty, err := database.Migrate(viper.GetString(config.DBURL), viper.GetString(config.DBMigrations), steps)
	if err != nil {
		return err
	}
	logger.Infof(ctx, "migrate: schema at version %d (dirty: %t)", version, dirty)
	return nil
}

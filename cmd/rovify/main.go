package main

import (
	"context"
	"rovify-backend/config"
	c "rovify-backend/context"
	"rovify-backend/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultCorrelationID = "00000000.00000000"

var (
	version string
	cfgPath string
	ctx     context.Context
)

var rootCmd = &cobra.Command{
	Use:           "rovify",
	Short:         "Rovify events, ticketing and social API",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	ctx = c.SetContextWithValue(context.Background(), c.ContextKeyCorrelationID, defaultCorrelationID)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads an optional .env into the environment, then the YAML config file if given.
func loadConfig() error {
	if err := godotenv.Load(); err == nil {
		logger.Info(ctx, "loadConfig: loaded .env")
	}

	if cfgPath != "" {
		viper.SetConfigFile(cfgPath)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	logger.Configure(viper.GetString(config.LogLevel), viper.GetString(config.LogFormat))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf(ctx, "main: %+v", err)
	}
}

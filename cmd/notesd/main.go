package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/notes/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "notesd",
	Short:   "Per-owner notes API with AWS Sig V4 authentication",
	Long: `notesd serves a small JSON API for creating, reading, listing,
updating and deleting notes. Every note belongs to the caller that
created it; callers are identified by AWS Signature V4, a trusted
gateway header, or not at all.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var files []string
		if configFile != "" {
			files = []string{configFile}
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres, dynamodb (default: sqlite, env: NOTES_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: notes.db, env: NOTES_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: NOTES_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

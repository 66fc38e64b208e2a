// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-reader CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tsato-cnlab/paper-reader/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process-wide structured logger, configured in the root
// command's pre-run.
var logger = zap.NewNop()

// secretDefault returns fallback when non-empty, then the secret value
// for key, then the PAPER_READER-prefixed environment variable via viper.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return viper.GetString(key)
}

// rootCmd is the base command for the paper-reader CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-reader",
	Short: "Two-stage AI analysis of research papers from a Zotero library",
	Long: `paper-reader batch-processes research papers into structured summaries
and Marp slide decks using a two-stage generation pipeline: a fast model
tier extracts a high-resolution restatement of each paper, then an
advanced tier turns it into the requested outputs. Retry with fixed
waits masks rate limiting on the advanced tier, and one paper's failure
never aborts the batch.

Papers come from a Zotero collection (PDF attachments converted locally)
or from a directory of already-converted text files. Results land in
per-paper output folders, a SQLite artifact index, and optionally a
Notion database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first, so secrets and config can reference it.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s

		verbose, _ := cmd.Flags().GetBool("verbose")
		return initLogger(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func initLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-reader.yaml or ~/.config/paper-reader/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-reader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-reader"))
		}
	}

	viper.SetEnvPrefix("PAPER_READER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

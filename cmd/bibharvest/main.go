// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibharvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/internal/secrets"
	"github.com/pdiddy/bibharvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "bibharvest/0.1"
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bibharvest CLI.
var rootCmd = &cobra.Command{
	Use:   "bibharvest",
	Short: "Incremental harvester for bibliographic article metadata",
	Long: `bibharvest maintains a file-based dataset of journal and conference article
metadata. Discovery enumerates publications year by year, integration folds
the yearly snapshots into the global publication set, and harvesting fetches
each publication's articles with per-year change detection so repeat runs
only refetch years whose remote record count changed.

Each pipeline stage is a subcommand: discover, integrate, harvest, status.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibharvest.yaml or ~/.config/bibharvest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibharvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibharvest"))
		}
	}

	viper.SetEnvPrefix("BIBHARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// addHTTPFlags registers the HTTP flags shared by the commands that talk
// to the remote service.
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().Duration("delay", 0, "minimum delay between consecutive requests (default 1s)")
	cmd.Flags().Int("retries", 0, "retry attempts for transient failures (default 5)")
	cmd.Flags().String("api-key", "", "API key for the search service (default from .secrets/search-api-key)")
}

// searchOptions builds the client options shared by the commands that
// talk to the remote service: the API key and, when configured, the
// polite contact address sent with every request.
func searchOptions(cmd *cobra.Command) []searchapi.Option {
	apiKey, _ := cmd.Flags().GetString("api-key")
	opts := []searchapi.Option{
		searchapi.WithAPIKey(secretDefault("search-api-key", apiKey)),
	}
	if email := secretDefault("polite-email", ""); email != "" {
		opts = append(opts, searchapi.WithContactEmail(email))
	}
	return opts
}

// httpConfigFromFlags builds the shared HTTP config. The delay flag is a
// minimum inter-request spacing, expressed internally as a rate cap shared
// across all workers.
func httpConfigFromFlags(cmd *cobra.Command) types.HTTPConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	retries, _ := cmd.Flags().GetInt("retries")

	return types.HTTPConfig{
		Timeout:           timeout,
		UserAgent:         defaultUserAgent,
		MaxRetries:        retries,
		RequestsPerSecond: 1.0 / delay.Seconds(),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history-tools/internal/catalog"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/server"
	"github.com/ademuri/streaming-history-tools/internal/service"
	"github.com/ademuri/streaming-history-tools/internal/store"
)

const envPrefix = "STREAMING_HISTORY"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streaming-history",
	Short: "Analyzes Spotify streaming-history exports",
	Long: `Answers questions about a Spotify extended streaming-history export:
top songs, artists and albums, what was played on a day, and overall listening
statistics. Run "serve" to answer the same questions over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.streaming-history.yaml)")

	flags := rootCmd.PersistentFlags()
	flags.Int("limit", server.DefaultLimit, "Default number of ranked results")
	flags.Int("cache_size", 16, "Number of parsed histories to keep in memory")
	flags.Int("max_upload_mb", 64, "Largest accepted history file, in MiB")

	flags.String("catalog", "none", "Catalog used to resolve artists and albums: none, spotify or lastfm")
	flags.String("catalog_db", store.MemoryPath, "SQLite database remembering catalog lookups")
	flags.String("spotify_client_id", "", "Spotify client ID")
	flags.String("spotify_client_secret", "", "Spotify client secret")
	flags.String("api_key", "", "last.fm API key")
	flags.String("secret", "", "last.fm secret")
	flags.Int("lookup_parallelism", catalog.DefaultParallelism, "Concurrent catalog lookups")
	flags.Duration("lookup_timeout", catalog.DefaultTimeout, "Timeout for one catalog lookup")
	flags.Float64("lookup_rate", 5, "Catalog lookups per second")

	flags.String("log_level", "info", "Log level: debug, info, warn, error")
	flags.String("log_format", "console", "Log format: console or json")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			viper.BindPFlag(f.Name, f)
		}
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".streaming-history" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".streaming-history")
	}

	// STREAMING_HISTORY_API_KEY and so on.
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newService builds the analysis service from configuration. The returned
// cleanup closes the catalog memo.
func newService(ctx context.Context) (*service.Service, func(), error) {
	cfg := service.Config{
		CacheSize:         viper.GetInt("cache_size"),
		MaxUploadBytes:    int64(viper.GetInt("max_upload_mb")) << 20,
		LookupParallelism: viper.GetInt("lookup_parallelism"),
		LookupTimeout:     viper.GetDuration("lookup_timeout"),
	}

	resolver, err := catalog.New(ctx, catalog.Config{
		Catalog: viper.GetString("catalog"),
		Spotify: catalog.SpotifyConfig{
			ClientID:     viper.GetString("spotify_client_id"),
			ClientSecret: viper.GetString("spotify_client_secret"),
		},
		LastFM: catalog.LastFMConfig{
			APIKey: viper.GetString("api_key"),
			Secret: viper.GetString("secret"),
		},
		Rate: viper.GetFloat64("lookup_rate"),
	})
	if err != nil {
		return nil, nil, err
	}
	if resolver == nil {
		return service.New(cfg), func() {}, nil
	}

	db, err := store.New(viper.GetString("catalog_db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog memo: %w", err)
	}
	cfg.Resolver = catalog.NewMemo(resolver, db, catalog.DefaultMissTTL)
	return service.New(cfg), func() { db.Close() }, nil
}

// loadHistory parses the history file at path.
func loadHistory(ctx context.Context, svc *service.Service, path string) (history.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	entries, _, err := svc.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return entries, nil
}

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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analyses over HTTP",
	Long: `Starts the HTTP API. Every route under /analyze takes a history export as the
"file" field of a multipart upload. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := serve(cmd.Context())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":7070", "Address to listen on")
	serveCmd.Flags().StringSlice("cors_origins", nil, "Allowed CORS origins (default is any)")
	serveCmd.Flags().Int("rate_limit", 0, "Requests per minute per client IP, 0 for unlimited")
	for _, name := range []string{"listen", "cors_origins", "rate_limit"} {
		viper.BindPFlag(name, serveCmd.Flags().Lookup(name))
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := serverConfig()
	logging.Info().Str("catalog", viper.GetString("catalog")).Int("rate_limit", cfg.RateLimit).Msg("starting server")
	return server.New(svc, cfg).ListenAndServe(ctx)
}

func serverConfig() server.Config {
	return server.Config{
		Addr:           viper.GetString("listen"),
		DefaultLimit:   viper.GetInt("limit"),
		MaxUploadBytes: int64(viper.GetInt("max_upload_mb")) << 20,
		CORSOrigins:    viper.GetStringSlice("cors_origins"),
		RateLimit:      viper.GetInt("rate_limit"),
	}
}

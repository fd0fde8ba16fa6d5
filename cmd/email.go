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
	"bytes"
	"context"
	"fmt"
	"html"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

var defaultEmailAnalyses = []string{"explore", "top-songs", "top-artists", "top-albums"}

type SendEmailConfig struct {
	From   string
	To     string
	Source string
	Types  []string
	Filter analysis.Filter
	Limit  int
	DryRun bool
	APIKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <history_file> [analysis_name...] [period]",
	Short: "Sends an email report",
	Long: `Emails a listening report built from the history file to the given address.
  <analysis_name> is zero or more of: explore, top-songs, top-artists, top-albums, weekdays.
  With none, the report has explore, top-songs, top-artists and top-albums.
  An optional period can be given at the end (e.g. '2023' or '2023-01').`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config, err := parseEmailArgs(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = sendEmail(cmd.Context(), config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVar(&dryRun, "dry_run", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().String("from", "", "Address the report is sent from")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	emailCmd.Flags().String("sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
}

// parseEmailArgs splits <address> <history_file> [analysis_name...] [period].
func parseEmailArgs(args []string) (config SendEmailConfig, err error) {
	config = SendEmailConfig{
		From:   viper.GetString("from"),
		To:     args[0],
		Source: args[1],
		Limit:  viper.GetInt("limit"),
		DryRun: viper.GetBool("dryRun"),
		APIKey: viper.GetString("sendgrid_api_key"),
	}

	rest := args[2:]
	if len(rest) > 0 {
		if f, err := getPeriodFilter(rest[len(rest)-1]); err == nil {
			config.Filter = f
			rest = rest[:len(rest)-1]
		}
	}

	config.Types = rest
	if len(config.Types) == 0 {
		config.Types = defaultEmailAnalyses
	}
	for _, name := range config.Types {
		if _, err = getAnalyserFromName(name, AnalyserConfig{}); err != nil {
			return
		}
	}
	return
}

func sendEmail(ctx context.Context, config SendEmailConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	actions := make([]Analyser, 0, len(config.Types))
	for _, name := range config.Types {
		action, err := getAnalyserFromName(name, AnalyserConfig{config.Limit})
		if err != nil {
			return err
		}
		actions = append(actions, action)
	}

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := loadHistory(ctx, svc, config.Source)
	if err != nil {
		return err
	}

	subject, out, err := generateEmailContent(ctx, svc, entries, config, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("streaming-history", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	client := sendgrid.NewSendClient(config.APIKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func generateEmailContent(ctx context.Context, svc *service.Service, entries history.Sequence, config SendEmailConfig, actions []Analyser) (subject string, body string, err error) {
	out := new(bytes.Buffer)
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	for _, action := range actions {
		fmt.Fprintf(out, "<div>\n<h2>%s for %s:</h2>\n", html.EscapeString(action.GetName()), config.Filter)

		var a Analysis
		a, err = action.GetResults(ctx, svc, entries, config.Filter)
		if err != nil {
			err = fmt.Errorf("getting results for %s: %w", action.GetName(), err)
			return
		}
		out.WriteString(a.HTML())
		out.WriteString("</div>\n")
	}
	out.WriteString("  </body>\n</html>\n")

	subject = fmt.Sprintf("Listening report for %s", config.Filter)
	return subject, out.String(), nil
}

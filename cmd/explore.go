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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <history_file>",
	Short: "Shows whole-history statistics",
	Long: `Counts plays, distinct songs, albums and artists, whole days spent
listening, and the most active day of the week. Numbers are grouped for --locale.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tag, err := language.Parse(viper.GetString("locale"))
		if err != nil {
			fmt.Printf("Invalid locale: %v\n", err)
			os.Exit(1)
		}
		err = printAnalysis(cmd.Context(), ExploreAnalyzer{Locale: tag}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	exploreCmd.Flags().String("locale", "en", "Locale used to format numbers")
	viper.BindPFlag("locale", exploreCmd.Flags().Lookup("locale"))
}

type ExploreAnalyzer struct {
	Locale language.Tag
}

func (e ExploreAnalyzer) GetName() string {
	return "Overview"
}

// GetResults ignores the filter; explore always covers the whole history.
func (e ExploreAnalyzer) GetResults(_ context.Context, svc *service.Service, entries history.Sequence, _ analysis.Filter) (out Analysis, err error) {
	stats := svc.Explore(entries)
	formatted := stats.Formatted(e.Locale)

	out.results = [][]string{
		{"Statistic", "Value"},
		{"Plays", formatted["plays"]},
		{"Unique songs", formatted["unique-songs"]},
		{"Albums", formatted["albums"]},
		{"Artists", formatted["artists"]},
		{"Days listening", formatted["listening"]},
	}
	if day, ok := formatted["most-active-day"]; ok {
		out.results = append(out.results, []string{"Most active day", day})
	}
	out.summary = fmt.Sprintf("%s plays in total", formatted["plays"])
	return
}

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

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists <history_file> [period]",
	Short: "Gets the most played artists",
	Long: `Ranks artists by minutes played. The optional period looks like 'yyyy',
'yyyy-mm', 'yyyy-mm-dd', or a bare month number such as '7'.
With --catalog set, artists are resolved to catalog identifiers and artists the
catalog doesn't know are left out.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(cmd.Context(), TopArtistsAnalyzer{Config: AnalyserConfig{numberOrDefault(topArtistsNumber)}}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 0, "number of results to return (default is --limit)")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(ctx context.Context, svc *service.Service, entries history.Sequence, f analysis.Filter) (out Analysis, err error) {
	if svc.Enriches() {
		var ids []string
		ids, err = svc.TopArtists(ctx, entries, f, t.Config.NumToReturn)
		if err != nil {
			err = fmt.Errorf("top artists: %w", err)
			return
		}
		out.results = idTable(ids)
		out.summary = fmt.Sprintf("Resolved %d artists for %s", len(ids), f)
		return
	}

	ranked, err := analysis.TopArtists(entries, f, t.Config.NumToReturn)
	if err != nil {
		err = fmt.Errorf("top artists: %w", err)
		return
	}
	out.results = rankedTable("Artist", ranked, func(name string) string { return name })
	out.summary = fmt.Sprintf("Top %d artists for %s", len(ranked), f)
	return
}

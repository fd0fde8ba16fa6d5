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

var topAlbumsNumber int
var topAlbumsCmd = &cobra.Command{
	Use:   "top-albums <history_file> [period]",
	Short: "Gets the most played albums",
	Long: `Ranks albums by minutes played. Albums with the same title by different
artists are ranked separately. The optional period looks like 'yyyy', 'yyyy-mm',
'yyyy-mm-dd', or a bare month number such as '7'.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(cmd.Context(), TopAlbumsAnalyzer{Config: AnalyserConfig{numberOrDefault(topAlbumsNumber)}}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topAlbumsCmd)

	topAlbumsCmd.Flags().IntVarP(&topAlbumsNumber, "number", "n", 0, "number of results to return (default is --limit)")
}

type TopAlbumsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopAlbumsAnalyzer) GetName() string {
	return "Top albums"
}

func (t TopAlbumsAnalyzer) GetResults(ctx context.Context, svc *service.Service, entries history.Sequence, f analysis.Filter) (out Analysis, err error) {
	if svc.Enriches() {
		var ids []string
		ids, err = svc.TopAlbums(ctx, entries, f, t.Config.NumToReturn)
		if err != nil {
			err = fmt.Errorf("top albums: %w", err)
			return
		}
		out.results = idTable(ids)
		out.summary = fmt.Sprintf("Resolved %d albums for %s", len(ids), f)
		return
	}

	ranked, err := analysis.TopAlbums(entries, f, t.Config.NumToReturn)
	if err != nil {
		err = fmt.Errorf("top albums: %w", err)
		return
	}
	out.results = [][]string{{"Album", "Artist", "Minutes"}}
	for _, r := range ranked {
		out.results = append(out.results, []string{r.Key.Album, r.Key.Artist, fmt.Sprint(r.Minutes)})
	}
	out.summary = fmt.Sprintf("Top %d albums for %s", len(ranked), f)
	return
}

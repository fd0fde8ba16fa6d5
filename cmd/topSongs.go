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

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

var topSongsNumber int
var topSongsCmd = &cobra.Command{
	Use:   "top-songs <history_file> [period]",
	Short: "Gets the most played songs",
	Long: `Ranks track URIs by minutes played. The optional period looks like 'yyyy',
'yyyy-mm', 'yyyy-mm-dd', or a bare month number such as '7'.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(cmd.Context(), TopSongsAnalyzer{Config: AnalyserConfig{numberOrDefault(topSongsNumber)}}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topSongsCmd)

	topSongsCmd.Flags().IntVarP(&topSongsNumber, "number", "n", 0, "number of results to return (default is --limit)")
}

type TopSongsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopSongsAnalyzer) GetName() string {
	return "Top songs"
}

func (t TopSongsAnalyzer) GetResults(_ context.Context, _ *service.Service, entries history.Sequence, f analysis.Filter) (out Analysis, err error) {
	ranked, err := analysis.TopSongs(entries, f, t.Config.NumToReturn)
	if err != nil {
		err = fmt.Errorf("top songs: %w", err)
		return
	}

	out.results = rankedTable("Track URI", ranked, func(uri string) string { return uri })
	out.summary = fmt.Sprintf("Top %d songs for %s", len(ranked), f)
	return
}

// numberOrDefault falls back to the configured limit when -n is not given.
func numberOrDefault(n int) int {
	if n == 0 {
		return viper.GetInt("limit")
	}
	return n
}

// printAnalysis loads the history named by args[0], filters it by the
// optional period in args[1:], and prints the analyser's table.
func printAnalysis(ctx context.Context, a Analyser, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := parsePeriodFromArgs(args[1:])
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := loadHistory(ctx, svc, args[0])
	if err != nil {
		return err
	}

	out, err := a.GetResults(ctx, svc, entries, f)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

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

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays <history_file> [period]",
	Short: "Shows minutes listened per day of the week",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(cmd.Context(), WeekdaysAnalyzer{}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(weekdaysCmd)
}

type WeekdaysAnalyzer struct{}

func (w WeekdaysAnalyzer) GetName() string {
	return "Listening by weekday"
}

func (w WeekdaysAnalyzer) GetResults(_ context.Context, _ *service.Service, entries history.Sequence, f analysis.Filter) (out Analysis, err error) {
	days := analysis.Weekdays(entries, f)
	out.results = rankedTable("Day", days, analysis.WeekdayName)
	if day, ok := analysis.MostActiveDay(days); ok {
		out.summary = fmt.Sprintf("Most active day for %s: %s", f, analysis.WeekdayName(day))
	} else {
		out.summary = fmt.Sprintf("No listening for %s", f)
	}
	return
}

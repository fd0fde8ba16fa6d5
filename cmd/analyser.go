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
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

type Analysis struct {
	results [][]string
	summary string
}

type AnalyserConfig struct {
	// Number of results to return.
	NumToReturn int
}

type Analyser interface {
	GetResults(ctx context.Context, svc *service.Service, entries history.Sequence, f analysis.Filter) (Analysis, error)

	GetName() string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// HTML renders the results as a table for email.
func (a Analysis) HTML() string {
	out := new(bytes.Buffer)
	if len(a.results) <= 1 {
		out.WriteString("<div>No listens found.</div>\n")
	} else {
		out.WriteString("<table>\n<thead>\n<tr>")
		for _, header := range a.results[0] {
			fmt.Fprintf(out, "<th>%s</th>", html.EscapeString(header))
		}
		out.WriteString("</tr>\n</thead>\n<tbody>\n")
		for _, row := range a.results[1:] {
			out.WriteString("<tr>")
			for _, column := range row {
				fmt.Fprintf(out, "<td>%s</td>", html.EscapeString(column))
			}
			out.WriteString("</tr>\n")
		}
		out.WriteString("</tbody>\n</table>\n")
	}
	fmt.Fprintf(out, "<div>%s</div>\n", html.EscapeString(a.summary))
	return out.String()
}

// rankedTable renders a ranked result as key/minutes rows.
func rankedTable[K any](header string, ranked []analysis.Aggregate[K], key func(K) string) [][]string {
	results := [][]string{{header, "Minutes"}}
	for _, r := range ranked {
		results = append(results, []string{key(r.Key), strconv.FormatInt(r.Minutes, 10)})
	}
	return results
}

// idTable renders catalog identifiers in ranked order.
func idTable(ids []string) [][]string {
	results := [][]string{{"Rank", "Catalog ID"}}
	for i, id := range ids {
		results = append(results, []string{strconv.Itoa(i + 1), id})
	}
	return results
}

func getAnalyserFromName(name string, config AnalyserConfig) (Analyser, error) {
	switch name {
	case "top-songs":
		return TopSongsAnalyzer{Config: config}, nil
	case "top-artists":
		return TopArtistsAnalyzer{Config: config}, nil
	case "top-albums":
		return TopAlbumsAnalyzer{Config: config}, nil
	case "weekdays":
		return WeekdaysAnalyzer{}, nil
	case "explore":
		return ExploreAnalyzer{Locale: language.English}, nil
	}
	return nil, fmt.Errorf("Invalid analysis_name: %s", name)
}

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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/catalog"
	"github.com/ademuri/streaming-history-tools/internal/history"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

const testHistory = `ts,ms_played,master_metadata_track_name,master_metadata_album_artist_name,master_metadata_album_album_name,spotify_track_uri,reason_start,reason_end
2023-01-05T10:00:00Z,180000,Song A,Artist X,Album 1,spotify:track:A,clickrow,trackdone
2023-01-05T10:03:00Z,60000,Song B,Artist Y,Album 2,spotify:track:B,trackdone,trackdone
2023-02-10T08:00:00Z,120000,Song A,Artist X,Album 1,spotify:track:A,clickrow,endplay
`

type testResolver struct{}

func (testResolver) Name() string { return "test" }

func (testResolver) ResolveArtist(_ context.Context, name string) (string, error) {
	if name == "Artist Y" {
		return "", catalog.ErrNotFound
	}
	return "artist-id:" + name, nil
}

func (testResolver) ResolveAlbum(_ context.Context, album, artist string) (string, error) {
	return "album-id:" + album, nil
}

func writeTestHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "StreamingHistory.csv")
	if err := os.WriteFile(path, []byte(testHistory), 0o600); err != nil {
		t.Fatalf("writing history: %v", err)
	}
	return path
}

func loadTestHistory(t *testing.T, svc *service.Service) history.Sequence {
	t.Helper()
	entries, err := loadHistory(context.Background(), svc, writeTestHistory(t))
	if err != nil {
		t.Fatalf("loadHistory: %v", err)
	}
	return entries
}

func getResults(t *testing.T, a Analyser, svc *service.Service, f analysis.Filter) Analysis {
	t.Helper()
	out, err := a.GetResults(context.Background(), svc, loadTestHistory(t, svc), f)
	if err != nil {
		t.Fatalf("%s: %v", a.GetName(), err)
	}
	return out
}

func expectRows(t *testing.T, out Analysis, want [][]string) {
	t.Helper()
	rows := out.results[1:]
	if len(rows) != len(want) {
		t.Fatalf("got %d rows %v, want %v", len(rows), rows, want)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestTopSongsAnalyzer(t *testing.T) {
	svc := service.New(service.Config{})

	out := getResults(t, TopSongsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.Filter{})
	expectRows(t, out, [][]string{
		{"spotify:track:A", "5"},
		{"spotify:track:B", "1"},
	})

	out = getResults(t, TopSongsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.ForMonth(2023, time.February))
	expectRows(t, out, [][]string{{"spotify:track:A", "2"}})
	if out.summary != "Top 1 songs for 2023-02" {
		t.Errorf("summary = %q", out.summary)
	}
}

func TestTopSongsAnalyzer_invalidLimit(t *testing.T) {
	svc := service.New(service.Config{})
	_, err := TopSongsAnalyzer{}.GetResults(context.Background(), svc, loadTestHistory(t, svc), analysis.Filter{})
	if err == nil {
		t.Fatalf("expected an error for a zero limit")
	}
}

func TestTopArtistsAnalyzer(t *testing.T) {
	svc := service.New(service.Config{})
	out := getResults(t, TopArtistsAnalyzer{Config: AnalyserConfig{1}}, svc, analysis.Filter{})
	expectRows(t, out, [][]string{{"Artist X", "5"}})
}

func TestTopArtistsAnalyzer_resolved(t *testing.T) {
	svc := service.New(service.Config{Resolver: testResolver{}})
	out := getResults(t, TopArtistsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.Filter{})
	expectRows(t, out, [][]string{{"1", "artist-id:Artist X"}})
}

func TestTopAlbumsAnalyzer(t *testing.T) {
	svc := service.New(service.Config{})
	out := getResults(t, TopAlbumsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.ForYear(2023))
	expectRows(t, out, [][]string{
		{"Album 1", "Artist X", "5"},
		{"Album 2", "Artist Y", "1"},
	})

	svc = service.New(service.Config{Resolver: testResolver{}})
	out = getResults(t, TopAlbumsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.ForYear(2023))
	expectRows(t, out, [][]string{
		{"1", "album-id:Album 1"},
		{"2", "album-id:Album 2"},
	})
}

func TestWeekdaysAnalyzer(t *testing.T) {
	svc := service.New(service.Config{})
	out := getResults(t, WeekdaysAnalyzer{}, svc, analysis.Filter{})
	expectRows(t, out, [][]string{
		{"MONDAY", "0"},
		{"TUESDAY", "0"},
		{"WEDNESDAY", "0"},
		{"THURSDAY", "4"},
		{"FRIDAY", "2"},
		{"SATURDAY", "0"},
		{"SUNDAY", "0"},
	})
	if !strings.Contains(out.summary, "THURSDAY") {
		t.Errorf("summary = %q", out.summary)
	}

	out = getResults(t, WeekdaysAnalyzer{}, svc, analysis.ForYear(2020))
	if !strings.HasPrefix(out.summary, "No listening") {
		t.Errorf("summary = %q", out.summary)
	}
}

func TestExploreAnalyzer(t *testing.T) {
	svc := service.New(service.Config{})
	a, err := getAnalyserFromName("explore", AnalyserConfig{})
	if err != nil {
		t.Fatalf("getAnalyserFromName: %v", err)
	}
	out := getResults(t, a, svc, analysis.Filter{})
	expectRows(t, out, [][]string{
		{"Plays", "3"},
		{"Unique songs", "2"},
		{"Albums", "2"},
		{"Artists", "2"},
		{"Days listening", "0"},
		{"Most active day", "THURSDAY"},
	})
}

func TestGetAnalyserFromName_invalid(t *testing.T) {
	if _, err := getAnalyserFromName("forgotten", AnalyserConfig{}); err == nil {
		t.Errorf("expected an error for an unknown analysis")
	}
}

func TestAnalysisString(t *testing.T) {
	svc := service.New(service.Config{})
	out := getResults(t, TopArtistsAnalyzer{Config: AnalyserConfig{10}}, svc, analysis.Filter{})
	s := out.String()
	for _, want := range []string{"Artist X", "Artist Y", "Top 2 artists for all time"} {
		if !strings.Contains(s, want) {
			t.Errorf("table missing %q:\n%s", want, s)
		}
	}
}

func TestAnalysisHTML(t *testing.T) {
	out := Analysis{
		results: [][]string{{"Artist", "Minutes"}, {"Simon & Garfunkel", "3"}},
		summary: "one artist",
	}
	html := out.HTML()
	if !strings.Contains(html, "<td>Simon &amp; Garfunkel</td>") {
		t.Errorf("cells should be escaped:\n%s", html)
	}

	empty := Analysis{results: [][]string{{"Artist", "Minutes"}}}
	if !strings.Contains(empty.HTML(), "No listens found.") {
		t.Errorf("empty analysis should say so")
	}
}

func TestPrintAnalysis(t *testing.T) {
	path := writeTestHistory(t)

	if err := printAnalysis(context.Background(), TopSongsAnalyzer{Config: AnalyserConfig{5}}, []string{path, "2023"}); err != nil {
		t.Fatalf("printAnalysis: %v", err)
	}
	if err := printAnalysis(context.Background(), TopSongsAnalyzer{Config: AnalyserConfig{5}}, []string{path, "derp"}); err == nil {
		t.Errorf("printAnalysis should have errored with an invalid period")
	}
	missing := filepath.Join(t.TempDir(), "missing.csv")
	if err := printAnalysis(context.Background(), TopSongsAnalyzer{Config: AnalyserConfig{5}}, []string{missing}); err == nil {
		t.Errorf("printAnalysis should have errored with a missing file")
	}
}

func TestPrintPlayedSongs(t *testing.T) {
	path := writeTestHistory(t)

	if err := printPlayedSongs(context.Background(), path, "2023-01-05", 10); err != nil {
		t.Fatalf("printPlayedSongs: %v", err)
	}
	if err := printPlayedSongs(context.Background(), path, "2023-01", 10); err == nil {
		t.Errorf("printPlayedSongs should require a day")
	}
	if err := printPlayedSongs(context.Background(), path, "2023-01-05", 0); err == nil {
		t.Errorf("printPlayedSongs should reject a zero limit")
	}
}

package analysis

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

func entry(t *testing.T, ts string, ms string, uri, artist, album string) history.Entry {
	t.Helper()
	e, err := history.NewEntry(ts, ms, "Track "+uri, artist, album, uri, "clickrow", "trackdone")
	if err != nil {
		t.Fatalf("NewEntry(%q, %q) error: %v", ts, ms, err)
	}
	return e
}

// threeEntries is the worked example: A for 3+2 minutes across January and
// February, B for 1 minute in January.
func threeEntries(t *testing.T) history.Sequence {
	return history.Sequence{
		entry(t, "2023-01-05T10:00:00Z", "180000", "A", "Artist X", "Album 1"),
		entry(t, "2023-01-05T10:03:00Z", "60000", "B", "Artist Y", "Album 2"),
		entry(t, "2023-02-10T08:00:00Z", "120000", "A", "Artist X", "Album 1"),
	}
}

func TestTopSongs_year(t *testing.T) {
	got, err := TopSongs(threeEntries(t), ForYear(2023), 10)
	if err != nil {
		t.Fatalf("TopSongs() error: %v", err)
	}
	want := []Aggregate[string]{{"A", 5}, {"B", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopSongs(2023) = %v, want %v", got, want)
	}
}

func TestTopSongs_yearAndMonth(t *testing.T) {
	got, err := TopSongs(threeEntries(t), ForMonth(2023, time.January), 10)
	if err != nil {
		t.Fatalf("TopSongs() error: %v", err)
	}
	want := []Aggregate[string]{{"A", 3}, {"B", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopSongs(2023-01) = %v, want %v", got, want)
	}
}

func TestTopSongs_otherYear(t *testing.T) {
	got, err := TopSongs(threeEntries(t), ForYear(2022), 10)
	if err != nil {
		t.Fatalf("TopSongs() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no songs in 2022, got %v", got)
	}
}

func TestFilter_monthOnly(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2022-02-01T00:00:00Z", "60000", "A", "X", "1"),
		entry(t, "2023-02-01T00:00:00Z", "60000", "B", "X", "1"),
		entry(t, "2023-03-01T00:00:00Z", "60000", "C", "X", "1"),
	}
	got, err := TopSongs(entries, Filter{Month: time.February}, 10)
	if err != nil {
		t.Fatalf("TopSongs() error: %v", err)
	}
	if keys := Keys(got); !reflect.DeepEqual(keys, []string{"A", "B"}) {
		t.Errorf("February in any year = %v, want [A B]", keys)
	}
}

func TestFilter_match(t *testing.T) {
	e := entry(t, "2023-06-15T23:59:59Z", "0", "A", "X", "1")
	tests := []struct {
		filter Filter
		want   bool
	}{
		{Filter{}, true},
		{ForYear(2023), true},
		{ForYear(2024), false},
		{ForMonth(2023, time.June), true},
		{ForMonth(2023, time.July), false},
		{ForMonth(2022, time.June), false},
		{Filter{Month: time.June}, true},
		{ForDate(time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)), true},
		{ForDate(time.Date(2023, time.June, 16, 0, 0, 0, 0, time.UTC)), false},
	}

	for _, tc := range tests {
		if got := tc.filter.Match(e); got != tc.want {
			t.Errorf("%v.Match() = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestRank_limit(t *testing.T) {
	entries := threeEntries(t)
	for limit := 1; limit <= 3; limit++ {
		got, err := TopSongs(entries, Filter{}, limit)
		if err != nil {
			t.Fatalf("TopSongs(limit=%d) error: %v", limit, err)
		}
		want := min(2, limit)
		if len(got) != want {
			t.Errorf("TopSongs(limit=%d) returned %d results, want %d", limit, len(got), want)
		}
	}
}

func TestRank_invalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := TopArtists(threeEntries(t), Filter{}, limit)
		if !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopArtists(limit=%d) error = %v, want ErrInvalidLimit", limit, err)
		}
	}
}

func TestRank_tiesBrokenByKey(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2023-01-01T00:00:00Z", "60000", "c", "Zed", "1"),
		entry(t, "2023-01-01T00:00:00Z", "60000", "b", "Abe", "1"),
		entry(t, "2023-01-01T00:00:00Z", "120000", "a", "Mo", "1"),
		entry(t, "2023-01-01T00:00:00Z", "60000", "d", "Kit", "1"),
	}

	got, err := TopArtists(entries, Filter{}, 10)
	if err != nil {
		t.Fatalf("TopArtists() error: %v", err)
	}
	want := []string{"Mo", "Abe", "Kit", "Zed"}
	if keys := Keys(got); !reflect.DeepEqual(keys, want) {
		t.Errorf("TopArtists() = %v, want %v", keys, want)
	}

	again, err := TopArtists(entries, Filter{}, 10)
	if err != nil {
		t.Fatalf("TopArtists() error: %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Errorf("ranking not stable across runs: %v then %v", got, again)
	}
}

func TestTopAlbums_sameTitleDifferentArtists(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2023-01-01T00:00:00Z", "120000", "a", "Artist X", "Album 1"),
		entry(t, "2023-01-01T00:00:00Z", "60000", "b", "Artist Y", "Album 1"),
		entry(t, "2023-01-02T00:00:00Z", "60000", "c", "Artist X", "Album 1"),
	}

	got, err := TopAlbums(entries, Filter{}, 10)
	if err != nil {
		t.Fatalf("TopAlbums() error: %v", err)
	}
	want := []Aggregate[AlbumKey]{
		{AlbumKey{"Album 1", "Artist X"}, 3},
		{AlbumKey{"Album 1", "Artist Y"}, 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopAlbums() = %v, want %v", got, want)
	}
	if s := got[0].Key.String(); s != "Album 1 - Artist X" {
		t.Errorf("AlbumKey.String() = %q", s)
	}
}

func TestTopAlbums_separatorInTitle(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2023-01-01T00:00:00Z", "60000", "a", "C", "A - B"),
		entry(t, "2023-01-01T00:00:00Z", "60000", "b", "B - C", "A"),
	}

	got, err := TopAlbums(entries, Filter{}, 10)
	if err != nil {
		t.Fatalf("TopAlbums() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected two distinct albums, got %v", got)
	}
}

func TestSummarize_albumDisplayCollision(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2023-01-01T00:00:00Z", "180000", "a", "C", "A - B"),
		entry(t, "2023-01-01T00:05:00Z", "60000", "b", "B - C", "A"),
	}

	summary, err := Summarize(entries, 10)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	want := map[string]int64{"A - B - C": 3, "A - B - C (2)": 1}
	if !reflect.DeepEqual(summary.TopAlbums, want) {
		t.Errorf("TopAlbums = %v, want %v", summary.TopAlbums, want)
	}
}

func TestPlayedOn(t *testing.T) {
	entries := history.Sequence{
		entry(t, "2023-01-04T23:59:59Z", "600000", "z", "X", "1"),
		entry(t, "2023-01-05T00:00:00Z", "60000", "b", "X", "1"),
		entry(t, "2023-01-05T01:00:00Z", "600000", "a", "X", "1"),
		entry(t, "2023-01-05T02:00:00Z", "60000", "b", "X", "1"),
		entry(t, "2023-01-05T23:59:59Z", "0", "c", "X", "1"),
		entry(t, "2023-01-06T00:00:00Z", "60000", "y", "X", "1"),
	}
	day := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)

	got, err := PlayedOn(entries, day, 10)
	if err != nil {
		t.Fatalf("PlayedOn() error: %v", err)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PlayedOn() = %v, want %v", got, want)
	}

	got, err = PlayedOn(entries, day, 2)
	if err != nil {
		t.Fatalf("PlayedOn() error: %v", err)
	}
	if want := []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PlayedOn(limit=2) = %v, want %v", got, want)
	}
}

func TestWeekdays(t *testing.T) {
	// 2023-01-02 is a Monday, 2023-01-08 a Sunday.
	entries := history.Sequence{
		entry(t, "2023-01-02T10:00:00Z", "120000", "a", "X", "1"),
		entry(t, "2023-01-08T10:00:00Z", "180000", "a", "X", "1"),
		entry(t, "2023-01-09T10:00:00Z", "60000", "a", "X", "1"),
	}

	days := Weekdays(entries, Filter{})
	if len(days) != 7 || days[0].Key != time.Monday || days[6].Key != time.Sunday {
		t.Fatalf("expected Monday..Sunday, got %v", days)
	}
	if days[0].Minutes != 3 || days[6].Minutes != 3 {
		t.Errorf("unexpected totals: %v", days)
	}

	day, ok := MostActiveDay(days)
	if !ok || day != time.Monday {
		t.Errorf("MostActiveDay() = %v, %v; want Monday on tie", day, ok)
	}

	if _, ok := MostActiveDay(Weekdays(nil, Filter{})); ok {
		t.Errorf("MostActiveDay() of nothing should not be ok")
	}
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(threeEntries(t), 10)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	if summary.TotalListeningTime != 6 {
		t.Errorf("TotalListeningTime = %d, want 6", summary.TotalListeningTime)
	}
	if summary.TopTracks["A"] != 5 || summary.TopTracks["B"] != 1 {
		t.Errorf("TopTracks = %v", summary.TopTracks)
	}
	if summary.TopArtists["Artist X"] != 5 {
		t.Errorf("TopArtists = %v", summary.TopArtists)
	}
	if summary.TopAlbums["Album 1 - Artist X"] != 5 {
		t.Errorf("TopAlbums = %v", summary.TopAlbums)
	}
	// 2023-01-05 is a Thursday, 2023-02-10 a Friday.
	want := map[string]int64{"THURSDAY": 4, "FRIDAY": 2}
	if !reflect.DeepEqual(summary.MostListenedToDays, want) {
		t.Errorf("MostListenedToDays = %v, want %v", summary.MostListenedToDays, want)
	}
}

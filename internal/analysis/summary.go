package analysis

import (
	"fmt"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

// Summarize builds the overview report: the top limit tracks, artists and
// albums with their minutes, total minutes, and minutes per weekday.
func Summarize(entries history.Sequence, limit int) (Summary, error) {
	tracks, err := TopSongs(entries, Filter{}, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("top tracks: %w", err)
	}
	artists, err := TopArtists(entries, Filter{}, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("top artists: %w", err)
	}
	albums, err := TopAlbums(entries, Filter{}, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("top albums: %w", err)
	}

	summary := Summary{
		TopTracks:          make(map[string]int64, len(tracks)),
		TopArtists:         make(map[string]int64, len(artists)),
		TopAlbums:          make(map[string]int64, len(albums)),
		MostListenedToDays: make(map[string]int64, len(week)),
	}
	for _, t := range tracks {
		summary.TopTracks[t.Key] = t.Minutes
	}
	for _, a := range artists {
		summary.TopArtists[a.Key] = a.Minutes
	}
	for _, a := range albums {
		summary.TopAlbums[uniqueName(summary.TopAlbums, a.Key.String())] = a.Minutes
	}
	for _, d := range Weekdays(entries, Filter{}) {
		if d.Minutes > 0 {
			summary.MostListenedToDays[WeekdayName(d.Key)] = d.Minutes
		}
	}
	for _, e := range entries {
		summary.TotalListeningTime += e.Minutes
	}
	return summary, nil
}

// uniqueName returns name, or name with a " (n)" suffix when a higher-ranked
// group already renders the same. Album titles may contain the " - "
// separator, so distinct keys can share a display string.
func uniqueName(taken map[string]int64, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

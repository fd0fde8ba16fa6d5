package analysis

import (
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

const minutesPerDay = 60 * 24

// Explore computes whole-history statistics.
func Explore(entries history.Sequence) Stats {
	var total int64
	for _, e := range entries {
		total += e.Minutes
	}

	stats := Stats{
		ListeningDays: total / minutesPerDay,
		Plays:         int64(len(entries)),
		UniqueSongs:   distinct(entries, func(e history.Entry) string { return e.TrackURI }),
		Albums:        distinct(entries, func(e history.Entry) string { return e.AlbumName }),
		Artists:       distinct(entries, func(e history.Entry) string { return e.ArtistName }),
	}
	if day, ok := MostActiveDay(Weekdays(entries, Filter{})); ok {
		stats.MostActiveDay = WeekdayName(day)
	}
	return stats
}

func distinct(entries history.Sequence, field func(history.Entry) string) int64 {
	values := lo.Map(entries, func(e history.Entry, _ int) string {
		return field(e)
	})
	return int64(len(lo.Uniq(values)))
}

// Formatted renders the statistics with thousands separators, keyed the way
// the explore view expects.
func (s Stats) Formatted(tag language.Tag) map[string]string {
	p := message.NewPrinter(tag)
	formatted := map[string]string{
		"listening":    p.Sprintf("%d", s.ListeningDays),
		"plays":        p.Sprintf("%d", s.Plays),
		"unique-songs": p.Sprintf("%d", s.UniqueSongs),
		"albums":       p.Sprintf("%d", s.Albums),
		"artists":      p.Sprintf("%d", s.Artists),
	}
	if s.MostActiveDay != "" {
		formatted["most-active-day"] = s.MostActiveDay
	}
	return formatted
}

package analysis

import (
	"cmp"
	"strings"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

// TopSongs ranks track URIs by minutes played.
func TopSongs(entries history.Sequence, f Filter, limit int) ([]Aggregate[string], error) {
	return Pipeline[string]{
		Filter:  f,
		Key:     byTrackURI,
		Compare: cmp.Compare[string],
	}.Run(entries, limit)
}

// TopArtists ranks artist names by minutes played.
func TopArtists(entries history.Sequence, f Filter, limit int) ([]Aggregate[string], error) {
	return Pipeline[string]{
		Filter:  f,
		Key:     byArtist,
		Compare: cmp.Compare[string],
	}.Run(entries, limit)
}

// TopAlbums ranks (album, artist) pairs by minutes played.
func TopAlbums(entries history.Sequence, f Filter, limit int) ([]Aggregate[AlbumKey], error) {
	return Pipeline[AlbumKey]{
		Filter:  f,
		Key:     byAlbum,
		Compare: CompareAlbumKeys,
	}.Run(entries, limit)
}

// PlayedOn lists the distinct track URIs played on the calendar day of date,
// in the order they were first played that day.
func PlayedOn(entries history.Sequence, date time.Time, limit int) ([]string, error) {
	played, err := Pipeline[string]{
		Filter: ForDate(date),
		Key:    byTrackURI,
		Order:  ByFirstPlay,
	}.Run(entries, limit)
	if err != nil {
		return nil, err
	}
	return Keys(played), nil
}

// week is in ISO order.
var week = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Weekdays sums minutes per day of the week. All seven days are returned,
// Monday first.
func Weekdays(entries history.Sequence, f Filter) []Aggregate[time.Weekday] {
	var totals [7]int64
	for _, e := range entries {
		if f.Match(e) {
			totals[e.Timestamp.Weekday()] += e.Minutes
		}
	}

	days := make([]Aggregate[time.Weekday], 0, len(week))
	for _, d := range week {
		days = append(days, Aggregate[time.Weekday]{Key: d, Minutes: totals[d]})
	}
	return days
}

// MostActiveDay picks the weekday with the most minutes, preferring the
// earlier day of the week on ties. ok is false when no whole minute was
// played on any day.
func MostActiveDay(days []Aggregate[time.Weekday]) (day time.Weekday, ok bool) {
	var best int64
	for _, d := range days {
		if d.Minutes > best {
			best = d.Minutes
			day = d.Key
			ok = true
		}
	}
	return day, ok
}

// WeekdayName renders a weekday the way the summary report keys it.
func WeekdayName(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

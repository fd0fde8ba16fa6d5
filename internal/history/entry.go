// Package history models an exported streaming-history log: one Entry per
// playback event, parsed from the delimited export into an ordered Sequence.
package history

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the only accepted timestamp shape. The trailing Z is a
// literal, not a zone offset.
const TimestampLayout = "2006-01-02T15:04:05Z"

const msPerMinute = 60 * 1000

// Entry is a single playback event. Entries are values and are never modified
// after construction.
type Entry struct {
	Timestamp   time.Time
	Minutes     int64
	TrackName   string
	ArtistName  string
	AlbumName   string
	TrackURI    string
	ReasonStart string
	ReasonEnd   string
}

// Sequence is the parsed form of one uploaded log, in file order. Sequences
// are shared through the cache and must not be modified.
type Sequence []Entry

// NewEntry builds an Entry from the raw column values of one record.
func NewEntry(ts, msPlayed, trackName, artistName, albumName, trackURI, reasonStart, reasonEnd string) (Entry, error) {
	timestamp, err := ParseTimestamp(ts)
	if err != nil {
		return Entry{}, err
	}

	minutes, err := ParseMinutes(msPlayed)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Timestamp:   timestamp,
		Minutes:     minutes,
		TrackName:   trackName,
		ArtistName:  artistName,
		AlbumName:   albumName,
		TrackURI:    trackURI,
		ReasonStart: reasonStart,
		ReasonEnd:   reasonEnd,
	}, nil
}

// ParseTimestamp parses a yyyy-MM-ddTHH:mm:ssZ timestamp in UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	// time.Parse tolerates fractional seconds and single-digit hours, neither
	// of which is valid here.
	if len(ts) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: expected format %s", ts, TimestampLayout)
	}
	t, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return t.UTC(), nil
}

// ParseMinutes converts a millisecond count to whole minutes, truncating.
func ParseMinutes(msPlayed string) (int64, error) {
	ms, err := strconv.ParseInt(msPlayed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ms_played %q: %w", msPlayed, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("parsing ms_played %q: negative duration", msPlayed)
	}
	return ms / msPerMinute, nil
}

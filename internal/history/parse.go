package history

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// Column names of the streaming-history export.
const (
	ColumnTimestamp   = "ts"
	ColumnMsPlayed    = "ms_played"
	ColumnTrackName   = "master_metadata_track_name"
	ColumnArtistName  = "master_metadata_album_artist_name"
	ColumnAlbumName   = "master_metadata_album_album_name"
	ColumnTrackURI    = "spotify_track_uri"
	ColumnReasonStart = "reason_start"
	ColumnReasonEnd   = "reason_end"
)

var requiredColumns = []string{
	ColumnTimestamp,
	ColumnMsPlayed,
	ColumnTrackName,
	ColumnArtistName,
	ColumnAlbumName,
	ColumnTrackURI,
	ColumnReasonStart,
	ColumnReasonEnd,
}

// ErrEmptyInput is returned when the upload has no header row at all.
var ErrEmptyInput = errors.New("empty input: missing header row")

// ParseError describes why a log was rejected. Record is the 1-based data
// record (0 for the header), Line is the line in the file when known.
type ParseError struct {
	Record int
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parsing history")
	if e.Record > 0 {
		fmt.Fprintf(&b, ": record %d", e.Record)
	} else {
		b.WriteString(": header")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a complete streaming-history log. Comma-separated exports with a
// header row are the primary format; a JSON array of records (the raw export
// format) is also accepted. Any bad record fails the whole parse.
func Parse(r io.Reader) (Sequence, error) {
	br := bufio.NewReader(r)
	if isJSON(br) {
		return parseJSON(br)
	}
	return ParseCSV(br)
}

func isJSON(br *bufio.Reader) bool {
	for i := 1; ; i++ {
		peeked, err := br.Peek(i)
		if len(peeked) < i {
			return false
		}
		c := peeked[i-1]
		switch c {
		case ' ', '\t', '\r', '\n':
			if err != nil {
				return false
			}
			continue
		case '\xef', '\xbb', '\xbf':
			// UTF-8 byte order mark.
			continue
		}
		return c == '['
	}
}

// ParseCSV reads a comma-separated log with a header row. Header names are
// matched case-insensitively and every cell is trimmed.
func ParseCSV(r io.Reader) (Sequence, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: ErrEmptyInput}
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	entries := Sequence{}
	for record := 1; ; record++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			line := 0
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{Record: record, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		values := make([]string, len(requiredColumns))
		for i, name := range requiredColumns {
			idx := columns[name]
			if idx >= len(row) {
				return nil, &ParseError{Record: record, Line: line, Column: name, Err: errors.New("missing value")}
			}
			values[i] = strings.TrimSpace(row[idx])
		}

		entry, err := NewEntry(values[0], values[1], values[2], values[3], values[4], values[5], values[6], values[7])
		if err != nil {
			return nil, &ParseError{Record: record, Line: line, Err: err}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, &ParseError{Line: 1, Column: name, Err: errors.New("missing column")}
		}
	}
	return columns, nil
}

type jsonRecord struct {
	Timestamp   *string     `json:"ts"`
	MsPlayed    json.Number `json:"ms_played"`
	TrackName   *string     `json:"master_metadata_track_name"`
	ArtistName  *string     `json:"master_metadata_album_artist_name"`
	AlbumName   *string     `json:"master_metadata_album_album_name"`
	TrackURI    *string     `json:"spotify_track_uri"`
	ReasonStart *string     `json:"reason_start"`
	ReasonEnd   *string     `json:"reason_end"`
}

func parseJSON(r io.Reader) (Sequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("\ufeff"))

	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decoding json: %w", err)}
	}

	entries := make(Sequence, 0, len(records))
	for i, rec := range records {
		if rec.Timestamp == nil {
			return nil, &ParseError{Record: i + 1, Column: ColumnTimestamp, Err: errors.New("missing value")}
		}
		entry, err := NewEntry(
			strings.TrimSpace(*rec.Timestamp),
			strings.TrimSpace(rec.MsPlayed.String()),
			str(rec.TrackName),
			str(rec.ArtistName),
			str(rec.AlbumName),
			str(rec.TrackURI),
			str(rec.ReasonStart),
			str(rec.ReasonEnd),
		)
		if err != nil {
			return nil, &ParseError{Record: i + 1, Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// str flattens the nulls the raw export uses for podcast episodes.
func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

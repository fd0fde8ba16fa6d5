package analysis

// Stats summarises an entire history.
type Stats struct {
	ListeningDays int64  `json:"listening_days"`
	Plays         int64  `json:"plays"`
	UniqueSongs   int64  `json:"unique_songs"`
	Albums        int64  `json:"albums"`
	Artists       int64  `json:"artists"`
	MostActiveDay string `json:"most_active_day,omitempty"`
}

// Summary is the one-shot overview of an upload. Album keys are rendered as
// "album - artist".
type Summary struct {
	TopTracks          map[string]int64 `json:"topTracks"`
	TopArtists         map[string]int64 `json:"topArtists"`
	TopAlbums          map[string]int64 `json:"topAlbums"`
	TotalListeningTime int64            `json:"totalListeningTime"`
	MostListenedToDays map[string]int64 `json:"mostListenedToDays"`
}

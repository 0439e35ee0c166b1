package models

// QueryMode selects which resolution path a TrackQuery takes.
type QueryMode int

const (
	QueryByID QueryMode = iota + 1
	QueryBySearch
	QueryTopTrack
)

// TrackQuery is the input to track resolution. Exactly one mode is set per
// request; construct values through ByID, BySearch or TopTrack.
type TrackQuery struct {
	Mode    QueryMode
	TrackID string
	Term    string
}

func ByID(trackID string) TrackQuery {
	return TrackQuery{Mode: QueryByID, TrackID: trackID}
}

func BySearch(term string) TrackQuery {
	return TrackQuery{Mode: QueryBySearch, Term: term}
}

func TopTrack() TrackQuery {
	return TrackQuery{Mode: QueryTopTrack}
}

// TrackResponse is the unified track shape served to the audio player,
// normalized across the iTunes and Spotify upstreams. Artist is always a
// single string, multiple artists joined with ", " in upstream order.
// Source is set only on top-track resolutions: "spotify-top" when the iTunes
// enrichment matched, "spotify" when the response was built from Spotify data
// alone.
type TrackResponse struct {
	ID         int     `json:"id,omitempty"`
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Artwork    string  `json:"artwork"`
	PreviewURL *string `json:"preview_url"`
	ITunesURL  *string `json:"itunes_url"`
	Source     string  `json:"source,omitempty"`
}

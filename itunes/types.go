package itunes

import "strings"

// Track mirrors the subset of the iTunes lookup/search result we care about.
type Track struct {
	TrackID        int    `json:"trackId"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
	PreviewURL     string `json:"previewUrl"`
	TrackViewURL   string `json:"trackViewUrl"`
}

type resultEnvelope struct {
	ResultCount int     `json:"resultCount"`
	Results     []Track `json:"results"`
}

// HighResArtwork returns the 600x600 artwork variant. iTunes embeds the image
// size as a token in the artwork filename, so this is a plain string
// substitution on the 100x100 URL the API hands back.
func (t *Track) HighResArtwork() string {
	return strings.Replace(t.ArtworkURL100, "100x100", "600x600", 1)
}

package spotify

import "strings"

// Spotify Web API response shapes, trimmed to the fields the resolver needs.
// https://developer.spotify.com/documentation/web-api/reference/

type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	PreviewURL *string  `json:"preview_url"`
}

type Artist struct {
	Name string `json:"name"`
}

type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

type Image struct {
	URL string `json:"url"`
}

type topTracksPage struct {
	Items []Track `json:"items"`
}

// JoinedArtists flattens the artist list into a single display string,
// preserving upstream order.
func (t *Track) JoinedArtists() string {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// Package resolver orchestrates track resolution across the iTunes and
// Spotify upstreams and normalizes both into one TrackResponse shape.
package resolver

import (
	"context"

	log "github.com/sirupsen/logrus"

	"tunebridge/itunes"
	"tunebridge/models"
	"tunebridge/spotify"
)

type Resolver struct {
	itunes  *itunes.Client
	spotify *spotify.Client
}

func New(itunesClient *itunes.Client, spotifyClient *spotify.Client) *Resolver {
	return &Resolver{
		itunes:  itunesClient,
		spotify: spotifyClient,
	}
}

// Resolve runs one query to a terminal TrackResponse or error.
func (r *Resolver) Resolve(ctx context.Context, query models.TrackQuery) (*models.TrackResponse, error) {
	switch query.Mode {
	case models.QueryByID:
		track, err := r.itunes.LookupByID(ctx, query.TrackID)
		if err != nil {
			return nil, err
		}
		return fromITunes(track, "")
	case models.QueryBySearch:
		track, err := r.itunes.SearchByTerm(ctx, query.Term)
		if err != nil {
			return nil, err
		}
		return fromITunes(track, "")
	case models.QueryTopTrack:
		return r.resolveTopTrack(ctx)
	default:
		return nil, &models.ValidationError{Message: "no track query mode selected"}
	}
}

// resolveTopTrack fetches the owner's current top track from Spotify, then
// tries to re-find it in the iTunes catalog for better artwork and a preview
// clip. Spotify data is required; the iTunes enrichment is best effort and
// any failure there falls back to a Spotify-only response.
func (r *Resolver) resolveTopTrack(ctx context.Context) (*models.TrackResponse, error) {
	token, err := r.spotify.GetUserToken(ctx)
	if err != nil {
		return nil, err
	}

	top, err := r.spotify.GetTopTrack(ctx, token)
	if err != nil {
		return nil, err
	}
	if top == nil {
		return nil, &models.UpstreamError{Service: "spotify", Message: "No top tracks found"}
	}

	// Fuzzy key into the iTunes catalog; whatever iTunes ranks first wins.
	term := top.Name + " " + top.JoinedArtists()
	match, err := r.itunes.SearchByTerm(ctx, term)
	if err != nil {
		log.Warnf("iTunes enrichment failed for %q, serving Spotify data: %v", term, err)
		match = nil
	}

	if match == nil {
		return spotifyOnly(top), nil
	}

	// The iTunes match replaces the Spotify identity wholesale; best-effort
	// match, not a guaranteed identity match.
	return fromITunes(match, "spotify-top")
}

func fromITunes(track *itunes.Track, source string) (*models.TrackResponse, error) {
	if track == nil {
		return nil, &models.NotFoundError{Message: "Track not found"}
	}

	preview := track.PreviewURL
	viewURL := track.TrackViewURL
	return &models.TrackResponse{
		ID:         track.TrackID,
		Name:       track.TrackName,
		Artist:     track.ArtistName,
		Album:      track.CollectionName,
		Artwork:    track.HighResArtwork(),
		PreviewURL: &preview,
		ITunesURL:  &viewURL,
		Source:     source,
	}, nil
}

func spotifyOnly(track *spotify.Track) *models.TrackResponse {
	artwork := ""
	if len(track.Album.Images) > 0 {
		artwork = track.Album.Images[0].URL
	}

	return &models.TrackResponse{
		Name:       track.Name,
		Artist:     track.JoinedArtists(),
		Album:      track.Album.Name,
		Artwork:    artwork,
		PreviewURL: track.PreviewURL,
		ITunesURL:  nil,
		Source:     "spotify",
	}
}

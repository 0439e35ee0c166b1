package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tunebridge/config"
	"tunebridge/itunes"
	"tunebridge/models"
	"tunebridge/spotify"
)

const itunesTrackJSON = `{
	"resultCount": 1,
	"results": [{
		"trackId": 123456,
		"trackName": "Weird Fishes/ Arpeggi",
		"artistName": "Radiohead",
		"collectionName": "In Rainbows",
		"artworkUrl100": "https://example.com/art/100x100bb.jpg",
		"previewUrl": "https://example.com/preview.m4a",
		"trackViewUrl": "https://music.apple.com/us/album/weird-fishes/123456"
	}]
}`

const spotifyTopTrackJSON = `{
	"items": [{
		"id": "sp-track-1",
		"name": "Weird Fishes/ Arpeggi",
		"artists": [{"name": "Radiohead"}, {"name": "Thom Yorke"}],
		"album": {"name": "In Rainbows", "images": [{"url": "https://example.com/in-rainbows-640.jpg"}, {"url": "https://example.com/in-rainbows-300.jpg"}]},
		"preview_url": "https://example.com/spotify-preview.mp3"
	}]
}`

// fakeUpstreams wires a Resolver against httptest servers standing in for the
// iTunes catalog and the Spotify accounts + Web API services.
type fakeUpstreams struct {
	itunesHandler  http.HandlerFunc
	spotifyHandler http.HandlerFunc
}

func (f *fakeUpstreams) build(t *testing.T) *Resolver {
	t.Helper()

	itunesServer := httptest.NewServer(f.itunesHandler)
	t.Cleanup(itunesServer.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "user-token", "token_type": "Bearer", "expires_in": 3600}`)
	})
	if f.spotifyHandler != nil {
		mux.HandleFunc("/v1/", f.spotifyHandler)
	}
	spotifyServer := httptest.NewServer(mux)
	t.Cleanup(spotifyServer.Close)

	itunesClient := itunes.New()
	itunesClient.BaseURL = itunesServer.URL

	spotifyClient := spotify.NewClient(config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "rt",
	})
	spotifyClient.TokenURL = spotifyServer.URL + "/token"
	spotifyClient.APIBaseURL = spotifyServer.URL + "/v1"

	return New(itunesClient, spotifyClient)
}

func TestResolveByID(t *testing.T) {
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, itunesTrackJSON)
		},
	}
	r := fakes.build(t)

	resp, err := r.Resolve(context.Background(), models.ByID("123456"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.ID != 123456 {
		t.Errorf("ID = %d; want 123456", resp.ID)
	}
	if strings.Contains(resp.Artwork, "100x100") {
		t.Errorf("Artwork = %q; 100x100 token must be rewritten", resp.Artwork)
	}
	if resp.Artwork != "https://example.com/art/600x600bb.jpg" {
		t.Errorf("Artwork = %q; want 600x600 variant", resp.Artwork)
	}
	if resp.ITunesURL == nil || *resp.ITunesURL == "" {
		t.Error("ITunesURL must be set for iTunes lookups")
	}
	if resp.Source != "" {
		t.Errorf("Source = %q; want empty for direct lookups", resp.Source)
	}
}

func TestResolveByIDNotFound(t *testing.T) {
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultCount": 0, "results": []}`)
		},
	}
	r := fakes.build(t)

	_, err := r.Resolve(context.Background(), models.ByID("999"))
	var notFoundErr *models.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Resolve() error = %v; want NotFoundError", err)
	}
	if notFoundErr.Message != "Track not found" {
		t.Errorf("Message = %q; want Track not found", notFoundErr.Message)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r := New(itunes.New(), spotify.NewClient(config.SpotifyConfig{}))

	_, err := r.Resolve(context.Background(), models.TrackQuery{})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Resolve() error = %v; want ValidationError", err)
	}
}

func TestResolveTopTrackEnriched(t *testing.T) {
	var searchTerm string
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			searchTerm = r.URL.Query().Get("term")
			fmt.Fprint(w, itunesTrackJSON)
		},
		spotifyHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, spotifyTopTrackJSON)
		},
	}
	r := fakes.build(t)

	resp, err := r.Resolve(context.Background(), models.TopTrack())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.Source != "spotify-top" {
		t.Errorf("Source = %q; want spotify-top", resp.Source)
	}
	if resp.ITunesURL == nil {
		t.Fatal("ITunesURL = nil; want iTunes track view URL")
	}
	if *resp.ITunesURL != "https://music.apple.com/us/album/weird-fishes/123456" {
		t.Errorf("ITunesURL = %q", *resp.ITunesURL)
	}
	// Composite fuzzy key: track name plus joined artists.
	want := "Weird Fishes/ Arpeggi Radiohead, Thom Yorke"
	if searchTerm != want {
		t.Errorf("iTunes search term = %q; want %q", searchTerm, want)
	}
}

func TestResolveTopTrackFallback(t *testing.T) {
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultCount": 0, "results": []}`)
		},
		spotifyHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, spotifyTopTrackJSON)
		},
	}
	r := fakes.build(t)

	resp, err := r.Resolve(context.Background(), models.TopTrack())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.Source != "spotify" {
		t.Errorf("Source = %q; want spotify", resp.Source)
	}
	if resp.ITunesURL != nil {
		t.Errorf("ITunesURL = %q; want nil in fallback", *resp.ITunesURL)
	}
	if resp.Artist != "Radiohead, Thom Yorke" {
		t.Errorf("Artist = %q; want joined Spotify artists", resp.Artist)
	}
	if resp.Artwork != "https://example.com/in-rainbows-640.jpg" {
		t.Errorf("Artwork = %q; want first Spotify album image", resp.Artwork)
	}
	if resp.PreviewURL == nil || *resp.PreviewURL != "https://example.com/spotify-preview.mp3" {
		t.Errorf("PreviewURL = %v; want Spotify preview", resp.PreviewURL)
	}
	if resp.ID != 0 {
		t.Errorf("ID = %d; want absent in fallback", resp.ID)
	}
}

func TestResolveTopTrackEnrichmentErrorAbsorbed(t *testing.T) {
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		spotifyHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, spotifyTopTrackJSON)
		},
	}
	r := fakes.build(t)

	resp, err := r.Resolve(context.Background(), models.TopTrack())
	if err != nil {
		t.Fatalf("Resolve() error = %v; enrichment failure must not surface", err)
	}
	if resp.Source != "spotify" {
		t.Errorf("Source = %q; want spotify", resp.Source)
	}
}

func TestResolveTopTrackNoListeningHistory(t *testing.T) {
	fakes := &fakeUpstreams{
		spotifyHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items": []}`)
		},
	}
	r := fakes.build(t)

	_, err := r.Resolve(context.Background(), models.TopTrack())
	if err == nil {
		t.Fatal("Resolve() error = nil; want failure for empty top tracks")
	}
	if err.Error() != "No top tracks found" {
		t.Errorf("error = %q; want No top tracks found", err.Error())
	}
}

func TestResolveTopTrackMissingCredentials(t *testing.T) {
	r := New(itunes.New(), spotify.NewClient(config.SpotifyConfig{}))

	_, err := r.Resolve(context.Background(), models.TopTrack())
	var configErr *models.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Resolve() error = %v; want ConfigError", err)
	}
}

func TestResolveTopTrackFallbackNoAlbumImages(t *testing.T) {
	fakes := &fakeUpstreams{
		itunesHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultCount": 0, "results": []}`)
		},
		spotifyHandler: func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"items": [{
					"id": "sp-1",
					"name": "Obscurity",
					"artists": [{"name": "Nobody"}],
					"album": {"name": "Unreleased", "images": []},
					"preview_url": null
				}]
			}`)
		},
	}
	r := fakes.build(t)

	resp, err := r.Resolve(context.Background(), models.TopTrack())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.Artwork != "" {
		t.Errorf("Artwork = %q; want empty string when the album has no images", resp.Artwork)
	}
	if resp.PreviewURL != nil {
		t.Errorf("PreviewURL = %v; want nil", *resp.PreviewURL)
	}
}

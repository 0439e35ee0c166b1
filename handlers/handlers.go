// Package handlers holds the HTTP entry points. Each handler validates query
// parameters into a TrackQuery, invokes the resolver or a Spotify client
// operation, and maps the outcome to a transport status. No business logic
// lives here.
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"tunebridge/models"
	"tunebridge/resolver"
	"tunebridge/spotify"
)

type Manager struct {
	resolver *resolver.Resolver
	spotify  *spotify.Client
}

func NewManager(trackResolver *resolver.Resolver, spotifyClient *spotify.Client) *Manager {
	return &Manager{
		resolver: trackResolver,
		spotify:  spotifyClient,
	}
}

// ITunesTrack serves GET /api/itunes/track?id=...|search=...
// The id parameter wins when both are present.
func (m *Manager) ITunesTrack(c *gin.Context) {
	trackID := c.Query("id")
	search := c.Query("search")

	var query models.TrackQuery
	switch {
	case trackID != "":
		query = models.ByID(trackID)
	case search != "":
		query = models.BySearch(search)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Track ID or search query is required"})
		return
	}

	track, err := m.resolver.Resolve(c.Request.Context(), query)
	if err != nil {
		m.renderError(c, err, "Failed to fetch track")
		return
	}
	c.JSON(http.StatusOK, track)
}

// SpotifyTopTrack serves GET /api/spotify/top-track. Results track the
// owner's last ~4 weeks of listening, so intermediaries may cache them for
// up to an hour.
func (m *Manager) SpotifyTopTrack(c *gin.Context) {
	track, err := m.resolver.Resolve(c.Request.Context(), models.TopTrack())
	if err != nil {
		m.renderError(c, err, "Failed to fetch top track")
		return
	}
	c.Header("Cache-Control", "public, s-maxage=3600")
	c.JSON(http.StatusOK, track)
}

// SpotifyTrack serves GET /api/spotify/track?id=...
func (m *Manager) SpotifyTrack(c *gin.Context) {
	trackID := c.Query("id")
	if trackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Track ID is required"})
		return
	}

	ctx := c.Request.Context()
	token, err := m.spotify.GetAppToken(ctx)
	if err != nil {
		m.renderError(c, err, "Failed to fetch track")
		return
	}

	track, err := m.spotify.GetTrack(ctx, trackID, token)
	if err != nil {
		m.renderError(c, err, "Failed to fetch track")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        track.Name,
		"artists":     track.JoinedArtists(),
		"preview_url": track.PreviewURL,
	})
}

// SpotifyCallback serves GET /api/spotify/callback, the redirect target of
// the one-time authorization-code bootstrap. The tokens are echoed back for
// the operator to copy into the environment; nothing is stored.
func (m *Manager) SpotifyCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errParam})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No code provided"})
		return
	}

	token, err := m.spotify.ExchangeAuthorizationCode(c.Request.Context(), code)
	if err != nil {
		log.Errorf("Authorization code exchange failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Save this refresh_token as SPOTIFY_REFRESH_TOKEN in your env vars",
		"refresh_token": token.RefreshToken,
		"access_token":  token.AccessToken,
	})
}

// SpotifyLogin serves GET /api/spotify/login, redirecting to the Spotify
// authorize page to start the credential bootstrap. Single-owner flow; the
// state parameter is generated but not verified by the callback.
func (m *Manager) SpotifyLogin(c *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		m.renderError(c, err, "Failed to start login")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, m.spotify.AuthCodeURL(hex.EncodeToString(buf)))
}

func (m *Manager) renderError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	message := err.Error()
	if message == "" {
		message = fallback
	}
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": message})
}

// statusFor maps the closed error taxonomy to transport status codes.
// NotFoundError maps to 404 on every route, including Spotify track-by-id.
func statusFor(err error) int {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	default:
		// ConfigError and UpstreamError are both server-side failures.
		return http.StatusInternalServerError
	}
}

package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"tunebridge/config"
	"tunebridge/models"
)

const defaultAPIBaseURL = "https://api.spotify.com/v1"

// Client talks to the Spotify accounts service for tokens and to the Web API
// for track data. Tokens are fetched fresh per request and never cached;
// every call is independent, so there is no refresh coordination to do.
//
// The URL fields default to the real Spotify endpoints and exist so tests can
// point the client at a local server.
type Client struct {
	HTTP       *http.Client
	APIBaseURL string
	TokenURL   string
	AuthURL    string

	clientID     string
	clientSecret string
	refreshToken string
	redirectURI  string
}

func NewClient(cfg config.SpotifyConfig) *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: 10 * time.Second},
		APIBaseURL:   defaultAPIBaseURL,
		TokenURL:     spotifyauth.TokenURL,
		AuthURL:      spotifyauth.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		redirectURI:  cfg.RedirectURI,
	}
}

func (c *Client) requireAppCredentials() error {
	if c.clientID == "" || c.clientSecret == "" {
		return &models.ConfigError{Message: "Spotify credentials not configured"}
	}
	return nil
}

func (c *Client) requireUserCredentials() error {
	if err := c.requireAppCredentials(); err != nil {
		return err
	}
	if c.refreshToken == "" {
		return &models.ConfigError{Message: "Spotify credentials not configured"}
	}
	return nil
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURI,
		Scopes:       []string{spotifyauth.ScopeUserTopRead},
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthURL,
			TokenURL: c.TokenURL,
		},
	}
}

// GetAppToken obtains an app-only token via the client_credentials grant,
// good for anonymous public-catalog lookups.
func (c *Client) GetAppToken(ctx context.Context) (*oauth2.Token, error) {
	if err := c.requireAppCredentials(); err != nil {
		return nil, err
	}

	span := sentry.StartSpan(ctx, "spotify.app_token")
	span.Description = "Exchange client credentials for app token"
	defer span.Finish()

	conf := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.TokenURL,
	}
	token, err := conf.Token(ctx)
	if err != nil {
		log.Errorf("Spotify client_credentials grant failed: %v", err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, tokenError(err, "Failed to get access token")
	}

	span.Status = sentry.SpanStatusOK
	return token, nil
}

// GetUserToken redeems the long-lived refresh token for a fresh access token
// carrying the owner's user-top-read grant. Credential presence is checked
// before any network call is made.
func (c *Client) GetUserToken(ctx context.Context) (*oauth2.Token, error) {
	if err := c.requireUserCredentials(); err != nil {
		return nil, err
	}

	span := sentry.StartSpan(ctx, "spotify.user_token")
	span.Description = "Exchange refresh token for user token"
	defer span.Finish()

	source := c.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})
	token, err := source.Token()
	if err != nil {
		log.Errorf("Spotify refresh_token grant failed: %v", err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, tokenError(err, "Failed to refresh access token")
	}

	span.Status = sentry.SpanStatusOK
	return token, nil
}

// ExchangeAuthorizationCode performs the one-time authorization_code exchange
// used to bootstrap the refresh token. Failures carry the accounts service's
// error payload verbatim.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if err := c.requireAppCredentials(); err != nil {
		return nil, err
	}

	span := sentry.StartSpan(ctx, "spotify.exchange_code")
	span.Description = "Exchange authorization code for tokens"
	defer span.Finish()

	token, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		log.Errorf("Spotify authorization_code exchange failed: %v", err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, tokenError(err, "Failed to exchange authorization code")
	}

	span.Status = sentry.SpanStatusOK
	return token, nil
}

// AuthCodeURL returns the Spotify authorize URL that starts the one-time
// credential bootstrap.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state)
}

// GetTrack fetches a public-catalog track by id.
func (c *Client) GetTrack(ctx context.Context, trackID string, token *oauth2.Token) (*Track, error) {
	log.Tracef("Fetching track from Spotify API: %s", trackID)

	span := sentry.StartSpan(ctx, "spotify.get_track")
	span.Description = "Get track from Spotify API"
	span.SetTag("track_id", trackID)
	defer span.Finish()

	var track Track
	if err := c.doRequest(ctx, "/tracks/"+trackID, token, &track); err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			log.Errorf("Failed to fetch Spotify track %s: %v", trackID, err)
			sentry.CaptureException(err)
		}
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	log.Debugf("Successfully fetched Spotify track: '%s' by %s", track.Name, track.JoinedArtists())
	span.Status = sentry.SpanStatusOK
	return &track, nil
}

// GetTopTrack returns the owner's current most-played track over Spotify's
// short_term window (roughly the last four weeks). An empty items list
// returns nil, not an error; the API does not say why the list is empty.
func (c *Client) GetTopTrack(ctx context.Context, token *oauth2.Token) (*Track, error) {
	span := sentry.StartSpan(ctx, "spotify.get_top_track")
	span.Description = "Get top track from Spotify API"
	defer span.Finish()

	var page topTracksPage
	if err := c.doRequest(ctx, "/me/top/tracks?time_range=short_term&limit=1", token, &page); err != nil {
		log.Errorf("Failed to fetch Spotify top tracks: %v", err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	if len(page.Items) == 0 {
		log.Warnf("Spotify returned no top tracks")
		span.Status = sentry.SpanStatusOK
		return nil, nil
	}

	span.Status = sentry.SpanStatusOK
	return &page.Items[0], nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, token *oauth2.Token, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &models.UpstreamError{Service: "spotify", Message: "Failed to fetch track"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &models.NotFoundError{Message: "Track not found"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.UpstreamError{Service: "spotify", Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &models.UpstreamError{Service: "spotify", Message: "Failed to decode Spotify response"}
	}
	return nil
}

// tokenError converts an oauth2 failure into an UpstreamError, keeping the
// accounts service's response body when oauth2 captured one.
func tokenError(err error, fallback string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		message := strings.TrimSpace(string(retrieveErr.Body))
		if message == "" {
			message = fallback
		}
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &models.UpstreamError{Service: "spotify", Status: status, Message: message}
	}
	return &models.UpstreamError{Service: "spotify", Message: fallback}
}

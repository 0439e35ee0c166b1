package itunes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"tunebridge/models"
)

const defaultBaseURL = "https://itunes.apple.com"

// Client is a read-through client for the public iTunes Search/Lookup API.
// No authentication, no retries, no caching.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func New() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: defaultBaseURL,
	}
}

// LookupByID fetches a single song by its catalog id. A zero-result response
// returns nil, not an error.
func (c *Client) LookupByID(ctx context.Context, trackID string) (*Track, error) {
	log.Tracef("Looking up iTunes track: %s", trackID)

	params := url.Values{}
	params.Set("id", trackID)
	params.Set("entity", "song")

	return c.fetchFirst(ctx, "itunes.lookup", "/lookup", params)
}

// SearchByTerm runs a free-text catalog search and returns the first result,
// relying entirely on iTunes' own relevance ordering. A zero-result response
// returns nil, not an error.
func (c *Client) SearchByTerm(ctx context.Context, term string) (*Track, error) {
	log.Tracef("Searching iTunes for: %q", term)

	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "musicTrack")
	params.Set("limit", "1")

	return c.fetchFirst(ctx, "itunes.search", "/search", params)
}

func (c *Client) fetchFirst(ctx context.Context, op, path string, params url.Values) (*Track, error) {
	span := sentry.StartSpan(ctx, op)
	span.Description = "Query iTunes catalog API"
	defer span.Finish()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Errorf("iTunes request failed: %v", err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, &models.UpstreamError{Service: "itunes", Message: "Failed to fetch from iTunes"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		upstreamErr := &models.UpstreamError{
			Service: "itunes",
			Status:  resp.StatusCode,
			Message: "Failed to fetch from iTunes",
		}
		log.Errorf("iTunes returned status %d for %s", resp.StatusCode, path)
		sentry.CaptureException(upstreamErr)
		span.Status = sentry.SpanStatusInternalError
		return nil, upstreamErr
	}

	var envelope resultEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, &models.UpstreamError{Service: "itunes", Message: "Failed to fetch from iTunes"}
	}

	if envelope.ResultCount == 0 || len(envelope.Results) == 0 {
		log.Debugf("iTunes returned no results for %s", path)
		span.Status = sentry.SpanStatusOK
		return nil, nil
	}

	span.Status = sentry.SpanStatusOK
	return &envelope.Results[0], nil
}

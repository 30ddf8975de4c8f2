package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpguts"

	"github.com/vadimtrunov/jfryot/internal/config"
	"github.com/vadimtrunov/jfryot/internal/core"
	"github.com/vadimtrunov/jfryot/internal/httpclient"
)

const (
	maxErrorBodyBytes = 4096
	tokenHeader       = "X-Emby-Token"
)

// APIError is returned when Jellyfin answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jellyfin API error %d: %s", e.StatusCode, e.Body)
}

// Client implements core.MediaServer for Jellyfin.
type Client struct {
	baseURL     string
	apiKey      string
	userID      string
	tvLibraryID string
	http        *httpclient.Client
	logger      *slog.Logger
}

var _ core.MediaServer = (*Client)(nil)

// New creates a new Jellyfin client. The settings are captured once; the base
// URL is used exactly as given.
func New(cfg config.JellyfinConfig, hc *httpclient.Client, logger *slog.Logger) (*Client, error) {
	switch {
	case cfg.BaseURL == "":
		return nil, errors.New("jellyfin: base URL is required")
	case cfg.APIKey == "":
		return nil, errors.New("jellyfin: API key is required")
	case cfg.UserID == "":
		return nil, errors.New("jellyfin: user id is required")
	case cfg.TVLibraryID == "":
		return nil, errors.New("jellyfin: TV library id is required")
	}
	if !httpguts.ValidHeaderFieldValue(cfg.APIKey) {
		return nil, fmt.Errorf("jellyfin: invalid %s header value", tokenHeader)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if hc == nil {
		hc = httpclient.New(httpclient.DefaultConfig(), logger)
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		userID:      cfg.UserID,
		tvLibraryID: cfg.TVLibraryID,
		http:        hc,
		logger:      logger,
	}, nil
}

// Name returns the server name.
func (c *Client) Name() string { return "jellyfin" }

// ListItems lists the children of parentID, or of the configured TV library
// when parentID is empty. Provider ids are always requested.
func (c *Client) ListItems(ctx context.Context, parentID string) ([]core.MediaItem, error) {
	if parentID == "" {
		parentID = c.tvLibraryID
	}

	params := url.Values{
		"fields":   {"ProviderIds"},
		"parentId": {parentID},
	}

	var resp itemsResponse
	if err := c.get(ctx, "/Users/"+url.PathEscape(c.userID)+"/Items", params, &resp); err != nil {
		return nil, fmt.Errorf("jellyfin list %s: %w", parentID, err)
	}

	items := make([]core.MediaItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, toMediaItem(it))
	}
	return items, nil
}

// get performs an authenticated GET request to the Jellyfin API and decodes the JSON response.
// path must already be escaped.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	rawPath := u.EscapedPath() + path
	if u.Path, err = url.PathUnescape(rawPath); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	u.RawPath = rawPath

	// Query parameters already present in the base URL are kept.
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(tokenHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("jellyfin request", slog.String("path", u.Path), slog.String("query", u.RawQuery))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	return nil
}

// toMediaItem converts a Jellyfin item to a core.MediaItem.
func toMediaItem(it item) core.MediaItem {
	mi := core.MediaItem{
		ID:          it.ID,
		Name:        it.Name,
		IndexNumber: it.IndexNumber,
	}
	if p := it.ProviderIDs; p != nil {
		mi.ProviderIDs = core.ProviderIDs{
			Tvdb: deref(p.Tvdb),
			Imdb: deref(p.Imdb),
			Tmdb: deref(p.Tmdb),
		}
	}
	if it.UserData != nil {
		mi.Played = it.UserData.Played
	}
	return mi
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package xtream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/xcview/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "xcview/1.0"
	apiPath          = "/player_api.php"
)

// Account is the set of credentials for one provider login
type Account struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the Xtream player_api.php endpoint of one account
type Client struct {
	baseURL    string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Xtream API client
func NewClient(acct Account, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := acct.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := acct.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(acct.BaseURL, "/"),
		username:  acct.Username,
		password:  acct.Password,
		userAgent: ua,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs a player_api.php call. An empty action returns the
// account's user_info block.
func (c *Client) doRequest(ctx context.Context, action string, extra url.Values) ([]byte, error) {
	query := url.Values{}
	query.Set("username", c.username)
	query.Set("password", c.password)
	if action != "" {
		query.Set("action", action)
	}
	for k, vs := range extra {
		for _, v := range vs {
			query.Add(k, v)
		}
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, apiPath, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("xtream request", "action", action, "host", req.URL.Host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Error("xtream request failed", "action", action, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("xtream request error", "action", action, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrNetwork, resp.StatusCode)
	}

	return body, nil
}

// getJSON performs a request and decodes the response into out
func (c *Client) getJSON(ctx context.Context, action string, extra url.Values, out any) error {
	body, err := c.doRequest(ctx, action, extra)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "action", action, "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: failed to parse %s response: %v", domain.ErrNetwork, action, err)
	}
	return nil
}

// Authenticate verifies the account credentials and returns the user info
func (c *Client) Authenticate(ctx context.Context) (*UserInfo, error) {
	var resp AuthResponse
	if err := c.getJSON(ctx, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.UserInfo.Auth.Int() != 1 {
		return nil, domain.ErrAuthFailed
	}
	return &resp.UserInfo, nil
}

func categoriesAction(t domain.MediaType) (string, error) {
	switch t {
	case domain.MediaTypeLive:
		return "get_live_categories", nil
	case domain.MediaTypeMovie:
		return "get_vod_categories", nil
	case domain.MediaTypeSeries:
		return "get_series_categories", nil
	}
	return "", fmt.Errorf("%w: media type %q", domain.ErrInvalidInput, t)
}

func streamsAction(t domain.MediaType) (string, error) {
	switch t {
	case domain.MediaTypeLive:
		return "get_live_streams", nil
	case domain.MediaTypeMovie:
		return "get_vod_streams", nil
	case domain.MediaTypeSeries:
		return "get_series", nil
	}
	return "", fmt.Errorf("%w: media type %q", domain.ErrInvalidInput, t)
}

// GetCategories returns the categories of a media type in provider order
func (c *Client) GetCategories(ctx context.Context, t domain.MediaType) ([]domain.Category, error) {
	action, err := categoriesAction(t)
	if err != nil {
		return nil, err
	}
	var dtos []categoryDTO
	if err := c.getJSON(ctx, action, nil, &dtos); err != nil {
		return nil, err
	}
	return mapCategories(dtos), nil
}

// GetStreams returns the items of a media type. An empty categoryID lists
// every category in one call.
func (c *Client) GetStreams(ctx context.Context, t domain.MediaType, categoryID string) ([]domain.MediaItem, error) {
	action, err := streamsAction(t)
	if err != nil {
		return nil, err
	}
	var extra url.Values
	if categoryID != "" {
		extra = url.Values{"category_id": {categoryID}}
	}

	if t == domain.MediaTypeSeries {
		var dtos []seriesDTO
		if err := c.getJSON(ctx, action, extra, &dtos); err != nil {
			return nil, err
		}
		return mapSeries(dtos), nil
	}

	var dtos []streamDTO
	if err := c.getJSON(ctx, action, extra, &dtos); err != nil {
		return nil, err
	}
	return mapStreams(dtos, t), nil
}

// GetVODInfo returns the detailed metadata of a movie
func (c *Client) GetVODInfo(ctx context.Context, id string) (*domain.MediaInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty vod id", domain.ErrInvalidInput)
	}
	var resp vodInfoResponse
	if err := c.getJSON(ctx, "get_vod_info", url.Values{"vod_id": {id}}, &resp); err != nil {
		return nil, err
	}
	info, ok := mapVODInfo(id, resp)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return info, nil
}

// GetSeriesInfo returns the detailed metadata and episodes of a series
func (c *Client) GetSeriesInfo(ctx context.Context, id string) (*domain.MediaInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty series id", domain.ErrInvalidInput)
	}
	var resp seriesInfoResponse
	if err := c.getJSON(ctx, "get_series_info", url.Values{"series_id": {id}}, &resp); err != nil {
		return nil, err
	}
	info, ok := mapSeriesInfo(id, resp)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return info, nil
}

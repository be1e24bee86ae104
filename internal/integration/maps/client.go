// Package maps proxies Google Maps Platform web service requests.
package maps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	autocompletePath   = "/maps/api/place/autocomplete/json"
	distanceMatrixPath = "/maps/api/distancematrix/json"
	defaultComponents  = "country:in"
	maxResponseBytes   = 4 << 20
)

var (
	ErrAPIKeyMissing             = errors.New("google api key is not configured")
	ErrInputRequired             = errors.New("input parameter is required")
	ErrOriginDestinationRequired = errors.New("origins and destinations parameters are required")
)

var (
	autocompleteParams = []string{
		"sessiontoken", "strictbounds", "offset", "origin", "location", "radius", "types", "language",
	}
	distanceMatrixParams = []string{
		"mode", "language", "region", "avoid", "units", "arrival_time", "departure_time",
		"traffic_model", "transit_mode", "transit_routing_preference",
	}
)

// UpstreamError reports a non-2xx answer from Google.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("google api error: %s", e.Status)
}

// Response is a successful upstream answer, passed through unchanged.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client calls the Places Autocomplete and Distance Matrix APIs.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. An empty apiKey makes every call fail with
// ErrAPIKeyMissing.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Autocomplete forwards a place autocomplete query. components defaults to
// India when not given.
func (c *Client) Autocomplete(ctx context.Context, query url.Values) (*Response, error) {
	input := strings.TrimSpace(query.Get("input"))
	if input == "" {
		return nil, ErrInputRequired
	}
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("key", c.apiKey)
	components := query.Get("components")
	if components == "" {
		components = defaultComponents
	}
	params.Set("components", components)
	copyParams(params, query, autocompleteParams)

	return c.get(ctx, autocompletePath, params)
}

// DistanceMatrix forwards a distance matrix query.
func (c *Client) DistanceMatrix(ctx context.Context, query url.Values) (*Response, error) {
	origins := strings.TrimSpace(query.Get("origins"))
	destinations := strings.TrimSpace(query.Get("destinations"))
	if origins == "" || destinations == "" {
		return nil, ErrOriginDestinationRequired
	}
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("origins", origins)
	params.Set("destinations", destinations)
	params.Set("key", c.apiKey)
	copyParams(params, query, distanceMatrixParams)

	return c.get(ctx, distanceMatrixPath, params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read google response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &Response{StatusCode: resp.StatusCode, ContentType: contentType, Body: body}, nil
}

func copyParams(dst, src url.Values, keys []string) {
	for _, k := range keys {
		if v := src.Get(k); v != "" {
			dst.Set(k, v)
		}
	}
}

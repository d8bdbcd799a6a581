package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starmatch/starmatch/internal/astro"
)

const (
	// DefaultTimeout bounds a single lookup including the response body.
	DefaultTimeout = 3 * time.Second
	// DefaultUserAgent identifies the service to the provider.
	DefaultUserAgent = "starmatch-geocoder/1.0"

	maxResponseBytes = 1 << 20
)

// NewHTTPClient returns a client tuned for short geocoding calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   5,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// NominatimClient queries a Nominatim-compatible search endpoint.
type NominatimClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

// NominatimOptions configures NewNominatimClient.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// NewNominatimClient creates a client for opts.BaseURL.
func NewNominatimClient(opts NominatimOptions) *NominatimClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(opts.Timeout)
	}
	return &NominatimClient{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		http:      opts.HTTPClient,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first search result for place.
func (c *NominatimClient) Geocode(ctx context.Context, place string) (astro.Coordinate, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return astro.Coordinate{}, ErrEmptyPlace
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return astro.Coordinate{}, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&results); err != nil {
		return astro.Coordinate{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return astro.Coordinate{}, ErrNoResults
	}

	return parseResult(results[0])
}

func parseResult(r searchResult) (astro.Coordinate, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return astro.Coordinate{}, fmt.Errorf("invalid latitude %q", r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return astro.Coordinate{}, fmt.Errorf("invalid longitude %q", r.Lon)
	}
	return astro.Coordinate{Lat: lat, Lon: lon}, nil
}

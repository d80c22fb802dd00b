// Package geocode talks to the MapQuest geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/cache"
	"github.com/vikasavnish/movein/internal/metrics"
)

const cacheTTL = 24 * time.Hour

// ErrNoResults is returned when MapQuest finds nothing for an address.
var ErrNoResults = errors.New("geocode: no results for address")

// UpstreamError reports a non-2xx answer from MapQuest.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("geocode: upstream returned status %d", e.Status)
}

// LatLng is a coordinate pair as the map script expects it.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder resolves addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (LatLng, error)
	BatchGeocode(ctx context.Context, addresses []string) (map[int]LatLng, error)
}

type response struct {
	Results []struct {
		ProvidedLocation struct {
			Location string `json:"location"`
		} `json:"providedLocation"`
		Locations []struct {
			LatLng LatLng `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Client is the MapQuest implementation of Geocoder.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      cache.Cache
}

// NewClient creates a MapQuest client. c may be nil to disable caching.
func NewClient(baseURL, apiKey string, httpClient *http.Client, c cache.Cache) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      c,
	}
}

// Geocode returns the coordinates of the first match for address.
func (c *Client) Geocode(ctx context.Context, address string) (LatLng, error) {
	key := "geocode:" + strings.ToLower(strings.TrimSpace(address))

	var cached LatLng
	if err := cache.GetJSON(ctx, c.cache, key, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("location", address)

	var data response
	if err := c.get(ctx, "/address", params, &data); err != nil {
		return LatLng{}, err
	}
	if len(data.Results) == 0 || len(data.Results[0].Locations) == 0 {
		return LatLng{}, ErrNoResults
	}

	coords := data.Results[0].Locations[0].LatLng
	if err := cache.SetJSON(ctx, c.cache, key, coords, cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache geocode result")
	}
	return coords, nil
}

// BatchGeocode resolves all addresses in one request. The result is keyed by
// the index of the address in the input; addresses MapQuest could not place
// are left out.
func (c *Client) BatchGeocode(ctx context.Context, addresses []string) (map[int]LatLng, error) {
	positions := make(map[int]LatLng, len(addresses))
	if len(addresses) == 0 {
		return positions, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	for _, address := range addresses {
		params.Add("location", address)
	}

	var data response
	if err := c.get(ctx, "/batch", params, &data); err != nil {
		return nil, err
	}

	for i, result := range data.Results {
		if len(result.Locations) == 0 {
			log.Warn().Int("index", i).Str("location", result.ProvidedLocation.Location).Msg("batch geocode returned no match")
			continue
		}
		positions[i] = result.Locations[0].LatLng
	}
	return positions, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("mapquest", "error")
		return fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream("mapquest", "rejected")
		return &UpstreamError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		metrics.ObserveUpstream("mapquest", "error")
		return fmt.Errorf("geocode: decode response: %w", err)
	}
	metrics.ObserveUpstream("mapquest", "ok")
	return nil
}

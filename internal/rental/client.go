// Package rental fetches ZIP code rent statistics from the Realty Mole API.
package rental

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

const cacheTTL = 6 * time.Hour

// ErrInvalidZip is returned for a blank ZIP code without calling upstream.
var ErrInvalidZip = errors.New("rental: zip code is required")

// UpstreamError reports a non-2xx answer from the rental API.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("rental: upstream returned status %d", e.Status)
}

// RentalData is the ZIP code summary returned by /zipCodes/{zip}.
type RentalData struct {
	ID         string      `json:"id"`
	RentalData RentalStats `json:"rentalData"`
	ZipCode    string      `json:"zipCode,omitempty"`
}

type RentalStats struct {
	AverageRent     float64        `json:"averageRent"`
	MedianRent      float64        `json:"medianRent"`
	MinRent         float64        `json:"minRent"`
	MaxRent         float64        `json:"maxRent"`
	TotalRentals    int            `json:"totalRentals"`
	LastUpdatedDate string         `json:"lastUpdatedDate,omitempty"`
	Detailed        []BedroomStats `json:"detailed"`
}

// BedroomStats holds the figures for one bedroom count.
type BedroomStats struct {
	Bedrooms     int     `json:"bedrooms"`
	AverageRent  float64 `json:"averageRent"`
	MedianRent   float64 `json:"medianRent"`
	MinRent      float64 `json:"minRent"`
	MaxRent      float64 `json:"maxRent"`
	TotalRentals int     `json:"totalRentals"`
}

// ForBedrooms returns the stats for the given bedroom count, if present.
func (d *RentalData) ForBedrooms(n int) (BedroomStats, bool) {
	for _, b := range d.RentalData.Detailed {
		if b.Bedrooms == n {
			return b, true
		}
	}
	return BedroomStats{}, false
}

// Estimator returns rent statistics for a ZIP code.
type Estimator interface {
	ZipCodeStats(ctx context.Context, zip string) (*RentalData, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	cache      cache.Cache
}

// NewClient creates a rental API client. c may be nil to disable caching.
func NewClient(baseURL, apiKey, apiHost string, httpClient *http.Client, c cache.Cache) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: httpClient,
		cache:      c,
	}
}

func (c *Client) ZipCodeStats(ctx context.Context, zip string) (*RentalData, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, ErrInvalidZip
	}

	key := "rental:" + zip
	var cached RentalData
	if err := cache.GetJSON(ctx, c.cache, key, &cached); err == nil {
		return &cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(zip), nil)
	if err != nil {
		return nil, fmt.Errorf("rental: build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("rental", "error")
		return nil, fmt.Errorf("rental: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream("rental", "rejected")
		log.Warn().Str("zip", zip).Int("status", resp.StatusCode).Msg("rental data unavailable")
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var data RentalData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.ObserveUpstream("rental", "error")
		return nil, fmt.Errorf("rental: decode response: %w", err)
	}
	metrics.ObserveUpstream("rental", "ok")

	if err := cache.SetJSON(ctx, c.cache, key, data, cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache rental data")
	}
	return &data, nil
}

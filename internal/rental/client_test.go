package rental

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/movein/internal/cache"
)

const payload90210 = `{
	"id": "90210",
	"zipCode": "90210",
	"rentalData": {
		"averageRent": 9500,
		"medianRent": 8200,
		"minRent": 1800,
		"maxRent": 75000,
		"totalRentals": 230,
		"detailed": [
			{"bedrooms": 1, "averageRent": 3600, "medianRent": 3500, "minRent": 1800, "maxRent": 7000, "totalRentals": 40},
			{"bedrooms": 2, "averageRent": 5400, "medianRent": 5000, "minRent": 2600, "maxRent": 12000, "totalRentals": 61}
		]
	}
}`

func TestZipCodeStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/zipCodes/90210", r.URL.Path)
		assert.Equal(t, "rm-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "rm.example", r.Header.Get("X-RapidAPI-Host"))
		fmt.Fprint(w, payload90210)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/zipCodes", "rm-key", "rm.example", srv.Client(), nil)
	data, err := c.ZipCodeStats(context.Background(), "90210")
	require.NoError(t, err)

	assert.Equal(t, "90210", data.ID)
	assert.Equal(t, 9500.0, data.RentalData.AverageRent)
	require.Len(t, data.RentalData.Detailed, 2)

	two, ok := data.ForBedrooms(2)
	require.True(t, ok)
	assert.Equal(t, 5400.0, two.AverageRent)

	_, ok = data.ForBedrooms(5)
	assert.False(t, ok)
}

func TestZipCodeStatsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "h", srv.Client(), nil)
	_, err := c.ZipCodeStats(context.Background(), "invalid_zipcode")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
}

func TestZipCodeStatsBlankZip(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", "h", nil, nil)
	_, err := c.ZipCodeStats(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidZip)
}

func TestZipCodeStatsCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, payload90210)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "h", srv.Client(), cache.NewMemory())
	for i := 0; i < 2; i++ {
		data, err := c.ZipCodeStats(context.Background(), "90210")
		require.NoError(t, err)
		assert.Equal(t, "90210", data.ID)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("saving favorite: %w", NewNotFoundError("Location"))
	apiErr := AsAPIError(wrapped)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "Location not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	assert.Same(t, ErrInternal, AsAPIError(io.EOF))
}

func TestNewUpstreamError(t *testing.T) {
	apiErr := NewUpstreamError("rental", http.StatusNotFound)
	assert.Equal(t, "upstream_error", apiErr.Code)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, map[string]int{"status": 404}, apiErr.Details)

	assert.Nil(t, NewUpstreamError("mapquest", 0).Details)
	assert.Equal(t, "An upstream service failed to answer", ErrUpstream.Message)
}

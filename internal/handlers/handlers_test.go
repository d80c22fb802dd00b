package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/middleware"
	"github.com/vikasavnish/movein/internal/models"
	apierrors "github.com/vikasavnish/movein/internal/pkg/errors"
	"github.com/vikasavnish/movein/internal/rental"
	"github.com/vikasavnish/movein/internal/utils"
	"github.com/vikasavnish/movein/web"
)

type staticSession struct {
	flashes []middleware.Flash
	token   string
}

func (s staticSession) Flashes(http.ResponseWriter, *http.Request) []middleware.Flash {
	return s.flashes
}

func (s staticSession) CSRFToken(http.ResponseWriter, *http.Request) string {
	return s.token
}

func TestFullAddress(t *testing.T) {
	assert.Equal(t, "630 S Curtis Ave, Tucson, AZ, 85719", fullAddress(models.GeocodeRequest{
		Address: "630 S Curtis Ave",
		City:    "Tucson",
		State:   "AZ",
		Zipcode: "85719",
	}))
	assert.Equal(t, "630 S Curtis Ave, Tucson, AZ, 85719", fullAddress(models.GeocodeRequest{
		Address: " 630 S Curtis Ave, Tucson, AZ, 85719 ",
	}))
}

func TestGeocodeErrorMapping(t *testing.T) {
	apiErr := apierrors.AsAPIError(geocodeError(geocode.ErrNoResults))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	apiErr = apierrors.AsAPIError(geocodeError(&geocode.UpstreamError{Status: 403}))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, map[string]int{"status": 403}, apiErr.Details)

	apiErr = apierrors.AsAPIError(geocodeError(errors.New("dial tcp: refused")))
	assert.Equal(t, "upstream_error", apiErr.Code)
}

func TestRentalErrorMapping(t *testing.T) {
	apiErr := apierrors.AsAPIError(rentalError(&rental.UpstreamError{Status: 404}))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Unable to find rental data for that location.", apiErr.Message)

	apiErr = apierrors.AsAPIError(rentalError(rental.ErrInvalidZip))
	assert.Equal(t, "validation_error", apiErr.Code)
}

func TestRenderer(t *testing.T) {
	rd, err := NewRenderer(web.Templates(), staticSession{
		flashes: []middleware.Flash{{Message: "Hello, testuser!", Category: "success"}},
	}, "maps-key")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req = req.WithContext(utils.SetUserToContext(req.Context(), &models.User{ID: 3, Username: "testuser"}))
	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, pageSearch, PageData{Data: bedroomChoices})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `alert-success">Hello, testuser!`)
	assert.Contains(t, body, `href="/users/3"`)
	assert.Contains(t, body, `<option value="2">2 bedrooms</option>`)
	assert.Contains(t, body, "maps-key")
}

func TestRendererFormToken(t *testing.T) {
	rd, err := NewRenderer(web.Templates(), staticSession{token: "tok-123"}, "")
	require.NoError(t, err)

	for _, page := range []string{pageLogin, pageSignup} {
		rec := httptest.NewRecorder()
		rd.Render(rec, httptest.NewRequest(http.MethodGet, "/login", nil), http.StatusOK, page, PageData{Form: models.SignupRequest{}})
		assert.Contains(t, rec.Body.String(), `<input type="hidden" name="csrf_token" value="tok-123">`, page)
	}
}

func TestRendererUnknownPage(t *testing.T) {
	rd, err := NewRenderer(web.Templates(), staticSession{}, "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing.html", PageData{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

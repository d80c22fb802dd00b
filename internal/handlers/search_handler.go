package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/models"
	apierrors "github.com/vikasavnish/movein/internal/pkg/errors"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/rental"
	"github.com/vikasavnish/movein/internal/services"
	"github.com/vikasavnish/movein/internal/utils"
)

// bedroomChoices are offered by the search form; 0 is a studio.
var bedroomChoices = []int{0, 1, 2, 3, 4, 5}

// SearchHandler serves the address search page and its JSON endpoints
type SearchHandler struct {
	locationService services.LocationService
	geocoder        geocode.Geocoder
	estimator       rental.Estimator
	render          *Renderer
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(locationService services.LocationService, geocoder geocode.Geocoder, estimator rental.Estimator, render *Renderer) *SearchHandler {
	return &SearchHandler{
		locationService: locationService,
		geocoder:        geocoder,
		estimator:       estimator,
		render:          render,
	}
}

func (h *SearchHandler) RegisterRoutes(rt Routes) {
	rt.Public.HandleFunc("/", h.Home).Methods("GET")
	rt.Pages.HandleFunc("/search", h.Search).Methods("GET")
	rt.API.HandleFunc("/api/geocode", h.Geocode).Methods("POST")
	rt.API.HandleFunc("/api/rental-data", h.RentalData).Methods("POST")
	rt.API.HandleFunc("/adddata", h.SaveSearch).Methods("GET", "POST")
}

func (h *SearchHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/search", http.StatusFound)
}

// Search renders the address form
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageSearch, PageData{Data: bedroomChoices})
}

// Geocode returns the coordinates of the posted address
func (h *SearchHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req models.GeocodeRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if fields := utils.Validate(req); fields != nil {
		response.ValidationErrors(w, fields)
		return
	}

	coords, err := h.geocoder.Geocode(r.Context(), fullAddress(req))
	if err != nil {
		response.Error(w, geocodeError(err))
		return
	}
	response.OK(w, coords)
}

// RentalData returns rent statistics for the posted ZIP code
func (h *SearchHandler) RentalData(w http.ResponseWriter, r *http.Request) {
	var req models.RentalRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if fields := utils.Validate(req); fields != nil {
		response.ValidationErrors(w, fields)
		return
	}

	data, err := h.estimator.ZipCodeStats(r.Context(), req.Zipcode)
	if err != nil {
		response.Error(w, rentalError(err))
		return
	}
	response.OK(w, data)
}

// SaveSearch stores the searched address for the current user and echoes
// the request back.
func (h *SearchHandler) SaveSearch(w http.ResponseWriter, r *http.Request) {
	user, err := utils.GetUserFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w)
		return
	}

	var req models.SearchRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if fields := utils.Validate(req); fields != nil {
		response.ValidationErrors(w, fields)
		return
	}

	if _, err := h.locationService.SaveSearch(r.Context(), user.ID, req); err != nil {
		if errors.Is(err, services.ErrIncompleteAddress) {
			response.Error(w, apierrors.NewValidationErrors(map[string]string{"address": err.Error()}))
			return
		}
		response.Error(w, err)
		return
	}
	response.OK(w, req)
}

// fullAddress joins the non-empty address parts the way MapQuest expects.
func fullAddress(req models.GeocodeRequest) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{req.Address, req.City, req.State, req.Zipcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func geocodeError(err error) error {
	var upstream *geocode.UpstreamError
	switch {
	case errors.Is(err, geocode.ErrNoResults):
		return apierrors.NewNotFoundError("Address")
	case errors.As(err, &upstream):
		return apierrors.NewUpstreamError("Geocoding", upstream.Status)
	default:
		log.Warn().Err(err).Msg("geocode request failed")
		return apierrors.NewUpstreamError("Geocoding", 0)
	}
}

func rentalError(err error) error {
	var upstream *rental.UpstreamError
	status := 0
	switch {
	case errors.Is(err, rental.ErrInvalidZip):
		return apierrors.NewValidationErrors(map[string]string{"zipcode": "is required"})
	case errors.As(err, &upstream):
		status = upstream.Status
	default:
		log.Warn().Err(err).Msg("rental request failed")
	}
	apiErr := apierrors.NewUpstreamError("Rental data", status)
	return apiErr.WithMessage("Unable to find rental data for that location.")
}

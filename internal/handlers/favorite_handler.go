package handlers

import (
	"errors"
	"net/http"

	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/models"
	apierrors "github.com/vikasavnish/movein/internal/pkg/errors"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/services"
	"github.com/vikasavnish/movein/internal/utils"
)

// Broadcaster pushes events to a user's open websocket feeds.
type Broadcaster interface {
	Broadcast(userID uint, msg models.Message)
}

// FavoriteHandler serves the favorites map and its data endpoints
type FavoriteHandler struct {
	favoriteService services.FavoriteService
	geocoder        geocode.Geocoder
	hub             Broadcaster
	render          *Renderer
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService services.FavoriteService, geocoder geocode.Geocoder, hub Broadcaster, render *Renderer) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		geocoder:        geocoder,
		hub:             hub,
		render:          render,
	}
}

func (h *FavoriteHandler) RegisterRoutes(rt Routes) {
	rt.Pages.HandleFunc("/favorites", h.ShowMap).Methods("GET")
	rt.API.HandleFunc("/favorites/add", h.AddFavorite).Methods("GET", "POST")
	rt.API.HandleFunc("/favorites/data", h.FavoritesData).Methods("GET")
	rt.API.HandleFunc("/api/batchgeocode", h.BatchGeocode).Methods("GET", "POST")
}

// ShowMap renders the favorites map page
func (h *FavoriteHandler) ShowMap(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageFavorites, PageData{})
}

// AddFavorite saves the posted address as a favorite and shows the map.
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := utils.GetUserFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w)
		return
	}

	var req models.FavoriteRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if fields := utils.Validate(req); fields != nil {
		response.ValidationErrors(w, fields)
		return
	}

	favorite, created, err := h.favoriteService.AddFavorite(r.Context(), user.ID, req)
	if errors.Is(err, services.ErrLocationNotFound) {
		response.Error(w, apierrors.NewNotFoundError("Location"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	if created {
		h.hub.Broadcast(user.ID, models.Message{
			Type: "favorite_added",
			Content: models.FavoriteEvent{
				FavoriteID:  favorite.ID,
				UserID:      user.ID,
				Address:     favorite.Location.StreetAddress,
				ZipCode:     favorite.Location.ZipCode,
				Bedrooms:    favorite.Location.Bedrooms,
				RentAverage: favorite.RentAverage,
				Title:       services.FormatFavorite(*favorite),
			},
		})
	}

	h.render.Render(w, r, http.StatusOK, pageFavorites, PageData{Data: favorite})
}

// FavoritesData lists the user's favorites as map marker labels
func (h *FavoriteHandler) FavoritesData(w http.ResponseWriter, r *http.Request) {
	favorites, ok := h.listFavorites(w, r)
	if !ok {
		return
	}

	labels := make([]string, 0, len(favorites))
	for _, f := range favorites {
		labels = append(labels, services.FormatFavorite(f))
	}
	response.OK(w, labels)
}

// BatchGeocode returns marker positions keyed by the favorite's index in
// FavoritesData.
func (h *FavoriteHandler) BatchGeocode(w http.ResponseWriter, r *http.Request) {
	favorites, ok := h.listFavorites(w, r)
	if !ok {
		return
	}

	addresses := make([]string, 0, len(favorites))
	for _, f := range favorites {
		addresses = append(addresses, services.FavoriteAddress(f))
	}

	positions, err := h.geocoder.BatchGeocode(r.Context(), addresses)
	if err != nil {
		response.Error(w, geocodeError(err))
		return
	}
	response.OK(w, positions)
}

func (h *FavoriteHandler) listFavorites(w http.ResponseWriter, r *http.Request) ([]models.Favorite, bool) {
	user, err := utils.GetUserFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w)
		return nil, false
	}

	favorites, err := h.favoriteService.ListFavorites(r.Context(), user.ID)
	if err != nil {
		response.Error(w, err)
		return nil, false
	}
	return favorites, true
}

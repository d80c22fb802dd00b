package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vikasavnish/movein/internal/services"
	"github.com/vikasavnish/movein/internal/utils"
)

// UserHandler serves the profile page
type UserHandler struct {
	favoriteService services.FavoriteService
	sessions        SessionManager
	render          *Renderer
}

// NewUserHandler creates a new user handler
func NewUserHandler(favoriteService services.FavoriteService, sessions SessionManager, render *Renderer) *UserHandler {
	return &UserHandler{
		favoriteService: favoriteService,
		sessions:        sessions,
		render:          render,
	}
}

func (h *UserHandler) RegisterRoutes(rt Routes) {
	rt.Pages.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")
}

// GetUser shows the profile and favorites of the logged-in user. Other
// profiles are not visible.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := utils.GetUserFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || uint(id) != user.ID {
		h.sessions.AddFlash(w, r, "User does not exist", "danger")
		h.render.Render(w, r, http.StatusForbidden, pageError, PageData{})
		return
	}

	favorites, err := h.favoriteService.ListFavorites(r.Context(), user.ID)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageUser, PageData{Data: favorites})
}

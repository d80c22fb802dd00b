package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/handlers"
	"github.com/vikasavnish/movein/internal/middleware"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/rental"
	"github.com/vikasavnish/movein/internal/services"
	"github.com/vikasavnish/movein/internal/websocket"
	"github.com/vikasavnish/movein/web"
)

// SetupRouter configures all routes and returns the router
func SetupRouter(
	db *gorm.DB,
	wsHub *websocket.Hub,
	cfg *config.Config,
	geocoder geocode.Geocoder,
	estimator rental.Estimator,
) (*mux.Router, error) {
	// Create a new router
	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	router.NotFoundHandler = http.HandlerFunc(notFound)

	// Operational endpoints
	router.HandleFunc("/api/health", HealthHandler(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Serve static files
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))),
	)

	// Create services
	authService := services.NewAuthService(db, []byte(cfg.Session.SecretKey))
	userService := services.NewUserService(db)
	locationService := services.NewLocationService(db)
	favoriteService := services.NewFavoriteService(db)

	sessions := middleware.NewAuth(middleware.NewSessionStore(cfg.Session), userService, authService)
	render, err := handlers.NewRenderer(web.Templates(), sessions, cfg.Maps.APIKey)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	// Create handlers using services
	authHandler := handlers.NewAuthHandler(authService, sessions, render)
	userHandler := handlers.NewUserHandler(favoriteService, sessions, render)
	searchHandler := handlers.NewSearchHandler(locationService, geocoder, estimator, render)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService, geocoder, wsHub, render)

	// Every subrouter knows the current user; pages and API routes require one.
	rt := handlers.Routes{
		Public: router.PathPrefix("").Subrouter(),
		Pages:  router.PathPrefix("").Subrouter(),
		API:    router.PathPrefix("").Subrouter(),
	}
	rt.Public.Use(sessions.LoadUser)
	rt.Pages.Use(sessions.LoadUser, sessions.RequireUser)
	rt.API.Use(sessions.LoadUser, sessions.RequireAPIUser)

	// Register routes
	authHandler.RegisterRoutes(rt)
	userHandler.RegisterRoutes(rt)
	searchHandler.RegisterRoutes(rt)
	favoriteHandler.RegisterRoutes(rt)

	// WebSocket route
	rt.API.HandleFunc("/ws", wsHub.HandleWebSocket).Methods("GET")

	return router, nil
}

// NewHandler wraps the router with request logging and CORS.
func NewHandler(router http.Handler, cfg config.ServerConfig) http.Handler {
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return middleware.Logging(corsMiddleware.Handler(router))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	// For API requests answer in JSON
	if strings.HasPrefix(r.URL.Path, "/api/") {
		response.NotFound(w, "Route")
		return
	}
	http.NotFound(w, r)
}

package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/middleware"
	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/utils"
)

// Page template names
const (
	pageSignup    = "users/signup.html"
	pageLogin     = "users/login.html"
	pageUser      = "users/user_page.html"
	pageSearch    = "address_form.html"
	pageFavorites = "favs_map.html"
	pageError     = "error.html"
)

var layouts = []string{"base.html", "maps.html"}

// SessionReader supplies the per-session parts of a page.
type SessionReader interface {
	Flashes(w http.ResponseWriter, r *http.Request) []middleware.Flash
	CSRFToken(w http.ResponseWriter, r *http.Request) string
}

// PageData is what every page template receives.
type PageData struct {
	User      *models.User
	Flashes   []middleware.Flash
	CSRFToken string
	MapsKey   string
	Form      any
	Errors    map[string]string
	Data      any
}

// Renderer executes the HTML pages against the shared layout.
type Renderer struct {
	pages    map[string]*template.Template
	sessions SessionReader
	mapsKey  string
}

// NewRenderer parses every page from fsys up front.
func NewRenderer(fsys fs.FS, sessions SessionReader, mapsKey string) (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{pageSignup, pageLogin, pageUser, pageSearch, pageFavorites, pageError} {
		patterns := append(append([]string{}, layouts...), page)
		tmpl, err := template.New(page).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Renderer{
		pages:    pages,
		sessions: sessions,
		mapsKey:  mapsKey,
	}, nil
}

// Render writes page with the given status. The current user, pending
// flashes and the form token are filled in from the request.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown page template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if user, err := utils.GetUserFromContext(r.Context()); err == nil {
		data.User = user
	}
	data.CSRFToken = rd.sessions.CSRFToken(w, r)
	data.Flashes = rd.sessions.Flashes(w, r)
	data.MapsKey = rd.mapsKey

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

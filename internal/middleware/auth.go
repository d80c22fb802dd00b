package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/utils"
)

const (
	SessionCookieName = "movein_session"
	sessionUserKey    = "curr_user"
	sessionCSRFKey    = "csrf_token"

	// CSRFFieldName is the hidden form field carrying the session's token.
	CSRFFieldName = "csrf_token"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Message  string
	Category string
}

func init() {
	gob.Register(Flash{})
}

// UserLoader resolves session and token subjects to users.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(tokenString string) (*models.Claims, error)
}

// NewSessionStore creates the cookie store holding the logged-in user id.
func NewSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Auth resolves the current user from the session cookie or a bearer token.
type Auth struct {
	store  sessions.Store
	users  UserLoader
	tokens TokenParser
}

func NewAuth(store sessions.Store, users UserLoader, tokens TokenParser) *Auth {
	return &Auth{
		store:  store,
		users:  users,
		tokens: tokens,
	}
}

// LoadUser puts the current user, if any, into the request context. It never
// rejects a request; RequireUser and RequireAPIUser do that.
func (a *Auth) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := a.resolve(w, r); user != nil {
			r = r.WithContext(utils.SetUserToContext(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) resolve(w http.ResponseWriter, r *http.Request) *models.User {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := a.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return nil
		}
		user, err := a.users.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			return nil
		}
		return user
	}

	session, err := a.store.Get(r, SessionCookieName)
	if err != nil {
		return nil
	}
	userID, ok := session.Values[sessionUserKey].(uint)
	if !ok {
		return nil
	}

	user, err := a.users.GetUserByID(r.Context(), userID)
	if err != nil {
		// Session points at a user that is gone.
		delete(session.Values, sessionUserKey)
		if err := session.Save(r, w); err != nil {
			log.Warn().Err(err).Msg("failed to clear stale session")
		}
		return nil
	}
	return user
}

// RequireUser redirects anonymous visitors of HTML pages to the login form.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.GetUserFromContext(r.Context()); err != nil {
			a.AddFlash(w, r, "Access unauthorized. Please log in.", "danger")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIUser answers anonymous JSON requests with 401.
func (a *Auth) RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.GetUserFromContext(r.Context()); err != nil {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login records user as the session owner.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, _ := a.store.Get(r, SessionCookieName)
	session.Values[sessionUserKey] = user.ID
	return session.Save(r, w)
}

// Logout forgets the session owner but keeps the session for flashes.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.store.Get(r, SessionCookieName)
	delete(session.Values, sessionUserKey)
	return session.Save(r, w)
}

// AddFlash queues a message for the next page render.
func (a *Auth) AddFlash(w http.ResponseWriter, r *http.Request, message, category string) {
	session, _ := a.store.Get(r, SessionCookieName)
	session.AddFlash(Flash{Message: message, Category: category})
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("failed to save flash")
	}
}

// Flashes pops the queued messages. It must run before the response body is
// written because it rewrites the session cookie.
func (a *Auth) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := a.store.Get(r, SessionCookieName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("failed to save session after reading flashes")
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}

// CSRFToken returns the form token bound to the session, creating it on first
// use. It must run before the response body is written.
func (a *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) string {
	session, _ := a.store.Get(r, SessionCookieName)
	if token, ok := session.Values[sessionCSRFKey].(string); ok && token != "" {
		return token
	}

	token, err := generateSecureToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate csrf token")
		return ""
	}
	session.Values[sessionCSRFKey] = token
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("failed to save csrf token")
	}
	return token
}

// ValidCSRF reports whether the submitted form carries the session's token.
func (a *Auth) ValidCSRF(r *http.Request) bool {
	session, err := a.store.Get(r, SessionCookieName)
	if err != nil {
		return false
	}
	want, _ := session.Values[sessionCSRFKey].(string)
	if want == "" {
		return false
	}
	got := r.PostFormValue(CSRFFieldName)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

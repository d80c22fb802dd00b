package handlers

import (
	"github.com/gorilla/mux"
)

// Routes groups the routers handlers attach to.
type Routes struct {
	// Public routes need no user.
	Public *mux.Router
	// Pages are HTML; anonymous visitors are redirected to /login.
	Pages *mux.Router
	// API routes are JSON; anonymous callers get 401.
	API *mux.Router
}

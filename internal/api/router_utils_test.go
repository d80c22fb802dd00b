package api

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutes(t *testing.T) {
	router := mux.NewRouter()
	noop := func(w http.ResponseWriter, r *http.Request) {}
	router.HandleFunc("/api/health", noop).Methods("GET")
	sub := router.PathPrefix("").Subrouter()
	sub.HandleFunc("/favorites/add", noop).Methods("GET", "POST")
	router.PathPrefix("/static/").HandlerFunc(noop)

	var buf bytes.Buffer
	require.NoError(t, PrintRoutes(&buf, router))

	out := buf.String()
	assert.Contains(t, out, "METHOD")
	assert.Regexp(t, `GET\s+/api/health`, out)
	assert.Regexp(t, `GET,POST\s+/favorites/add`, out)
	assert.Regexp(t, `ANY\s+/static/`, out)
}

// Package api serves the PostgREST-style sync API the client's REST remote
// talks to.
//
//	GET    /health
//	GET    /auth/v1/user
//	POST   /rest/v1/{table}                                 upsert one row
//	GET    /rest/v1/{table}?updated_at=gt.T&order=updated_at.asc
//	DELETE /rest/v1/{table}?id=eq.X
//	PATCH  /rest/v1/{table}?guest_id=eq.G&user_id=is.null  claim guest rows
//
// Every route but /health requires the project key in the apikey header. A
// bearer token other than the key itself must be a valid access token.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/server/store"
)

type Handler struct {
	rows   store.Repository
	apiKey string
	secret []byte
	log    logging.Logger
}

func NewHandler(rows store.Repository, apiKey, secretKey string, log logging.Logger) *Handler {
	return &Handler{rows: rows, apiKey: apiKey, secret: []byte(secretKey), log: log.With("module", "api")}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/auth/v1/user", h.currentUser)

		r.Route("/rest/v1/{table}", func(r chi.Router) {
			r.Use(knownTable)
			r.Post("/", h.upsert)
			r.Get("/", h.selectSince)
			r.Delete("/", h.delete)
			r.Patch("/", h.claim)
		})
	})

	return r
}

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/server/auth"
	"github.com/dmitrijs2005/docsync/internal/server/store"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// identity is who is calling. UserID is empty for anonymous callers.
type identity struct {
	UserID  string
	GuestID string
}

func (i identity) owner() store.Owner {
	return store.Owner{GuestID: i.GuestID, UserID: i.UserID}
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(ctxKeyIdentity).(identity)
	return id
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Debug(r.Context(), "request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// authenticate checks the project key and resolves the bearer token.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.APIKeyHeaderName) != h.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		id := identity{GuestID: r.Header.Get(common.GuestIDHeaderName)}

		bearer, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), "Bearer ")
		if ok && bearer != "" && bearer != h.apiKey {
			uid, err := auth.UserIDFromToken(bearer, h.secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			id.UserID = uid
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, id)))
	})
}

func knownTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !store.ValidTable(chi.URLParam(r, "table")) {
			writeError(w, http.StatusNotFound, store.ErrUnknownTable.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/server/auth"
)

const (
	testKey    = "anon"
	testSecret = "secret"
)

func newTestServer(t *testing.T) (*httptest.Server, *memRows) {
	t.Helper()
	rows := newMemRows()
	srv := httptest.NewServer(NewRouter(NewHandler(rows, testKey, testSecret, logging.NewDiscard())))
	t.Cleanup(srv.Close)
	return srv, rows
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

type req struct {
	method, path, body string
	guest, bearer      string
	noKey              bool
}

func do(t *testing.T, srv *httptest.Server, r req) (int, string) {
	t.Helper()
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	hr, err := http.NewRequest(r.method, srv.URL+r.path, body)
	require.NoError(t, err)
	if !r.noKey {
		hr.Header.Set("apikey", testKey)
	}
	if r.guest != "" {
		hr.Header.Set("X-Guest-Id", r.guest)
	}
	bearer := r.bearer
	if bearer == "" {
		bearer = testKey
	}
	hr.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := srv.Client().Do(hr)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestHealth(t *testing.T) {
	srv, rows := newTestServer(t)

	code, _ := do(t, srv, req{method: "GET", path: "/health", noKey: true})
	assert.Equal(t, http.StatusOK, code)

	rows.pingErr = errors.New("down")
	code, _ = do(t, srv, req{method: "GET", path: "/health"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestAuthentication(t *testing.T) {
	srv, _ := newTestServer(t)

	code, _ := do(t, srv, req{method: "GET", path: "/auth/v1/user", noKey: true})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, req{method: "GET", path: "/auth/v1/user"})
	assert.Equal(t, http.StatusUnauthorized, code, "anonymous has no user")

	code, _ = do(t, srv, req{method: "GET", path: "/auth/v1/user", bearer: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, srv, req{method: "GET", path: "/auth/v1/user", bearer: token(t, "u1")})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":"u1"}`, body)
}

func TestUpsertAndSelect(t *testing.T) {
	srv, rows := newTestServer(t)

	row := `{"id":"d1","title":"x","updated_at":"2024-01-02T00:00:00Z","guest_id":"g1","user_id":null}`
	code, _ := do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: row, guest: "g1"})
	require.Equal(t, http.StatusNoContent, code)

	stored, ok := rows.get("documents", "g1", "d1")
	require.True(t, ok)
	assert.Empty(t, stored.UserID)
	assert.NotContains(t, string(stored.Payload), "guest_id")

	code, body := do(t, srv, req{method: "GET", path: "/rest/v1/documents?updated_at=gt.2024-01-01T00:00:00Z&order=updated_at.asc", guest: "g1"})
	require.Equal(t, http.StatusOK, code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0]["title"])
	assert.Equal(t, "g1", got[0]["guest_id"])

	code, body = do(t, srv, req{method: "GET", path: "/rest/v1/documents?updated_at=gt.2024-01-01T00:00:00Z", guest: "g2"})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body, "other guests see nothing")
}

func TestUpsert_OlderRowConflicts(t *testing.T) {
	srv, rows := newTestServer(t)

	newer := `{"id":"d1","title":"new","updated_at":"2024-01-02T00:00:00Z"}`
	older := `{"id":"d1","title":"old","updated_at":"2024-01-01T00:00:00Z"}`

	code, _ := do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: newer, guest: "g1"})
	require.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: older, guest: "g1"})
	assert.Equal(t, http.StatusConflict, code)

	stored, ok := rows.get("documents", "g1", "d1")
	require.True(t, ok)
	assert.Contains(t, string(stored.Payload), `"new"`)

	code, _ = do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: newer, guest: "g1"})
	assert.Equal(t, http.StatusNoContent, code, "same stamp is accepted")
}

func TestUpsert_Rejections(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		r    req
		want int
	}{
		{"unknown table", req{method: "POST", path: "/rest/v1/outbox", body: `{}`, guest: "g1"}, http.StatusNotFound},
		{"not an object", req{method: "POST", path: "/rest/v1/documents", body: `[1]`, guest: "g1"}, http.StatusBadRequest},
		{"no id", req{method: "POST", path: "/rest/v1/documents", body: `{"updated_at":"2024-01-01T00:00:00Z"}`, guest: "g1"}, http.StatusBadRequest},
		{"no updated_at", req{method: "POST", path: "/rest/v1/documents", body: `{"id":"d1"}`, guest: "g1"}, http.StatusBadRequest},
		{"no guest", req{method: "POST", path: "/rest/v1/documents", body: `{"id":"d1","updated_at":"2024-01-01T00:00:00Z"}`}, http.StatusBadRequest},
		{"guest mismatch", req{method: "POST", path: "/rest/v1/documents", body: `{"id":"d1","updated_at":"2024-01-01T00:00:00Z","guest_id":"g2"}`, guest: "g1"}, http.StatusForbidden},
		{"foreign user", req{method: "POST", path: "/rest/v1/documents", body: `{"id":"d1","updated_at":"2024-01-01T00:00:00Z","user_id":"u9"}`, guest: "g1"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, srv, tt.r)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestSelect_BadFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{
		"/rest/v1/documents",
		"/rest/v1/documents?updated_at=lt.2024-01-01T00:00:00Z",
		"/rest/v1/documents?updated_at=gt.yesterday",
		"/rest/v1/documents?updated_at=gt.2024-01-01T00:00:00Z&order=id.desc",
	} {
		code, _ := do(t, srv, req{method: "GET", path: path, guest: "g1"})
		assert.Equal(t, http.StatusBadRequest, code, path)
	}

	code, _ := do(t, srv, req{method: "GET", path: "/rest/v1/documents?updated_at=gt.2024-01-01T00:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, code, "no owner")
}

func TestDelete(t *testing.T) {
	srv, rows := newTestServer(t)

	row := `{"id":"d1","updated_at":"2024-01-02T00:00:00Z"}`
	code, _ := do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: row, guest: "g1"})
	require.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, srv, req{method: "DELETE", path: "/rest/v1/documents?id=eq.d1", guest: "g2"})
	assert.Equal(t, http.StatusNoContent, code)
	_, ok := rows.get("documents", "g1", "d1")
	assert.True(t, ok, "another guest cannot delete")

	code, _ = do(t, srv, req{method: "DELETE", path: "/rest/v1/documents?id=eq.d1", guest: "g1"})
	assert.Equal(t, http.StatusNoContent, code)
	_, ok = rows.get("documents", "g1", "d1")
	assert.False(t, ok)

	code, _ = do(t, srv, req{method: "DELETE", path: "/rest/v1/documents?id=d1", guest: "g1"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestClaim(t *testing.T) {
	srv, rows := newTestServer(t)

	row := `{"id":"d1","updated_at":"2024-01-02T00:00:00Z"}`
	code, _ := do(t, srv, req{method: "POST", path: "/rest/v1/documents", body: row, guest: "g1"})
	require.Equal(t, http.StatusNoContent, code)

	path := "/rest/v1/documents?guest_id=eq.g1&user_id=is.null"

	code, _ = do(t, srv, req{method: "PATCH", path: path, body: `{"user_id":"u1"}`, guest: "g1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, req{method: "PATCH", path: path, body: `{"user_id":"u1"}`, guest: "g1", bearer: token(t, "u2")})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, srv, req{method: "PATCH", path: path, body: `{"user_id":"u1"}`, guest: "g2", bearer: token(t, "u1")})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := do(t, srv, req{method: "PATCH", path: path, body: `{"user_id":"u1"}`, guest: "g1", bearer: token(t, "u1")})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, body)

	stored, _ := rows.get("documents", "g1", "d1")
	assert.Equal(t, "u1", stored.UserID)

	code, body = do(t, srv, req{method: "PATCH", path: path, body: `{"user_id":"u1"}`, guest: "g1", bearer: token(t, "u1")})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":0}`, body)
}

func TestDatabaseErrors(t *testing.T) {
	srv, rows := newTestServer(t)
	rows.err = errors.New("db down")

	code, _ := do(t, srv, req{method: "POST", path: "/rest/v1/flags", body: `{"id":"usage","updated_at":"2024-01-01T00:00:00Z"}`, guest: "g1"})
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = do(t, srv, req{method: "GET", path: "/rest/v1/flags?updated_at=gt.2024-01-01T00:00:00Z", guest: "g1"})
	assert.Equal(t, http.StatusInternalServerError, code)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/docsync/internal/server/store"
)

const maxRowBytes = 1 << 20

var (
	errBadFilter = errors.New("bad filter")
	errNoOwner   = errors.New("guest id or access token required")
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.rows.Ping(r.Context()); err != nil {
		h.log.Warn(r.Context(), "database ping failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if id.UserID == "" {
		writeError(w, http.StatusUnauthorized, "anonymous")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.UserID})
}

// filter reads a PostgREST-style "op.value" query parameter.
func filter(r *http.Request, name, op string) (string, error) {
	v, ok := strings.CutPrefix(r.URL.Query().Get(name), op+".")
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s must be %s.<value>", errBadFilter, name, op)
	}
	return v, nil
}

func (h *Handler) dbError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "database error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "database error")
}

// decodeRow splits the posted object into ownership tags and payload.
func decodeRow(body io.Reader) (store.Row, *string, error) {
	var obj map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(body, maxRowBytes)).Decode(&obj); err != nil {
		return store.Row{}, nil, fmt.Errorf("row is not a JSON object: %w", err)
	}

	var hdr struct {
		ID        string    `json:"id"`
		UpdatedAt time.Time `json:"updated_at"`
		GuestID   string    `json:"guest_id"`
		UserID    *string   `json:"user_id"`
	}
	raw, _ := json.Marshal(obj)
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return store.Row{}, nil, fmt.Errorf("bad row header: %w", err)
	}
	if hdr.ID == "" {
		return store.Row{}, nil, errors.New("row has no id")
	}
	if hdr.UpdatedAt.IsZero() {
		return store.Row{}, nil, errors.New("row has no updated_at")
	}

	delete(obj, "guest_id")
	delete(obj, "user_id")
	payload, err := json.Marshal(obj)
	if err != nil {
		return store.Row{}, nil, err
	}

	return store.Row{ID: hdr.ID, GuestID: hdr.GuestID, UpdatedAt: hdr.UpdatedAt, Payload: payload}, hdr.UserID, nil
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	row, userID, err := decodeRow(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if row.GuestID == "" {
		row.GuestID = id.GuestID
	}
	if row.GuestID == "" {
		writeError(w, http.StatusBadRequest, "guest_id required")
		return
	}
	if id.GuestID != "" && row.GuestID != id.GuestID {
		writeError(w, http.StatusForbidden, "guest_id does not match caller")
		return
	}
	if userID != nil && *userID != "" {
		if *userID != id.UserID {
			writeError(w, http.StatusForbidden, "user_id does not match caller")
			return
		}
		row.UserID = *userID
	}

	if err := h.rows.Upsert(r.Context(), chi.URLParam(r, "table"), row); err != nil {
		if errors.Is(err, store.ErrStaleRow) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.dbError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectSince(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if id.GuestID == "" && id.UserID == "" {
		writeError(w, http.StatusBadRequest, errNoOwner.Error())
		return
	}

	v, err := filter(r, "updated_at", "gt")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	since, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "updated_at is not RFC 3339")
		return
	}
	if o := r.URL.Query().Get("order"); o != "" && o != "updated_at.asc" {
		writeError(w, http.StatusBadRequest, "only order=updated_at.asc is supported")
		return
	}

	rows, err := h.rows.SelectSince(r.Context(), chi.URLParam(r, "table"), since, id.owner())
	if err != nil {
		h.dbError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if id.GuestID == "" && id.UserID == "" {
		writeError(w, http.StatusBadRequest, errNoOwner.Error())
		return
	}

	rowID, err := filter(r, "id", "eq")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.rows.Delete(r.Context(), chi.URLParam(r, "table"), rowID, id.owner()); err != nil {
		h.dbError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type claimRequest struct {
	UserID string `json:"user_id"`
}

type claimResponse struct {
	Count int64 `json:"count"`
}

// claim hands unowned rows of a guest to the signed-in user. The caller must
// present both the guest id and a token for the target user.
func (h *Handler) claim(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	guestID, err := filter(r, "guest_id", "eq")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("user_id") != "is.null" {
		writeError(w, http.StatusBadRequest, "user_id must be is.null")
		return
	}

	var req claimRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRowBytes)).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	if id.UserID == "" {
		writeError(w, http.StatusUnauthorized, "access token required")
		return
	}
	if id.UserID != req.UserID || id.GuestID != guestID {
		writeError(w, http.StatusForbidden, "cannot claim rows for another identity")
		return
	}

	n, err := h.rows.ClaimGuestRows(r.Context(), chi.URLParam(r, "table"), guestID, req.UserID)
	if err != nil {
		h.dbError(w, r, err)
		return
	}
	h.log.Info(r.Context(), "guest rows claimed", "table", chi.URLParam(r, "table"), "user_id", req.UserID, "count", n)
	writeJSON(w, http.StatusOK, claimResponse{Count: n})
}

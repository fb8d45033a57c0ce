package api

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/docsync/internal/server/store"
)

// memRows is an in-memory store.Repository with the same visibility rules as
// the PostgreSQL one.
type memRows struct {
	mu      sync.Mutex
	tables  map[string]map[[2]string]store.Row
	pingErr error
	err     error
}

func newMemRows() *memRows {
	return &memRows{tables: map[string]map[[2]string]store.Row{}}
}

func visible(r store.Row, o store.Owner) bool {
	if o.UserID != "" && r.UserID == o.UserID {
		return true
	}
	return r.UserID == "" && r.GuestID == o.GuestID
}

func (m *memRows) Upsert(ctx context.Context, table string, row store.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.tables[table] == nil {
		m.tables[table] = map[[2]string]store.Row{}
	}
	key := [2]string{row.GuestID, row.ID}
	if cur, ok := m.tables[table][key]; ok {
		if cur.UpdatedAt.After(row.UpdatedAt) {
			return store.ErrStaleRow
		}
		if row.UserID == "" {
			row.UserID = cur.UserID
		}
	}
	m.tables[table][key] = row
	return nil
}

func (m *memRows) Delete(ctx context.Context, table, id string, owner store.Owner) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.tables[table] {
		if r.ID == id && visible(r, owner) {
			delete(m.tables[table], k)
			n++
		}
	}
	return n, m.err
}

func (m *memRows) SelectSince(ctx context.Context, table string, since time.Time, owner store.Owner) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	var rows []store.Row
	for _, r := range m.tables[table] {
		if r.UpdatedAt.After(since) && visible(r, owner) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UpdatedAt.Before(rows[j].UpdatedAt) })

	out := []json.RawMessage{}
	for _, r := range rows {
		var obj map[string]any
		_ = json.Unmarshal(r.Payload, &obj)
		obj["guest_id"] = r.GuestID
		if r.UserID != "" {
			obj["user_id"] = r.UserID
		} else {
			obj["user_id"] = nil
		}
		b, _ := json.Marshal(obj)
		out = append(out, b)
	}
	return out, nil
}

func (m *memRows) ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.tables[table] {
		if r.GuestID == guestID && r.UserID == "" {
			r.UserID = userID
			m.tables[table][k] = r
			n++
		}
	}
	return n, m.err
}

func (m *memRows) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memRows) get(table, guestID, id string) (store.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tables[table][[2]string{guestID, id}]
	return r, ok
}

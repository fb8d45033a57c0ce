package syncer

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/remote"
)

type fakeRow struct {
	guestID   string
	userID    string
	updatedAt time.Time
	payload   map[string]json.RawMessage
}

// fakeRemote mimics the server's ownership rules in memory.
type fakeRemote struct {
	mu         sync.Mutex
	tables     map[string]map[string]*fakeRow
	user       string
	userErr    error
	pingErr    error
	failIDs    map[string]error
	failSelect map[string]error
	upserts    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tables:     map[string]map[string]*fakeRow{},
		failIDs:    map[string]error{},
		failSelect: map[string]error{},
	}
}

func visible(r *fakeRow, o remote.Owner) bool {
	if o.UserID != "" && r.userID == o.UserID {
		return true
	}
	return r.userID == "" && r.guestID == o.GuestID
}

// seed stores a row as if another client had pushed it.
func (f *fakeRemote) seed(table, guestID, userID string, row any) {
	b, _ := json.Marshal(row)
	var obj map[string]json.RawMessage
	_ = json.Unmarshal(b, &obj)
	var hdr struct {
		ID        string    `json:"id"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	_ = json.Unmarshal(b, &hdr)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[table] == nil {
		f.tables[table] = map[string]*fakeRow{}
	}
	f.tables[table][hdr.ID] = &fakeRow{guestID: guestID, userID: userID, updatedAt: hdr.UpdatedAt, payload: obj}
}

func (f *fakeRemote) row(table, id string) *fakeRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table][id]
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, raw json.RawMessage, owner remote.Owner) error {
	var hdr struct {
		ID        string    `json:"id"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return remote.ErrRemote
	}
	f.mu.Lock()
	err := f.failIDs[hdr.ID]
	f.mu.Unlock()
	if err != nil {
		return err
	}

	var obj map[string]json.RawMessage
	_ = json.Unmarshal(raw, &obj)

	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.tables[table][hdr.ID]; ok && cur.updatedAt.After(hdr.UpdatedAt) {
		return remote.ErrConflict
	}
	f.upserts++
	if f.tables[table] == nil {
		f.tables[table] = map[string]*fakeRow{}
	}
	f.tables[table][hdr.ID] = &fakeRow{guestID: owner.GuestID, userID: owner.UserID, updatedAt: hdr.UpdatedAt, payload: obj}
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table, id string, owner remote.Owner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	if r, ok := f.tables[table][id]; ok && visible(r, owner) {
		delete(f.tables[table], id)
	}
	return nil
}

func (f *fakeRemote) SelectSince(ctx context.Context, table string, since time.Time, owner remote.Owner) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSelect[table]; err != nil {
		return nil, err
	}

	var rows []*fakeRow
	for _, r := range f.tables[table] {
		if r.updatedAt.After(since) && visible(r, owner) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].updatedAt.Before(rows[j].updatedAt) })

	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		obj := map[string]json.RawMessage{}
		for k, v := range r.payload {
			obj[k] = v
		}
		obj["guest_id"], _ = json.Marshal(r.guestID)
		b, _ := json.Marshal(obj)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.tables[table] {
		if r.guestID == guestID && r.userID == "" {
			r.userID = userID
			n++
		}
	}
	return n, nil
}

func (f *fakeRemote) CurrentUser(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.userErr
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

// rawRow wraps a literal row for seed.
func rawRow(s string) json.RawMessage { return json.RawMessage(s) }

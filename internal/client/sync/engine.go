package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/checkpoint"
	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/remote"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/timex"
)

// Local is the part of the DAO the engine uses.
type Local interface {
	PendingOutbox(ctx context.Context, limit int) ([]*models.OutboxEntry, error)
	AckOutbox(ctx context.Context, id string) error
	ApplyRemote(ctx context.Context, table string, raw json.RawMessage) (bool, time.Time, error)
	GetFlags(ctx context.Context) (*models.Flags, error)
}

// State of the engine. StateError is kept after a cycle with failures until
// the next cycle starts.
type State int32

const (
	StateIdle State = iota
	StatePushing
	StatePulling
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePushing:
		return "pushing"
	case StatePulling:
		return "pulling"
	case StateError:
		return "error"
	}
	return "unknown"
}

type PushResult struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

type PullResult struct {
	Synced   int       `json:"synced"`
	Errors   int       `json:"errors"`
	LastSync time.Time `json:"last_sync"`
}

type SyncResult struct {
	Push PushResult `json:"push"`
	Pull PullResult `json:"pull"`
}

type MigrateResult struct {
	Push        PushResult `json:"push"`
	Claimed     int64      `json:"claimed"`
	ClaimErrors int        `json:"claim_errors"`
	Pull        PullResult `json:"pull"`
}

// Health is a diagnostic; push and pull do not depend on it.
type Health struct {
	Configured    bool   `json:"configured"`
	Accessible    bool   `json:"accessible"`
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

type Engine struct {
	local  Local
	remote remote.Remote
	cp     checkpoint.Store
	log    logging.Logger

	// mu serializes cycles.
	mu    sync.Mutex
	state atomic.Int32
}

// New builds an engine. A nil remote makes it unconfigured.
func New(local Local, r remote.Remote, cp checkpoint.Store, log logging.Logger) *Engine {
	return &Engine{local: local, remote: r, cp: cp, log: log.With("module", "syncer")}
}

func (e *Engine) Configured() bool { return e.remote != nil }

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

// owner builds the tags for pushed rows. The user comes from the remote
// identity, falling back to the user recorded by the last migration.
func (e *Engine) owner(ctx context.Context) (remote.Owner, error) {
	f, err := e.local.GetFlags(ctx)
	if err != nil {
		return remote.Owner{}, err
	}
	o := remote.Owner{GuestID: f.GuestID}

	uid, err := e.remote.CurrentUser(ctx)
	if err != nil {
		e.log.Warn(ctx, "identity lookup failed", "error", err)
	}
	if uid == "" {
		if uid, err = e.cp.UserID(ctx); err != nil {
			return remote.Owner{}, err
		}
	}
	o.UserID = uid
	return o, nil
}

// PushOutbox sends queued operations oldest first.
func (e *Engine) PushOutbox(ctx context.Context) (PushResult, error) {
	if !e.Configured() {
		return PushResult{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.push(ctx)
	e.finish(res.Errors, err)
	return res, err
}

func (e *Engine) push(ctx context.Context) (PushResult, error) {
	var res PushResult

	entries, err := e.local.PendingOutbox(ctx, 0)
	if err != nil {
		return res, err
	}
	if len(entries) == 0 {
		return res, nil
	}
	e.setState(StatePushing)

	owner, err := e.owner(ctx)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		if err := e.send(ctx, entry, owner); err != nil {
			res.Errors++
			if !errors.Is(err, remote.ErrConflict) {
				e.log.Warn(ctx, "push failed, entry kept for retry",
					"outbox_id", entry.ID, "table", entry.Table, "op", entry.Op, "error", err)
				continue
			}
			// The remote version is newer and reaches us on the next pull.
			e.log.Warn(ctx, "push superseded by newer remote row, entry dropped",
				"outbox_id", entry.ID, "table", entry.Table, "error", err)
			if err := e.local.AckOutbox(ctx, entry.ID); err != nil {
				return res, err
			}
			continue
		}
		if err := e.local.AckOutbox(ctx, entry.ID); err != nil {
			return res, err
		}
		res.Success++
	}

	e.log.Info(ctx, "push finished", "success", res.Success, "errors", res.Errors)
	return res, nil
}

var errBadEntry = errors.New("malformed outbox entry")

func (e *Engine) send(ctx context.Context, entry *models.OutboxEntry, owner remote.Owner) error {
	switch entry.Op {
	case models.OpUpsert:
		return e.remote.Upsert(ctx, entry.Table, entry.Payload, owner)
	case models.OpDelete:
		var p models.DeletePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil || p.ID == "" {
			return errBadEntry
		}
		return e.remote.Delete(ctx, entry.Table, p.ID, owner)
	}
	return errBadEntry
}

// PullSince merges remote rows newer than since and persists the new
// checkpoint. The checkpoint is not advanced when a table could not be
// fetched, so its rows are asked for again next time.
func (e *Engine) PullSince(ctx context.Context, since time.Time) (PullResult, error) {
	if !e.Configured() {
		return PullResult{LastSync: since}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.pull(ctx, since)
	e.finish(res.Errors, err)
	return res, err
}

func (e *Engine) pull(ctx context.Context, since time.Time) (PullResult, error) {
	res := PullResult{LastSync: since}
	e.setState(StatePulling)

	owner, err := e.owner(ctx)
	if err != nil {
		return res, err
	}

	tableFailed := false
	for _, table := range models.SyncedTables {
		rows, err := e.remote.SelectSince(ctx, table, since, owner)
		if err != nil {
			res.Errors++
			tableFailed = true
			e.log.Warn(ctx, "pull failed", "table", table, "error", err)
			continue
		}

		for _, raw := range rows {
			applied, at, err := e.local.ApplyRemote(ctx, table, raw)
			if err != nil {
				if errors.Is(err, common.ErrStorage) {
					return res, err
				}
				res.Errors++
				e.log.Warn(ctx, "row merge failed", "table", table, "error", err)
				continue
			}
			if at.After(res.LastSync) {
				res.LastSync = at
			}
			if applied {
				res.Synced++
			}
		}
	}

	if !tableFailed && res.LastSync.After(since) {
		if err := e.cp.SetLastSync(ctx, res.LastSync); err != nil {
			return res, err
		}
	}

	e.log.Info(ctx, "pull finished", "synced", res.Synced, "errors", res.Errors, "last_sync", res.LastSync)
	return res, nil
}

// FullSync pushes, then pulls from the stored checkpoint. The pull runs even
// when the push failed.
func (e *Engine) FullSync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if !e.Configured() {
		return res, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var pushErr, pullErr error
	res.Push, pushErr = e.push(ctx)
	if pushErr != nil {
		e.log.Error(ctx, "push phase failed", "error", pushErr)
	}

	since, err := e.cp.LastSync(ctx)
	if err != nil {
		pullErr = err
	} else {
		res.Pull, pullErr = e.pull(ctx, since)
	}

	err = errors.Join(pushErr, pullErr)
	e.finish(res.Push.Errors+res.Pull.Errors, err)
	return res, err
}

// MigrateGuestToUser hands the rows tagged with this installation's guest id
// to userID: push first, claim unowned guest rows per table, remember the
// user, then pull everything from the epoch. Running it again claims nothing
// and fails nothing.
func (e *Engine) MigrateGuestToUser(ctx context.Context, userID string) (MigrateResult, error) {
	var res MigrateResult
	if !e.Configured() {
		return res, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if res.Push, err = e.push(ctx); err != nil {
		e.finish(res.Push.Errors, err)
		return res, err
	}

	f, err := e.local.GetFlags(ctx)
	if err != nil {
		e.finish(0, err)
		return res, err
	}

	for _, table := range models.SyncedTables {
		n, err := e.remote.ClaimGuestRows(ctx, table, f.GuestID, userID)
		if err != nil {
			res.ClaimErrors++
			e.log.Warn(ctx, "claim failed", "table", table, "error", err)
			continue
		}
		res.Claimed += n
	}

	if err := e.cp.SetUserID(ctx, userID); err != nil {
		e.finish(0, err)
		return res, err
	}

	res.Pull, err = e.pull(ctx, timex.Epoch)
	e.finish(res.Push.Errors+res.ClaimErrors+res.Pull.Errors, err)
	e.log.Info(ctx, "guest migrated", "guest_id", f.GuestID, "user_id", userID, "claimed", res.Claimed)
	return res, err
}

// CheckHealth reports configuration, reachability and identity.
func (e *Engine) CheckHealth(ctx context.Context) Health {
	if !e.Configured() {
		return Health{}
	}
	h := Health{Configured: true}
	if err := e.remote.Ping(ctx); err != nil {
		h.Error = err.Error()
		return h
	}
	h.Accessible = true

	uid, err := e.remote.CurrentUser(ctx)
	if err != nil {
		h.Error = err.Error()
		return h
	}
	h.Authenticated = uid != ""
	return h
}

func (e *Engine) finish(failures int, err error) {
	if failures > 0 || err != nil {
		e.setState(StateError)
		return
	}
	e.setState(StateIdle)
}

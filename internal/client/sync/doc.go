// Package syncer moves data between the local store and the remote store.
//
// Push drains the outbox oldest first, deleting each entry only after the
// remote confirms it. Pull asks every synced table for rows newer than the
// checkpoint and merges them through the DAO with last-writer-wins on
// updated_at (ties keep the local row). Remote failures are counted and
// logged, never returned; local storage failures are returned.
//
// An Engine built without a remote is unconfigured: every operation is a
// zero-count no-op, and the local store keeps working offline.
package syncer

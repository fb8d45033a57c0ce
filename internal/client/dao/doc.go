// Package dao is the only write path into the local store.
//
// Every mutation runs in one store transaction which stamps the record's
// updated_at from the DAO clock (the caller's value is ignored), writes the
// row, and enqueues exactly one outbox entry per synced record. Rebuildable
// caches (clause index) are written without outbox entries.
//
// Chat messages are routed through a per-DAO debouncer so a burst of
// AddChatMessage calls persists once, with the last call's message.
//
// Remote rows merged by the sync engine also go through the DAO (ApplyRemote),
// which compares freshness stamps inside the same transaction as the write.
package dao

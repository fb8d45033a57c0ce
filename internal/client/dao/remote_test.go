package dao

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

func remoteDoc(t *testing.T, id, title string, at time.Time) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(models.Document{ID: id, Title: title, Status: models.StatusDraft, CreatedAt: at, UpdatedAt: at})
	require.NoError(t, err)
	return b
}

func TestApplyRemote_LastWriterWins(t *testing.T) {
	d, _ := setup(t, 0)
	ctx := context.Background()

	local, err := d.UpsertDocument(ctx, &models.Document{ID: "doc1", Title: "local"})
	require.NoError(t, err)
	outboxBefore := len(outboxEntries(t, d))

	tests := []struct {
		name    string
		at      time.Time
		applied bool
		title   string
	}{
		{"older remote loses", local.UpdatedAt.Add(-time.Hour), false, "local"},
		{"tie keeps local", local.UpdatedAt, false, "local"},
		{"newer remote wins", local.UpdatedAt.Add(time.Hour), true, "remote"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied, at, err := d.ApplyRemote(ctx, models.TableDocuments, remoteDoc(t, "doc1", "remote", tt.at))
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
			assert.True(t, at.Equal(tt.at))

			got, err := d.GetDocument(ctx, "doc1")
			require.NoError(t, err)
			assert.Equal(t, tt.title, got.Title)
		})
	}

	assert.Len(t, outboxEntries(t, d), outboxBefore, "merges are not pushed back")
}

func TestApplyRemote_AbsentLocalInserts(t *testing.T) {
	d, _ := setup(t, 0)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	applied, _, err := d.ApplyRemote(ctx, models.TableDocuments, remoteDoc(t, "new", "from remote", at))
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := d.GetDocument(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UpdatedAt.Equal(at))
}

func TestApplyRemote_FlagsKeepLocalGuestID(t *testing.T) {
	d, st := setup(t, 0)
	ctx := context.Background()
	seeded, err := st.InitializeDefaults(ctx)
	require.NoError(t, err)

	raw, err := json.Marshal(models.Flags{ID: models.FlagsID, GuestID: "other-device", FreeAIUsed: true,
		FeatureUnlocked: []string{"export"}, UpdatedAt: seeded.UpdatedAt.Add(time.Hour)})
	require.NoError(t, err)

	applied, _, err := d.ApplyRemote(ctx, models.TableFlags, raw)
	require.NoError(t, err)
	assert.True(t, applied)

	f, err := d.GetFlags(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeded.GuestID, f.GuestID)
	assert.True(t, f.FreeAIUsed)
	assert.Equal(t, []string{"export"}, f.FeatureUnlocked)
}

func TestApplyRemote_BadInput(t *testing.T) {
	d, _ := setup(t, 0)
	ctx := context.Background()

	_, _, err := d.ApplyRemote(ctx, models.TableOutbox, json.RawMessage(`{"id":"x"}`))
	assert.ErrorIs(t, err, models.ErrUnknownTable)

	_, _, err = d.ApplyRemote(ctx, models.TableDocuments, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, ErrMalformedRow)

	_, _, err = d.ApplyRemote(ctx, models.TableDocuments, json.RawMessage(`{"title":"no id"}`))
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestUpsertDocument_StampsPastFastClockRemote(t *testing.T) {
	d, _ := setup(t, 0)
	ctx := context.Background()

	ahead := base.Add(time.Hour)
	applied, _, err := d.ApplyRemote(ctx, models.TableDocuments, remoteDoc(t, "d1", "remote", ahead))
	require.NoError(t, err)
	require.True(t, applied)

	doc, err := d.UpsertDocument(ctx, &models.Document{ID: "d1", Title: "edited"})
	require.NoError(t, err)
	assert.True(t, doc.UpdatedAt.After(ahead), "stamp %v must follow stored %v", doc.UpdatedAt, ahead)

	stored, err := d.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Title)
	assert.True(t, stored.UpdatedAt.Equal(doc.UpdatedAt))

	entries := outboxEntries(t, d)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].UpdatedAt.Equal(doc.UpdatedAt))

	// A pull of the same remote row no longer wins.
	applied, _, err = d.ApplyRemote(ctx, models.TableDocuments, remoteDoc(t, "d1", "remote", ahead))
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUpsertClauses_StampsPastStoredCopy(t *testing.T) {
	d, _ := setup(t, 0)
	ctx := context.Background()

	ahead := base.Add(24 * time.Hour)
	raw, err := json.Marshal(models.Clause{ID: "c1", DocumentID: "d1", Title: "T", UpdatedAt: ahead})
	require.NoError(t, err)
	_, _, err = d.ApplyRemote(ctx, models.TableClauses, raw)
	require.NoError(t, err)

	out, err := d.UpsertClauses(ctx, []*models.Clause{{ID: "c1", DocumentID: "d1", Title: "T2"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].UpdatedAt.After(ahead))
}

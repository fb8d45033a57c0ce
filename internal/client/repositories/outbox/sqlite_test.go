package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/repotest"
)

var t0 = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func entry(id string, at time.Time) *models.OutboxEntry {
	return &models.OutboxEntry{ID: id, Table: models.TableDocuments, Op: models.OpUpsert,
		Payload: json.RawMessage(`{"id":"` + id + `"}`), UpdatedAt: at}
}

func TestListOrdered_ByUpdatedAtThenInsertion(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, entry("late", t0.Add(time.Second))))
	require.NoError(t, r.Enqueue(ctx, entry("tie-a", t0)))
	require.NoError(t, r.Enqueue(ctx, entry("tie-b", t0)))

	list, err := r.ListOrdered(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"tie-a", "tie-b", "late"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.JSONEq(t, `{"id":"tie-a"}`, string(list[0].Payload))
	assert.Equal(t, models.OpUpsert, list[0].Op)

	limited, err := r.ListOrdered(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDeleteAndCount(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, entry("a", t0)))
	require.NoError(t, r.Enqueue(ctx, entry("b", t0)))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.DeleteByID(ctx, "a"))
	require.NoError(t, r.DeleteByID(ctx, "a"))

	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnqueue_DuplicateIDFails(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	require.NoError(t, r.Enqueue(ctx, entry("a", t0)))
	require.Error(t, r.Enqueue(ctx, entry("a", t0)))
}

func TestCount_WrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM outbox`).WillReturnError(errors.New("disk I/O error"))

	_, err = NewSQLiteRepository(db).Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count outbox")
	require.NoError(t, mock.ExpectationsWereMet())
}

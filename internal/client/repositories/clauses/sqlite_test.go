package clauses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/repotest"
)

var ts = time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

func clause(id, doc string, idx int) *models.Clause {
	return &models.Clause{ID: id, DocumentID: doc, OrderIndex: idx, Title: id, Body: "body " + id,
		Hash: models.HashClause(id, "body "+id), UpdatedAt: ts}
}

func TestListByDocument_OrderedByIndex(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, clause("c2", "d1", 2)))
	require.NoError(t, r.Upsert(ctx, clause("c0", "d1", 0)))
	require.NoError(t, r.Upsert(ctx, clause("c1", "d1", 1)))
	require.NoError(t, r.Upsert(ctx, clause("x0", "d2", 0)))

	list, err := r.ListByDocument(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, c := range list {
		assert.Equal(t, i, c.OrderIndex)
	}

	ids, err := r.ListIDsByDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1", "c2"}, ids)
}

func TestGetByPosition(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, clause("c1", "d1", 1)))

	c, err := r.GetByPosition(ctx, "d1", 1)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, models.HashClause("c1", "body c1"), c.Hash)

	c, err = r.GetByPosition(ctx, "d1", 7)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDeleteByDocument(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, clause("c0", "d1", 0)))
	require.NoError(t, r.Upsert(ctx, clause("c1", "d1", 1)))
	require.NoError(t, r.Upsert(ctx, clause("x0", "d2", 0)))

	n, err := r.DeleteByDocument(ctx, "d1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := r.ListByDocument(ctx, "d2")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestDeleteByID_AndUpdatedAt(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, clause("c0", "d1", 0)))

	got, ok, err := r.UpdatedAt(ctx, "c0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))

	deleted, err := r.DeleteByID(ctx, "c0")
	require.NoError(t, err)
	assert.True(t, deleted)

	c, err := r.GetByID(ctx, "c0")
	require.NoError(t, err)
	assert.Nil(t, c)
}

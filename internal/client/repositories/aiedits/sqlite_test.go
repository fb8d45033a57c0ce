package aiedits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/repotest"
)

func TestUpsertGetList(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clauseID := "c1"

	require.NoError(t, r.Upsert(ctx, &models.AIEdit{ID: "e2", DocumentID: "d1", ClauseID: &clauseID, Diff: "+b",
		AppliedBy: models.AppliedByAI, CreatedAt: t0.Add(time.Second), UpdatedAt: t0.Add(time.Second)}))
	require.NoError(t, r.Upsert(ctx, &models.AIEdit{ID: "e1", DocumentID: "d1", Diff: "+a",
		AppliedBy: models.AppliedByUser, CreatedAt: t0, UpdatedAt: t0}))

	e, err := r.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Nil(t, e.ClauseID, "document-level edit keeps a NULL clause")
	assert.Equal(t, models.AppliedByUser, e.AppliedBy)

	list, err := r.ListByDocument(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e1", list[0].ID)
	require.NotNil(t, list[1].ClauseID)
	assert.Equal(t, "c1", *list[1].ClauseID)

	got, ok, err := r.UpdatedAt(ctx, "e2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(t0.Add(time.Second)))

	missing, err := r.GetByID(ctx, "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

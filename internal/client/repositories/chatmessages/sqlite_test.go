package chatmessages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/repotest"
)

func TestListByDocument_CreatedAtOrder(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	t0 := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	msgs := []*models.ChatMessage{
		{ID: "m3", DocumentID: "d1", Role: models.RoleAssistant, Content: "three", CreatedAt: t0.Add(2 * time.Second)},
		{ID: "m1", DocumentID: "d1", Role: models.RoleUser, Content: "one", CreatedAt: t0},
		{ID: "m2", DocumentID: "d1", Role: models.RoleAssistant, Content: "two", CreatedAt: t0.Add(time.Second)},
		{ID: "o1", DocumentID: "d2", Role: models.RoleUser, Content: "other", CreatedAt: t0},
	}
	for _, m := range msgs {
		m.UpdatedAt = m.CreatedAt
		require.NoError(t, r.Upsert(ctx, m))
	}

	list, err := r.ListByDocument(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{list[0].Content, list[1].Content, list[2].Content})
	assert.Equal(t, models.RoleUser, list[0].Role)
}

func TestGetByID_AndUpdatedAt(t *testing.T) {
	r := NewSQLiteRepository(repotest.OpenLocal(t))
	ctx := context.Background()
	t0 := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	m, err := r.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, r.Upsert(ctx, &models.ChatMessage{ID: "m1", DocumentID: "d1", Role: models.RoleSystem, CreatedAt: t0, UpdatedAt: t0}))
	m, err = r.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, models.RoleSystem, m.Role)

	got, ok, err := r.UpdatedAt(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(t0))
}

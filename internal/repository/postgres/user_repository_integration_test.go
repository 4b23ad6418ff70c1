package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Voridan/giveaway-platform/internal/domain/user"
	"github.com/Voridan/giveaway-platform/internal/testutil"
)

func TestUserRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	u := &domain.User{UserName: "Sara", Email: "Sara@Example.com"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sara@example.com", got.Email)

	missing, err := repo.GetByID(ctx, u.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	many, err := repo.GetManyByID(ctx, []int64{u.ID, u.ID + 1000})
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, u.ID, many[0].ID)

	none, err := repo.GetManyByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	"github.com/Voridan/giveaway-platform/internal/testutil"
)

func TestList_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewGiveawayRepository(testDB.DB)

	owner := testutil.CreateUser(t, testDB.DB, "owner")
	partner := testutil.CreateUser(t, testDB.DB, "partner")
	stranger := testutil.CreateUser(t, testDB.DB, "stranger")

	var created []int64
	for i := 0; i < 5; i++ {
		g, err := repo.Create(ctx, owner, dg.Fields{Title: "G"}, nil, []int64{partner})
		require.NoError(t, err)
		created = append(created, g.ID)
	}

	cursor := func(id int64) *int64 { return &id }

	t.Run("first page and total", func(t *testing.T) {
		page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, created[:2], ids(page.Items))
		assert.Equal(t, 5, page.Total)
	})

	t.Run("cursor continues after last item", func(t *testing.T) {
		page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(created[1]), Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, created[2:4], ids(page.Items))
		assert.Equal(t, 5, page.Total)
	})

	t.Run("offset skips within cursor window", func(t *testing.T) {
		page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(created[0]), Offset: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, created[3:], ids(page.Items))
	})

	t.Run("backward returns ascending items before cursor", func(t *testing.T) {
		page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(created[4]), Limit: 2, Backward: true})
		require.NoError(t, err)
		assert.Equal(t, []int64{created[2], created[3]}, ids(page.Items))
	})

	t.Run("forward walk yields every row once", func(t *testing.T) {
		var (
			seen []int64
			last *int64
		)
		for {
			page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeOwned, UserID: owner, LastItemID: last, Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, 5, page.Total)
			if len(page.Items) == 0 {
				break
			}
			seen = append(seen, ids(page.Items)...)
			last = cursor(page.Items[len(page.Items)-1].ID)
		}
		assert.Equal(t, created, seen)
	})

	t.Run("unknown cursor", func(t *testing.T) {
		_, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(created[4] + 1000)})
		assert.ErrorIs(t, err, dg.ErrInvalidCursor)
	})

	t.Run("zero cursor is checked like any other", func(t *testing.T) {
		_, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(0)})
		assert.ErrorIs(t, err, dg.ErrInvalidCursor)
	})

	t.Run("owned and partnered shapes", func(t *testing.T) {
		owned, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeOwned, UserID: owner})
		require.NoError(t, err)
		assert.Equal(t, 5, owned.Total)

		partnered, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapePartnered, UserID: partner, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 5, partnered.Total)
		require.Len(t, partnered.Items, 1)
		assert.Equal(t, []int64{partner}, partnered.Items[0].PartnerIDs)

		none, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapePartnered, UserID: stranger})
		require.NoError(t, err)
		assert.Zero(t, none.Total)
		assert.Empty(t, none.Items)
	})

	t.Run("approved giveaways leave the moderation queue", func(t *testing.T) {
		_, _, err := repo.Approve(ctx, created[0])
		require.NoError(t, err)

		page, err := repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		assert.Equal(t, created[1:], ids(page.Items))

		// An approved giveaway is still a valid cursor for the queue.
		page, err = repo.List(ctx, dg.PageQuery{Shape: dg.ShapeUnmoderated, LastItemID: cursor(created[0]), Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{created[1]}, ids(page.Items))
	})
}

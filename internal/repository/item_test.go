package repository

import (
	"context"
	"testing"
	"time"

	"reclaimit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	reporter := seedUser(t, db, "reporter@campus.edu", "21CS010")

	created, err := repo.Create(ctx, models.KindFound, &models.Item{
		UserID:      reporter.ID,
		ItemName:    "Blue Umbrella",
		Description: "Left at the bus stop outside gate 2",
		Category:    "Others",
		Place:       "Main Gate Bus Stop",
		Date:        time.Now().AddDate(0, 0, -1),
		ContactInfo: "555-0110",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.ItemStatusActive, created.Status)
	assert.True(t, created.IsVisible)
	// Found items without a pickup location get the default office.
	assert.Equal(t, models.DefaultPickupLocation, created.PickupLocation)

	got, err := repo.GetByID(ctx, models.KindFound, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Umbrella", got.ItemName)
	assert.Equal(t, models.KindFound, got.Kind)
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)

	_, err := repo.GetByID(context.Background(), models.KindLost, 4242)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestItemRepository_List_ExcludesHidden(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	reporter := seedUser(t, db, "lister@campus.edu", "21CS011")
	visible := seedFoundItem(t, db, reporter.ID)
	hidden := seedFoundItem(t, db, reporter.ID)
	require.NoError(t, db.Model(&models.FoundItem{}).
		Where("id = ?", hidden.ID).
		Update("is_visible", false).Error)

	items, err := repo.List(ctx, models.KindFound, ItemFilter{}, 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)

	// Owner views opt in to hidden rows.
	all, err := repo.List(ctx, models.KindFound, ItemFilter{IncludeHidden: true}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestItemRepository_List_Filters(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	reporter := seedUser(t, db, "filters@campus.edu", "21CS012")
	seedFoundItem(t, db, reporter.ID) // Wallets category
	electronics := &models.FoundItem{
		UserID:      reporter.ID,
		ItemName:    "Sony Headphones",
		Description: "Over-ear headphones found in the gym locker room",
		Category:    "Electronics",
		PlaceFound:  "Sports Complex",
		DateFound:   time.Now(),
		ContactInfo: "555-0111",
		Status:      models.ItemStatusActive,
		IsVisible:   true,
	}
	require.NoError(t, db.Create(electronics).Error)

	byCategory, err := repo.List(ctx, models.KindFound, ItemFilter{Category: "Electronics"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Sony Headphones", byCategory[0].ItemName)

	bySearch, err := repo.List(ctx, models.KindFound, ItemFilter{Search: "locker"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, electronics.ID, bySearch[0].ID)
}

func TestItemRepository_MarkClaimedAndReset(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)

	reporter := seedUser(t, db, "owner@campus.edu", "21CS013")
	claimant := seedUser(t, db, "claimant@campus.edu", "21CS014")
	item := seedFoundItem(t, db, reporter.ID)

	now := time.Now()
	require.NoError(t, repo.MarkClaimed(db, models.KindFound, item.ID, claimant.ID, now))

	var claimed models.FoundItem
	require.NoError(t, db.First(&claimed, item.ID).Error)
	assert.Equal(t, models.ItemStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedBy)
	assert.Equal(t, claimant.ID, *claimed.ClaimedBy)
	assert.NotNil(t, claimed.ClaimedAt)
	assert.False(t, claimed.IsVisible)

	require.NoError(t, repo.ResetClaim(db, models.KindFound, item.ID))

	var reset models.FoundItem
	require.NoError(t, db.First(&reset, item.ID).Error)
	assert.Equal(t, models.ItemStatusActive, reset.Status)
	assert.Nil(t, reset.ClaimedBy)
	assert.Nil(t, reset.ClaimedAt)
	assert.True(t, reset.IsVisible)
}

func TestItemRepository_MarkResolved(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	reporter := seedUser(t, db, "resolved@campus.edu", "21CS015")
	item := seedLostItem(t, db, reporter.ID)

	require.NoError(t, repo.MarkResolved(ctx, models.KindLost, item.ID))

	var reloaded models.LostItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, models.ItemStatusResolved, reloaded.Status)
	assert.False(t, reloaded.IsVisible)
}

func TestItemRepository_Counts(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	reporter := seedUser(t, db, "counts@campus.edu", "21CS016")
	seedLostItem(t, db, reporter.ID)
	seedLostItem(t, db, reporter.ID)
	seedFoundItem(t, db, reporter.ID)

	lost, err := repo.Count(ctx, models.KindLost, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, lost)

	recent, err := repo.CountSince(ctx, models.KindFound, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.EqualValues(t, 1, recent)
}

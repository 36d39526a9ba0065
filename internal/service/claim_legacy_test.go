package service

import (
	"context"
	"testing"

	"reclaimit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimService_ClaimFound(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder@campus.edu", "21CS130")
	claimer := f.seedUser(t, "claimer@campus.edu", "21CS131")
	item := f.seedFoundItem(t, owner.ID)

	claimed, err := f.svc.ClaimFound(ctx, ClaimFoundInput{
		ItemID: item.ID,
		UserID: claimer.ID,
		Answer: "it has three keys and a bottle opener",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedBy)
	assert.Equal(t, claimer.ID, *claimed.ClaimedBy)
	assert.False(t, claimed.IsVisible)

	var user models.User
	require.NoError(t, f.db.First(&user, claimer.ID).Error)
	assert.Equal(t, 1, user.ActiveClaims)
}

func TestClaimService_ClaimFound_EmptyAnswer(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder2@campus.edu", "21CS132")
	claimer := f.seedUser(t, "claimer2@campus.edu", "21CS133")
	item := f.seedFoundItem(t, owner.ID)

	_, err := f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: item.ID, UserID: claimer.ID, Answer: "  "})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestClaimService_ClaimFound_LimitReached(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder3@campus.edu", "21CS134")
	claimer := f.seedUser(t, "claimer3@campus.edu", "21CS135")

	first := f.seedFoundItem(t, owner.ID)
	second := f.seedFoundItem(t, owner.ID)
	third := f.seedFoundItem(t, owner.ID)

	_, err := f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: first.ID, UserID: claimer.ID, Answer: "mine"})
	require.NoError(t, err)
	_, err = f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: second.ID, UserID: claimer.ID, Answer: "also mine"})
	require.NoError(t, err)

	// The third claim hits the cap, leaves the counter at 2, and the target
	// item untouched.
	_, err = f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: third.ID, UserID: claimer.ID, Answer: "this too"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	var user models.User
	require.NoError(t, f.db.First(&user, claimer.ID).Error)
	assert.Equal(t, 2, user.ActiveClaims)

	untouched := f.reloadFound(t, third.ID)
	assert.Equal(t, models.ItemStatusActive, untouched.Status)
	assert.Nil(t, untouched.ClaimedBy)
	assert.True(t, untouched.IsVisible)
}

func TestClaimService_ClaimFound_NotActive(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder4@campus.edu", "21CS136")
	first := f.seedUser(t, "first@campus.edu", "21CS137")
	second := f.seedUser(t, "second@campus.edu", "21CS138")
	item := f.seedFoundItem(t, owner.ID)

	_, err := f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: item.ID, UserID: first.ID, Answer: "mine"})
	require.NoError(t, err)

	// A claimed item is no longer active, so the second direct claim fails
	// the eligibility check.
	_, err = f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: item.ID, UserID: second.ID, Answer: "no, mine"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	// The first claimant still holds it.
	reloaded := f.reloadFound(t, item.ID)
	require.NotNil(t, reloaded.ClaimedBy)
	assert.Equal(t, first.ID, *reloaded.ClaimedBy)
}

func TestClaimService_ResolveFound(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder5@campus.edu", "21CS139")
	claimer := f.seedUser(t, "claimer5@campus.edu", "21CS140")
	item := f.seedFoundItem(t, owner.ID)

	_, err := f.svc.ClaimFound(ctx, ClaimFoundInput{ItemID: item.ID, UserID: claimer.ID, Answer: "mine"})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveFound(ctx, ResolveFoundInput{ItemID: item.ID, OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusResolved, resolved.Status)
	assert.False(t, resolved.IsVisible)

	// Handing the item over releases one claim slot.
	var user models.User
	require.NoError(t, f.db.First(&user, claimer.ID).Error)
	assert.Equal(t, 0, user.ActiveClaims)
}

func TestClaimService_ResolveFound_OwnerOnly(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	owner := f.seedUser(t, "finder6@campus.edu", "21CS141")
	stranger := f.seedUser(t, "stranger@campus.edu", "21CS142")
	item := f.seedFoundItem(t, owner.ID)

	_, err := f.svc.ResolveFound(ctx, ResolveFoundInput{ItemID: item.ID, OwnerID: stranger.ID})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
}

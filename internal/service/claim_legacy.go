package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reclaimit/internal/cache"
	"reclaimit/internal/models"
	"reclaimit/internal/observability"

	"gorm.io/gorm"
)

// This file holds the direct found-item claim flow that predates the
// reviewed-claim lifecycle. It bypasses claim records entirely: the item is
// marked claimed on the spot and the claimant's active-claims counter caps
// how many items they can hold at once. The flow lives on ClaimService so
// item claim fields and the counter keep a single writer.

// ClaimFoundInput carries a direct claim on a found item.
type ClaimFoundInput struct {
	ItemID uint
	UserID uint
	// Answer is a freeform verification string. Any non-empty value is
	// accepted; the finder checks it out of band.
	Answer string
}

// ResolveFoundInput marks a directly claimed item as handed over.
type ResolveFoundInput struct {
	ItemID  uint
	OwnerID uint
}

// ClaimFound marks an active found item as claimed by the caller. Fails when
// the caller already holds the maximum number of active claims or when the
// item is no longer active. The status guard runs as a conditional update so
// two concurrent claims on the same item cannot both succeed.
func (s *ClaimService) ClaimFound(ctx context.Context, in ClaimFoundInput) (*models.Item, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return nil, models.NewValidationError("A verification answer is required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user.ActiveClaims >= maxActiveClaims {
		return nil, models.NewValidationError("Claim limit reached: resolve an existing claim before making a new one")
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FoundItem{}).
			Where("id = ? AND status = ?", in.ItemID, models.ItemStatusActive).
			Updates(map[string]interface{}{
				"status":     models.ItemStatusClaimed,
				"claimed_by": in.UserID,
				"claimed_at": now,
				"is_visible": false,
			})
		if res.Error != nil {
			return models.NewStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.FoundItem{}).Where("id = ?", in.ItemID).Count(&exists).Error; err != nil {
				return models.NewStorageError(err)
			}
			if exists == 0 {
				return models.NewNotFoundError("Item", in.ItemID)
			}
			return models.NewValidationError("This item is no longer available for claiming")
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", in.UserID).
			Update("active_claims", gorm.Expr("active_claims + 1")).Error; err != nil {
			return models.NewStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateItem(ctx, string(models.KindFound), in.ItemID)
	cache.InvalidateUser(ctx, in.UserID)
	cache.InvalidateStats(ctx)

	observability.ClaimTransitions.WithLabelValues("direct_claimed").Inc()
	s.logger.Info("Found item claimed directly",
		slog.Uint64("item_id", uint64(in.ItemID)),
		slog.Uint64("user_id", uint64(in.UserID)),
	)

	return s.itemRepo.GetByID(ctx, models.KindFound, in.ItemID)
}

// ResolveFound closes out a directly claimed item. Only the reporting owner
// may resolve it; the claimant's counter is decremented, flooring at zero.
func (s *ClaimService) ResolveFound(ctx context.Context, in ResolveFoundInput) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, models.KindFound, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != in.OwnerID {
		return nil, models.NewForbiddenError("Only the user who reported this item can resolve it")
	}

	claimant := item.ClaimedBy

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FoundItem{}).
			Where("id = ?", in.ItemID).
			Updates(map[string]interface{}{
				"status":     models.ItemStatusResolved,
				"is_visible": false,
			})
		if res.Error != nil {
			return models.NewStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Item", in.ItemID)
		}

		if claimant != nil {
			if err := tx.Model(&models.User{}).
				Where("id = ?", *claimant).
				Update("active_claims", gorm.Expr(
					"CASE WHEN active_claims - 1 < 0 THEN 0 ELSE active_claims - 1 END")).Error; err != nil {
				return models.NewStorageError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateItem(ctx, string(models.KindFound), in.ItemID)
	if claimant != nil {
		cache.InvalidateUser(ctx, *claimant)
	}
	cache.InvalidateStats(ctx)

	observability.ClaimTransitions.WithLabelValues("resolved").Inc()
	return s.itemRepo.GetByID(ctx, models.KindFound, in.ItemID)
}

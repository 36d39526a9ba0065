package repository

import (
	"context"
	"errors"
	"time"

	"reclaimit/internal/models"
	"reclaimit/internal/observability"

	"gorm.io/gorm"
)

// ClaimRepository defines persistence operations for ownership claims.
// TransitionStatus takes the caller's transaction handle so the claim
// service can pair the status flip with item mutations atomically.
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uint) (*models.Claim, error)
	GetByStatus(ctx context.Context, status models.ClaimStatus, limit, offset int) ([]*models.Claim, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.Claim, error)
	GetForUser(ctx context.Context, claimantID uint) ([]*models.Claim, error)
	FindPending(ctx context.Context, itemID uint, kind models.ItemKind) ([]*models.Claim, error)
	TransitionStatus(tx *gorm.DB, id uint, to models.ClaimStatus, reviewerID uint, notes string, at time.Time) error
	DeclineCompetitors(tx *gorm.DB, itemID uint, kind models.ItemKind, winnerID, reviewerID uint, at time.Time) ([]*models.Claim, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status models.ClaimStatus) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository returns a new ClaimRepository implementation.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

// Create inserts a pending claim. The partial unique index on
// (item_id, item_kind, claimant_id) rejects a second pending claim from
// the same claimant; that violation surfaces as a duplicate-claim error.
func (r *claimRepository) Create(ctx context.Context, claim *models.Claim) error {
	defer observability.ObserveQuery("create", "claims", time.Now())

	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateClaimError()
		}
		return models.NewStorageError(err)
	}
	return nil
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).
		Preload("Claimant").
		Preload("Reviewer").
		First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &claim, nil
}

func (r *claimRepository) GetByStatus(ctx context.Context, status models.ClaimStatus, limit, offset int) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).
		Preload("Claimant").
		Preload("Reviewer").
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&claims).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return claims, nil
}

func (r *claimRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).
		Preload("Claimant").
		Preload("Reviewer").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&claims).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return claims, nil
}

func (r *claimRepository) GetForUser(ctx context.Context, claimantID uint) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).
		Where("claimant_id = ?", claimantID).
		Order("created_at DESC").
		Find(&claims).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return claims, nil
}

// FindPending lists the open claims against one item. Used when an
// approval declines the remaining competitors.
func (r *claimRepository) FindPending(ctx context.Context, itemID uint, kind models.ItemKind) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).
		Preload("Claimant").
		Where("item_id = ? AND item_kind = ? AND status = ?", itemID, kind, models.ClaimStatusPending).
		Find(&claims).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return claims, nil
}

// TransitionStatus moves a claim out of pending with a conditional update.
// The WHERE status = 'pending' clause makes concurrent reviews race-safe:
// exactly one wins, the rest see zero rows and get an already-processed
// error (or not-found when the claim never existed).
func (r *claimRepository) TransitionStatus(tx *gorm.DB, id uint, to models.ClaimStatus, reviewerID uint, notes string, at time.Time) error {
	defer observability.ObserveQuery("transition", "claims", time.Now())

	res := tx.Model(&models.Claim{}).
		Where("id = ? AND status = ?", id, models.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":      to,
			"admin_notes": notes,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.Claim{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return models.NewStorageError(err)
		}
		if exists == 0 {
			return models.NewNotFoundError("Claim", id)
		}
		return models.NewAlreadyProcessedError()
	}
	return nil
}

// DeclineCompetitors declines every remaining pending claim on an item
// after one is approved. Returns the declined claims with claimants
// preloaded so the caller can notify them.
func (r *claimRepository) DeclineCompetitors(tx *gorm.DB, itemID uint, kind models.ItemKind, winnerID, reviewerID uint, at time.Time) ([]*models.Claim, error) {
	var rivals []*models.Claim
	if err := tx.
		Preload("Claimant").
		Where("item_id = ? AND item_kind = ? AND status = ? AND id <> ?",
			itemID, kind, models.ClaimStatusPending, winnerID).
		Find(&rivals).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	if len(rivals) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(rivals))
	for i, c := range rivals {
		ids[i] = c.ID
	}
	if err := tx.Model(&models.Claim{}).
		Where("id IN ? AND status = ?", ids, models.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ClaimStatusDeclined,
			"admin_notes": "Item was claimed by another user",
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		}).Error; err != nil {
		return nil, models.NewStorageError(err)
	}

	for _, c := range rivals {
		c.Status = models.ClaimStatusDeclined
		c.AdminNotes = "Item was claimed by another user"
		c.ReviewedBy = &reviewerID
		c.ReviewedAt = &at
	}
	return rivals, nil
}

func (r *claimRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Claim{}, id)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Claim", id)
	}
	return nil
}

func (r *claimRepository) CountByStatus(ctx context.Context, status models.ClaimStatus) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Claim{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reclaimit/internal/middleware"
	"reclaimit/internal/models"
	"reclaimit/internal/observability"
	"reclaimit/internal/repository"

	"gorm.io/gorm"
)

// maxActiveClaims caps the direct found-item claim path. Claims through the
// regular review flow are not counted against this limit.
const maxActiveClaims = 2

// ClaimNotifier delivers review-outcome notifications. Implementations must
// not block; the claim lifecycle never waits on delivery.
type ClaimNotifier interface {
	NotifyClaimReviewed(user *models.User, item *models.Item, claim *models.Claim, approved bool)
}

// ClaimService owns the claim lifecycle. Every mutation of claim status,
// item claim fields, and the active-claims counter goes through here so the
// state machine has a single writer.
type ClaimService struct {
	db        *gorm.DB
	claimRepo repository.ClaimRepository
	itemRepo  repository.ItemRepository
	userRepo  repository.UserRepository
	notifier  ClaimNotifier
	logger    *slog.Logger
}

// NewClaimService wires the claim engine. notifier may be nil.
func NewClaimService(
	db *gorm.DB,
	claimRepo repository.ClaimRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier ClaimNotifier,
) *ClaimService {
	return &ClaimService{
		db:        db,
		claimRepo: claimRepo,
		itemRepo:  itemRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		logger:    middleware.Logger,
	}
}

// SubmitClaimInput carries a new ownership claim.
type SubmitClaimInput struct {
	ItemID     uint
	ItemKind   models.ItemKind
	ClaimantID uint
	Answers    []models.ClaimAnswer
}

// ReviewClaimInput carries an admin decision on a pending claim.
type ReviewClaimInput struct {
	ClaimID uint
	AdminID uint
	Notes   string
}

// ClaimDetail pairs a claim with its resolved item.
type ClaimDetail struct {
	Claim *models.Claim `json:"claim"`
	Item  *models.Item  `json:"item"`
}

// Submit creates a pending claim against an existing item. The answers are
// stored verbatim; admins judge them manually during review. The item is not
// mutated at submission time.
func (s *ClaimService) Submit(ctx context.Context, in SubmitClaimInput) (*models.Claim, error) {
	if !in.ItemKind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	if len(in.Answers) == 0 {
		return nil, models.NewValidationError("At least one validation answer is required")
	}
	for _, a := range in.Answers {
		if strings.TrimSpace(a.Answer) == "" {
			return nil, models.NewValidationError("Validation answers must not be empty")
		}
	}

	// Existence check. Eligibility by item status is deliberately not
	// enforced here: a claim against a claimed item stays reviewable and
	// the admin sees it alongside the approved one.
	if _, err := s.itemRepo.GetByID(ctx, in.ItemKind, in.ItemID); err != nil {
		return nil, err
	}

	claim := &models.Claim{
		ItemID:     in.ItemID,
		ItemKind:   in.ItemKind,
		ClaimantID: in.ClaimantID,
		Answers:    in.Answers,
		Status:     models.ClaimStatusPending,
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, err
	}

	observability.ClaimTransitions.WithLabelValues("submitted").Inc()
	return claim, nil
}

// Approve moves a pending claim to approved and marks the item claimed,
// hidden, and attributed to the claimant, all in one transaction. Remaining
// pending claims on the same item are declined in the same transaction.
// Concurrent approvals race on the conditional status update; the loser
// gets an already-processed error and nothing is mutated.
func (s *ClaimService) Approve(ctx context.Context, in ReviewClaimInput) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, in.ClaimID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var rivals []*models.Claim

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.claimRepo.TransitionStatus(tx, claim.ID, models.ClaimStatusApproved, in.AdminID, in.Notes, now); err != nil {
			return err
		}

		if err := s.itemRepo.MarkClaimed(tx, claim.ItemKind, claim.ItemID, claim.ClaimantID, now); err != nil {
			// Rolling back keeps the claim pending instead of leaving an
			// approved claim pointing at a missing item.
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
				return models.NewNotFoundError("Associated item", claim.ItemID)
			}
			return err
		}

		declined, err := s.claimRepo.DeclineCompetitors(tx, claim.ItemID, claim.ItemKind, claim.ID, in.AdminID, now)
		if err != nil {
			return err
		}
		rivals = declined
		return nil
	})
	if err != nil {
		return nil, err
	}

	claim.Status = models.ClaimStatusApproved
	claim.AdminNotes = in.Notes
	claim.ReviewedBy = &in.AdminID
	claim.ReviewedAt = &now

	observability.ClaimTransitions.WithLabelValues("approved").Inc()
	s.logger.Info("Claim approved",
		slog.Uint64("claim_id", uint64(claim.ID)),
		slog.Uint64("admin_id", uint64(in.AdminID)),
		slog.Int("rivals_declined", len(rivals)),
	)

	s.notifyReviewed(ctx, claim, true)
	for _, rival := range rivals {
		s.notifyReviewed(ctx, rival, false)
	}
	return claim, nil
}

// Decline moves a pending claim to declined. The item is untouched.
func (s *ClaimService) Decline(ctx context.Context, in ReviewClaimInput) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, in.ClaimID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.claimRepo.TransitionStatus(s.db.WithContext(ctx), claim.ID, models.ClaimStatusDeclined, in.AdminID, in.Notes, now); err != nil {
		return nil, err
	}

	claim.Status = models.ClaimStatusDeclined
	claim.AdminNotes = in.Notes
	claim.ReviewedBy = &in.AdminID
	claim.ReviewedAt = &now

	observability.ClaimTransitions.WithLabelValues("declined").Inc()
	s.notifyReviewed(ctx, claim, false)
	return claim, nil
}

// Delete removes a claim record. Deleting an approved claim compensates by
// resetting the item to active, unclaimed, and visible before the claim row
// goes away; the reset and the delete are one transaction so a concurrent
// approval cannot observe a half-reverted item. Pending and declined claims
// delete without item side effects.
func (s *ClaimService) Delete(ctx context.Context, claimID uint) error {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return err
	}

	if claim.Status != models.ClaimStatusApproved {
		if err := s.claimRepo.Delete(ctx, claimID); err != nil {
			return err
		}
		observability.ClaimTransitions.WithLabelValues("deleted").Inc()
		return nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.ResetClaim(tx, claim.ItemKind, claim.ItemID); err != nil {
			// The item may already be gone; the claim record should still
			// be deletable.
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
				return err
			}
		}

		res := tx.Delete(&models.Claim{}, claimID)
		if res.Error != nil {
			return models.NewStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Claim", claimID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.ClaimTransitions.WithLabelValues("deleted").Inc()
	s.logger.Info("Approved claim deleted, item restored",
		slog.Uint64("claim_id", uint64(claimID)),
		slog.Uint64("item_id", uint64(claim.ItemID)),
		slog.String("item_kind", string(claim.ItemKind)),
	)
	return nil
}

// GetByID returns the claim together with its resolved item. A claim whose
// item has vanished reports the missing association.
func (s *ClaimService) GetByID(ctx context.Context, claimID uint) (*ClaimDetail, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, claim.ItemKind, claim.ItemID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, models.NewNotFoundError("Associated item", claim.ItemID)
		}
		return nil, err
	}

	return &ClaimDetail{Claim: claim, Item: item}, nil
}

// GetByStatus lists claims in one lifecycle state, newest first.
func (s *ClaimService) GetByStatus(ctx context.Context, status models.ClaimStatus, limit, offset int) ([]*models.Claim, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("Status must be 'pending', 'approved' or 'declined'")
	}
	return s.claimRepo.GetByStatus(ctx, status, limit, offset)
}

// GetAll lists every claim, newest first.
func (s *ClaimService) GetAll(ctx context.Context, limit, offset int) ([]*models.Claim, error) {
	return s.claimRepo.GetAll(ctx, limit, offset)
}

// GetForUser lists a claimant's own claims.
func (s *ClaimService) GetForUser(ctx context.Context, claimantID uint) ([]*models.Claim, error) {
	return s.claimRepo.GetForUser(ctx, claimantID)
}

// notifyReviewed resolves the claimant and item and hands off to the
// notifier. Lookup failures are logged only; the review outcome stands.
func (s *ClaimService) notifyReviewed(ctx context.Context, claim *models.Claim, approved bool) {
	if s.notifier == nil {
		return
	}

	claimant := claim.Claimant
	if claimant == nil {
		u, err := s.userRepo.GetByID(ctx, claim.ClaimantID)
		if err != nil {
			s.logger.Warn("Skipping claim notification, claimant lookup failed",
				slog.Uint64("claim_id", uint64(claim.ID)),
				slog.String("error", err.Error()),
			)
			return
		}
		claimant = u
	}

	item, err := s.itemRepo.GetByID(ctx, claim.ItemKind, claim.ItemID)
	if err != nil {
		s.logger.Warn("Skipping claim notification, item lookup failed",
			slog.Uint64("claim_id", uint64(claim.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	s.notifier.NotifyClaimReviewed(claimant, item, claim, approved)
}

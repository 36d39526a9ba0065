package service

import (
	"context"
	"sort"
	"time"

	"reclaimit/internal/cache"
	"reclaimit/internal/models"
	"reclaimit/internal/repository"
)

// AdminService provides moderation operations: unified item listings,
// account blocking, and dashboard aggregates. Role and status gating happens
// in the middleware layer; this service still enforces the one rule that
// must not depend on transport, namely that admin accounts are never
// moderation targets.
type AdminService struct {
	userRepo  repository.UserRepository
	itemRepo  repository.ItemRepository
	claimRepo repository.ClaimRepository
}

// NewAdminService returns a new AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	claimRepo repository.ClaimRepository,
) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		claimRepo: claimRepo,
	}
}

// DashboardStats aggregates the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	BlockedUsers  int64 `json:"blocked_users"`
	TotalLost     int64 `json:"total_lost"`
	TotalFound    int64 `json:"total_found"`
	LostThisWeek  int64 `json:"lost_this_week"`
	FoundThisWeek int64 `json:"found_this_week"`
	PendingClaims int64 `json:"pending_claims"`
}

// GetDashboardStats computes the dashboard aggregates, cached briefly since
// the dashboard polls.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := cache.Aside(ctx, cache.StatsKey(), &stats, cache.StatsTTL, func() error {
		weekAgo := time.Now().AddDate(0, 0, -7)

		var err error
		if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
			return err
		}
		if stats.ActiveUsers, err = s.userRepo.CountByStatus(ctx, models.UserStatusActive); err != nil {
			return err
		}
		if stats.BlockedUsers, err = s.userRepo.CountByStatus(ctx, models.UserStatusBlocked); err != nil {
			return err
		}
		if stats.TotalLost, err = s.itemRepo.Count(ctx, models.KindLost, ""); err != nil {
			return err
		}
		if stats.TotalFound, err = s.itemRepo.Count(ctx, models.KindFound, ""); err != nil {
			return err
		}
		if stats.LostThisWeek, err = s.itemRepo.CountSince(ctx, models.KindLost, weekAgo); err != nil {
			return err
		}
		if stats.FoundThisWeek, err = s.itemRepo.CountSince(ctx, models.KindFound, weekAgo); err != nil {
			return err
		}
		if stats.PendingClaims, err = s.claimRepo.CountByStatus(ctx, models.ClaimStatusPending); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListAllItems returns both item kinds in one list, each entry tagged with
// its kind, newest first. The search term matches name, description,
// category and place.
func (s *AdminService) ListAllItems(ctx context.Context, search string, limit, offset int) ([]*models.Item, error) {
	// Each kind is over-fetched by the full window so the merged ordering
	// stays correct across pages.
	window := offset + limit
	filter := repository.ItemFilter{Search: search}

	lost, err := s.itemRepo.List(ctx, models.KindLost, filter, window, 0)
	if err != nil {
		return nil, err
	}
	found, err := s.itemRepo.List(ctx, models.KindFound, filter, window, 0)
	if err != nil {
		return nil, err
	}

	merged := make([]*models.Item, 0, len(lost)+len(found))
	merged = append(merged, lost...)
	merged = append(merged, found...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if offset >= len(merged) {
		return []*models.Item{}, nil
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[offset:end], nil
}

// DeleteItem removes an item of either kind.
func (s *AdminService) DeleteItem(ctx context.Context, kind models.ItemKind, id uint) error {
	if !kind.Valid() {
		return models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	return s.itemRepo.Delete(ctx, kind, id)
}

// ListUsers pages through accounts with an optional search term.
func (s *AdminService) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, search, limit, offset)
}

// UserDetail pairs an account with its reporting activity.
type UserDetail struct {
	User          *models.User `json:"user"`
	LostReported  int64        `json:"lost_reported"`
	FoundReported int64        `json:"found_reported"`
	PendingClaims int64        `json:"pending_claims"`
}

// GetUserDetail returns one account together with its item counts.
func (s *AdminService) GetUserDetail(ctx context.Context, userID uint) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	lost, err := s.itemRepo.CountByUser(ctx, models.KindLost, userID)
	if err != nil {
		return nil, err
	}
	found, err := s.itemRepo.CountByUser(ctx, models.KindFound, userID)
	if err != nil {
		return nil, err
	}
	claims, err := s.claimRepo.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var pending int64
	for _, c := range claims {
		if c.Status == models.ClaimStatusPending {
			pending++
		}
	}

	user.Password = ""
	return &UserDetail{
		User:          user,
		LostReported:  lost,
		FoundReported: found,
		PendingClaims: pending,
	}, nil
}

// ToggleUserStatus flips a user between active and blocked. Admin accounts
// cannot be targeted.
func (s *AdminService) ToggleUserStatus(ctx context.Context, targetID uint) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, models.NewForbiddenError("Admin accounts cannot be blocked or unblocked")
	}

	next := models.UserStatusBlocked
	if target.IsBlocked() {
		next = models.UserStatusActive
	}
	if err := s.userRepo.SetStatus(ctx, targetID, next); err != nil {
		return nil, err
	}

	target.Status = next
	target.Password = ""
	return target, nil
}

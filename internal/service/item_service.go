package service

import (
	"context"
	"strings"
	"time"

	"reclaimit/internal/models"
	"reclaimit/internal/repository"
)

// ItemService handles lost/found postings: creation, owner edits, listings
// and search. Claim-lifecycle mutations are out of its reach; those belong
// to ClaimService.
type ItemService struct {
	itemRepo repository.ItemRepository
}

// NewItemService returns a new ItemService.
func NewItemService(itemRepo repository.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// CreateItemInput carries a new posting. ImageURL is already resolved by the
// storage layer before the service sees it.
type CreateItemInput struct {
	Kind                models.ItemKind
	UserID              uint
	ItemName            string
	Description         string
	Category            string
	Place               string
	Date                time.Time
	ImageURL            string
	ContactInfo         string
	PickupLocation      string
	ValidationQuestions []models.ValidationQuestion
}

// UpdateItemInput carries an owner edit. Zero-value fields are left as-is.
type UpdateItemInput struct {
	Kind           models.ItemKind
	ItemID         uint
	UserID         uint
	ItemName       string
	Description    string
	Category       string
	Place          string
	Date           *time.Time
	ImageURL       string
	ContactInfo    string
	PickupLocation string
}

// ListItemsInput narrows a public listing.
type ListItemsInput struct {
	Kind     models.ItemKind
	Category string
	Status   models.ItemStatus
	Location string
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int
	Offset   int
}

func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if !in.Kind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	if strings.TrimSpace(in.ItemName) == "" {
		return nil, models.NewValidationError("Item name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if strings.TrimSpace(in.Place) == "" {
		return nil, models.NewValidationError("Location is required")
	}
	if strings.TrimSpace(in.ContactInfo) == "" {
		return nil, models.NewValidationError("Contact information is required")
	}
	if in.Date.IsZero() {
		return nil, models.NewValidationError("Event date is required")
	}
	if !models.IsValidCategory(in.Category) {
		return nil, models.NewValidationError("Category must be one of: " + strings.Join(models.Categories, ", "))
	}
	for _, q := range in.ValidationQuestions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, models.NewValidationError("Validation questions must not be empty")
		}
	}

	return s.itemRepo.Create(ctx, in.Kind, &models.Item{
		UserID:              in.UserID,
		ItemName:            in.ItemName,
		Description:         in.Description,
		Category:            in.Category,
		Place:               in.Place,
		Date:                in.Date,
		ImageURL:            in.ImageURL,
		ContactInfo:         in.ContactInfo,
		PickupLocation:      in.PickupLocation,
		ValidationQuestions: in.ValidationQuestions,
	})
}

func (s *ItemService) GetByID(ctx context.Context, kind models.ItemKind, id uint) (*models.Item, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	return s.itemRepo.GetByID(ctx, kind, id)
}

func (s *ItemService) List(ctx context.Context, in ListItemsInput) ([]*models.Item, error) {
	if !in.Kind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	if in.Category != "" && !models.IsValidCategory(in.Category) {
		return nil, models.NewValidationError("Unknown category")
	}
	return s.itemRepo.List(ctx, in.Kind, repository.ItemFilter{
		Category: in.Category,
		Status:   in.Status,
		Location: in.Location,
		DateFrom: in.DateFrom,
		DateTo:   in.DateTo,
		Search:   in.Search,
	}, in.Limit, in.Offset)
}

func (s *ItemService) Search(ctx context.Context, kind models.ItemKind, keyword string, limit, offset int) ([]*models.Item, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, models.NewValidationError("Search keyword is required")
	}
	return s.itemRepo.Search(ctx, kind, keyword, limit, offset)
}

// CategoryStat tallies visible active items in one category.
type CategoryStat struct {
	Category string `json:"category"`
	Lost     int64  `json:"lost"`
	Found    int64  `json:"found"`
	Total    int64  `json:"total"`
}

// CategoryStats returns per-category counts for both kinds, in the fixed
// category order. Categories with no items are included with zero counts.
func (s *ItemService) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	lost, err := s.itemRepo.CategoryCounts(ctx, models.KindLost)
	if err != nil {
		return nil, err
	}
	found, err := s.itemRepo.CategoryCounts(ctx, models.KindFound)
	if err != nil {
		return nil, err
	}

	stats := make([]CategoryStat, 0, len(models.Categories))
	for _, category := range models.Categories {
		stats = append(stats, CategoryStat{
			Category: category,
			Lost:     lost[category],
			Found:    found[category],
			Total:    lost[category] + found[category],
		})
	}
	return stats, nil
}

// GetUserItems lists the caller's own postings, hidden ones included.
func (s *ItemService) GetUserItems(ctx context.Context, kind models.ItemKind, userID uint) ([]*models.Item, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	return s.itemRepo.GetByUserID(ctx, kind, userID)
}

// Update applies an owner edit. Only the reporting user may edit a posting.
func (s *ItemService) Update(ctx context.Context, in UpdateItemInput) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, in.Kind, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own items")
	}

	if in.ItemName != "" {
		item.ItemName = in.ItemName
	}
	if in.Description != "" {
		item.Description = in.Description
	}
	if in.Category != "" {
		if !models.IsValidCategory(in.Category) {
			return nil, models.NewValidationError("Unknown category")
		}
		item.Category = in.Category
	}
	if in.Place != "" {
		item.Place = in.Place
	}
	if in.Date != nil {
		item.Date = *in.Date
	}
	if in.ImageURL != "" {
		item.ImageURL = in.ImageURL
	}
	if in.ContactInfo != "" {
		item.ContactInfo = in.ContactInfo
	}
	if in.PickupLocation != "" && in.Kind == models.KindFound {
		item.PickupLocation = in.PickupLocation
	}

	if err := s.itemRepo.Update(ctx, in.Kind, item); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, in.Kind, in.ItemID)
}

// Delete removes a posting. Owners may delete their own items; admins may
// delete any.
func (s *ItemService) Delete(ctx context.Context, kind models.ItemKind, id, callerID uint, callerIsAdmin bool) error {
	if !kind.Valid() {
		return models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	item, err := s.itemRepo.GetByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if item.UserID != callerID && !callerIsAdmin {
		return models.NewForbiddenError("You can only delete your own items")
	}
	return s.itemRepo.Delete(ctx, kind, id)
}

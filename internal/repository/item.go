package repository

import (
	"context"
	"errors"
	"time"

	"reclaimit/internal/cache"
	"reclaimit/internal/models"
	"reclaimit/internal/observability"

	"gorm.io/gorm"
)

// ItemFilter narrows item listings. Zero values mean "no filter".
// Filters combine as a conjunction. IncludeHidden is only set by owner
// paths; public and admin listings exclude hidden items.
type ItemFilter struct {
	Category string
	Status   models.ItemStatus
	// Location is a case-insensitive substring match on the place field.
	Location string
	// DateFrom/DateTo bound the event date inclusively.
	DateFrom *time.Time
	DateTo   *time.Time
	// Search is a case-insensitive substring match over name, description,
	// category and place.
	Search        string
	IncludeHidden bool
}

// ItemRepository provides access to both item tables through the kind
// discriminator. Mutations that belong to the claim lifecycle
// (MarkClaimed, ResetClaim) take a *gorm.DB so the claim service can run
// them inside its transaction.
type ItemRepository interface {
	Create(ctx context.Context, kind models.ItemKind, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, kind models.ItemKind, id uint) (*models.Item, error)
	List(ctx context.Context, kind models.ItemKind, filter ItemFilter, limit, offset int) ([]*models.Item, error)
	Search(ctx context.Context, kind models.ItemKind, keyword string, limit, offset int) ([]*models.Item, error)
	GetByUserID(ctx context.Context, kind models.ItemKind, userID uint) ([]*models.Item, error)
	Update(ctx context.Context, kind models.ItemKind, item *models.Item) error
	Delete(ctx context.Context, kind models.ItemKind, id uint) error
	MarkClaimed(tx *gorm.DB, kind models.ItemKind, id uint, claimantID uint, at time.Time) error
	ResetClaim(tx *gorm.DB, kind models.ItemKind, id uint) error
	MarkResolved(ctx context.Context, kind models.ItemKind, id uint) error
	Count(ctx context.Context, kind models.ItemKind, status models.ItemStatus) (int64, error)
	CountSince(ctx context.Context, kind models.ItemKind, since time.Time) (int64, error)
	CountByUser(ctx context.Context, kind models.ItemKind, userID uint) (int64, error)
	CategoryCounts(ctx context.Context, kind models.ItemKind) (map[string]int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository returns a new ItemRepository implementation.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// table maps the kind to its GORM model and table name.
func tableFor(kind models.ItemKind) (interface{}, string) {
	if kind == models.KindLost {
		return &models.LostItem{}, "lost_items"
	}
	return &models.FoundItem{}, "found_items"
}

func (r *itemRepository) Create(ctx context.Context, kind models.ItemKind, item *models.Item) (*models.Item, error) {
	defer observability.ObserveQuery("create", string(kind)+"_items", time.Now())

	switch kind {
	case models.KindLost:
		row := &models.LostItem{
			UserID:              item.UserID,
			ItemName:            item.ItemName,
			Description:         item.Description,
			Category:            item.Category,
			PlaceLost:           item.Place,
			DateLost:            item.Date,
			ImageURL:            item.ImageURL,
			ContactInfo:         item.ContactInfo,
			ValidationQuestions: item.ValidationQuestions,
			Status:              models.ItemStatusActive,
			IsVisible:           true,
		}
		if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, models.NewStorageError(err)
		}
		observability.ItemsReported.WithLabelValues(string(kind)).Inc()
		return row.AsItem(), nil
	case models.KindFound:
		pickup := item.PickupLocation
		if pickup == "" {
			pickup = models.DefaultPickupLocation
		}
		row := &models.FoundItem{
			UserID:              item.UserID,
			ItemName:            item.ItemName,
			Description:         item.Description,
			Category:            item.Category,
			PlaceFound:          item.Place,
			DateFound:           item.Date,
			ImageURL:            item.ImageURL,
			ContactInfo:         item.ContactInfo,
			PickupLocation:      pickup,
			ValidationQuestions: item.ValidationQuestions,
			Status:              models.ItemStatusActive,
			IsVisible:           true,
		}
		if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, models.NewStorageError(err)
		}
		observability.ItemsReported.WithLabelValues(string(kind)).Inc()
		return row.AsItem(), nil
	default:
		return nil, models.NewValidationError("Unknown item kind")
	}
}

func (r *itemRepository) GetByID(ctx context.Context, kind models.ItemKind, id uint) (*models.Item, error) {
	defer observability.ObserveQuery("get", string(kind)+"_items", time.Now())

	if kind == models.KindLost {
		var row models.LostItem
		err := cache.Aside(ctx, cache.ItemKey(string(kind), id), &row, cache.ItemTTL, func() error {
			if err := r.db.WithContext(ctx).Preload("User").First(&row, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("Item", id)
				}
				return models.NewStorageError(err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return row.AsItem(), nil
	}

	var row models.FoundItem
	err := cache.Aside(ctx, cache.ItemKey(string(kind), id), &row, cache.ItemTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Item", id)
			}
			return models.NewStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.AsItem(), nil
}

// placeColumn and dateColumn name the kind-specific event columns.
func placeColumn(kind models.ItemKind) string {
	if kind == models.KindLost {
		return "place_lost"
	}
	return "place_found"
}

func dateColumn(kind models.ItemKind) string {
	if kind == models.KindLost {
		return "date_lost"
	}
	return "date_found"
}

// LOWER(...) LIKE keeps substring matches case-insensitive on both
// PostgreSQL and SQLite.
func applyItemFilter(db *gorm.DB, kind models.ItemKind, filter ItemFilter) *gorm.DB {
	place := placeColumn(kind)
	date := dateColumn(kind)

	if !filter.IncludeHidden {
		db = db.Where("is_visible = ?", true)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		db = db.Where("LOWER("+place+") LIKE LOWER(?)", "%"+filter.Location+"%")
	}
	if filter.DateFrom != nil {
		db = db.Where(date+" >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where(date+" <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where(
			"LOWER(item_name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?) OR LOWER("+place+") LIKE LOWER(?)",
			pattern, pattern, pattern, pattern,
		)
	}
	return db
}

func (r *itemRepository) List(ctx context.Context, kind models.ItemKind, filter ItemFilter, limit, offset int) ([]*models.Item, error) {
	defer observability.ObserveQuery("list", string(kind)+"_items", time.Now())

	base := applyItemFilter(r.db.WithContext(ctx), kind, filter).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	if kind == models.KindLost {
		var rows []models.LostItem
		if err := base.Find(&rows).Error; err != nil {
			return nil, models.NewStorageError(err)
		}
		items := make([]*models.Item, len(rows))
		for i := range rows {
			items[i] = rows[i].AsItem()
		}
		return items, nil
	}

	var rows []models.FoundItem
	if err := base.Find(&rows).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	items := make([]*models.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].AsItem()
	}
	return items, nil
}

// Search matches a keyword against name, description and place. Only
// active, visible items are searchable.
func (r *itemRepository) Search(ctx context.Context, kind models.ItemKind, keyword string, limit, offset int) ([]*models.Item, error) {
	defer observability.ObserveQuery("search", string(kind)+"_items", time.Now())

	place := placeColumn(kind)
	pattern := "%" + keyword + "%"
	base := r.db.WithContext(ctx).
		Where("status = ? AND is_visible = ?", models.ItemStatusActive, true).
		Where(
			"LOWER(item_name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER("+place+") LIKE LOWER(?)",
			pattern, pattern, pattern,
		).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	if kind == models.KindLost {
		var rows []models.LostItem
		if err := base.Find(&rows).Error; err != nil {
			return nil, models.NewStorageError(err)
		}
		items := make([]*models.Item, len(rows))
		for i := range rows {
			items[i] = rows[i].AsItem()
		}
		return items, nil
	}

	var rows []models.FoundItem
	if err := base.Find(&rows).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	items := make([]*models.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].AsItem()
	}
	return items, nil
}

// GetByUserID lists a reporter's own items, hidden ones included.
func (r *itemRepository) GetByUserID(ctx context.Context, kind models.ItemKind, userID uint) ([]*models.Item, error) {
	base := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if kind == models.KindLost {
		var rows []models.LostItem
		if err := base.Find(&rows).Error; err != nil {
			return nil, models.NewStorageError(err)
		}
		items := make([]*models.Item, len(rows))
		for i := range rows {
			items[i] = rows[i].AsItem()
		}
		return items, nil
	}

	var rows []models.FoundItem
	if err := base.Find(&rows).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	items := make([]*models.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].AsItem()
	}
	return items, nil
}

// Update persists the mutable posting fields. Claim lifecycle columns
// (status, claimed_by, claimed_at, is_visible) are owned by the claim
// service and not touched here.
func (r *itemRepository) Update(ctx context.Context, kind models.ItemKind, item *models.Item) error {
	model, _ := tableFor(kind)

	updates := map[string]interface{}{
		"item_name":            item.ItemName,
		"description":          item.Description,
		"category":             item.Category,
		"image_url":            item.ImageURL,
		"contact_info":         item.ContactInfo,
		"validation_questions": item.ValidationQuestions,
	}
	if kind == models.KindLost {
		updates["place_lost"] = item.Place
		updates["date_lost"] = item.Date
	} else {
		updates["place_found"] = item.Place
		updates["date_found"] = item.Date
		updates["pickup_location"] = item.PickupLocation
	}

	res := r.db.WithContext(ctx).Model(model).Where("id = ?", item.ID).Updates(updates)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", item.ID)
	}
	cache.InvalidateItem(ctx, string(kind), item.ID)
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, kind models.ItemKind, id uint) error {
	model, _ := tableFor(kind)
	res := r.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", id)
	}
	cache.InvalidateItem(ctx, string(kind), id)
	cache.InvalidateStats(ctx)
	return nil
}

// MarkClaimed flips an item into the claimed state and hides it from
// public listings. Runs on the caller's transaction handle.
func (r *itemRepository) MarkClaimed(tx *gorm.DB, kind models.ItemKind, id uint, claimantID uint, at time.Time) error {
	model, _ := tableFor(kind)
	res := tx.Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.ItemStatusClaimed,
		"claimed_by": claimantID,
		"claimed_at": at,
		"is_visible": false,
	})
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", id)
	}
	cache.InvalidateItem(tx.Statement.Context, string(kind), id)
	cache.InvalidateStats(tx.Statement.Context)
	return nil
}

// ResetClaim returns an item to the active, unclaimed, visible state.
// Compensation path for deleting an approved claim.
func (r *itemRepository) ResetClaim(tx *gorm.DB, kind models.ItemKind, id uint) error {
	model, _ := tableFor(kind)
	res := tx.Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.ItemStatusActive,
		"claimed_by": nil,
		"claimed_at": nil,
		"is_visible": true,
	})
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", id)
	}
	cache.InvalidateItem(tx.Statement.Context, string(kind), id)
	cache.InvalidateStats(tx.Statement.Context)
	return nil
}

// MarkResolved closes a lost-item posting whose owner recovered it outside
// the claim flow.
func (r *itemRepository) MarkResolved(ctx context.Context, kind models.ItemKind, id uint) error {
	model, _ := tableFor(kind)
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.ItemStatusResolved,
		"is_visible": false,
	})
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", id)
	}
	cache.InvalidateItem(ctx, string(kind), id)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *itemRepository) Count(ctx context.Context, kind models.ItemKind, status models.ItemStatus) (int64, error) {
	model, _ := tableFor(kind)
	q := r.db.WithContext(ctx).Model(model)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

func (r *itemRepository) CountByUser(ctx context.Context, kind models.ItemKind, userID uint) (int64, error) {
	model, _ := tableFor(kind)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

// CategoryCounts tallies visible active items per category.
func (r *itemRepository) CategoryCounts(ctx context.Context, kind models.ItemKind) (map[string]int64, error) {
	model, _ := tableFor(kind)
	var rows []struct {
		Category string
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(model).
		Select("category, COUNT(*) as count").
		Where("status = ? AND is_visible = ?", models.ItemStatusActive, true).
		Group("category").
		Find(&rows).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *itemRepository) CountSince(ctx context.Context, kind models.ItemKind, since time.Time) (int64, error) {
	model, _ := tableFor(kind)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

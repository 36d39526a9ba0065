package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemKind discriminates the two item tables. Claims reference items
// through (ItemID, ItemKind) so the claim service resolves the correct
// table from a typed constant rather than a free-form string.
type ItemKind string

// ItemStatus governs claim eligibility. Visibility is tracked separately:
// a hidden item is excluded from public listings regardless of status.
type ItemStatus string

const (
	KindLost  ItemKind = "lost"
	KindFound ItemKind = "found"

	ItemStatusActive   ItemStatus = "active"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusResolved ItemStatus = "resolved"
)

// Valid reports whether k names a known item kind.
func (k ItemKind) Valid() bool {
	return k == KindLost || k == KindFound
}

// DefaultPickupLocation is applied to found items reported without one.
const DefaultPickupLocation = "Student Center - Lost & Found Office"

// Categories is the fixed set of item categories.
var Categories = []string{
	"Electronics",
	"Documents",
	"Clothing",
	"Accessories",
	"Books",
	"Keys",
	"ID Cards",
	"Wallets",
	"Others",
}

// IsValidCategory reports whether c is one of the enumerated categories.
func IsValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// ValidationQuestion is a question the reporter attaches to an item so an
// admin can judge ownership claims against the expected answer.
type ValidationQuestion struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

// LostItem is a posting for an item a user lost on campus.
type LostItem struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	UserID              uint                 `gorm:"not null;index" json:"user_id"`
	User                *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ItemName            string               `gorm:"not null;index" json:"item_name"`
	Description         string               `gorm:"type:text;not null" json:"description"`
	Category            string               `gorm:"not null;index:idx_lost_category_status" json:"category"`
	PlaceLost           string               `gorm:"not null" json:"place_lost"`
	DateLost            time.Time            `gorm:"not null" json:"date_lost"`
	ImageURL            string               `json:"image_url"`
	ContactInfo         string               `gorm:"not null" json:"contact_info"`
	ValidationQuestions []ValidationQuestion `gorm:"serializer:json" json:"validation_questions"`
	Status              ItemStatus           `gorm:"type:varchar(16);default:active;index:idx_lost_category_status" json:"status"`
	ClaimedBy           *uint                `json:"claimed_by"`
	ClaimedAt           *time.Time           `json:"claimed_at"`
	IsVisible           bool                 `gorm:"default:true" json:"is_visible"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}

// FoundItem is a posting for an item someone found and handed in.
type FoundItem struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	UserID              uint                 `gorm:"not null;index" json:"user_id"`
	User                *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ItemName            string               `gorm:"not null;index" json:"item_name"`
	Description         string               `gorm:"type:text;not null" json:"description"`
	Category            string               `gorm:"not null;index:idx_found_category_status" json:"category"`
	PlaceFound          string               `gorm:"not null" json:"place_found"`
	DateFound           time.Time            `gorm:"not null" json:"date_found"`
	ImageURL            string               `json:"image_url"`
	ContactInfo         string               `gorm:"not null" json:"contact_info"`
	PickupLocation      string               `gorm:"default:'Student Center - Lost & Found Office'" json:"pickup_location"`
	ValidationQuestions []ValidationQuestion `gorm:"serializer:json" json:"validation_questions"`
	Status              ItemStatus           `gorm:"type:varchar(16);default:active;index:idx_found_category_status" json:"status"`
	ClaimedBy           *uint                `json:"claimed_by"`
	ClaimedAt           *time.Time           `json:"claimed_at"`
	IsVisible           bool                 `gorm:"default:true" json:"is_visible"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}

// Item is the kind-agnostic view the claim service and admin listings work
// with. Place/Date map to PlaceLost/DateLost or PlaceFound/DateFound
// depending on Kind.
type Item struct {
	ID                  uint                 `json:"id"`
	Kind                ItemKind             `json:"kind"`
	UserID              uint                 `json:"user_id"`
	ItemName            string               `json:"item_name"`
	Description         string               `json:"description"`
	Category            string               `json:"category"`
	Place               string               `json:"place"`
	Date                time.Time            `json:"date"`
	ImageURL            string               `json:"image_url"`
	ContactInfo         string               `json:"contact_info"`
	PickupLocation      string               `json:"pickup_location,omitempty"`
	ValidationQuestions []ValidationQuestion `json:"validation_questions"`
	Status              ItemStatus           `json:"status"`
	ClaimedBy           *uint                `json:"claimed_by"`
	ClaimedAt           *time.Time           `json:"claimed_at"`
	IsVisible           bool                 `json:"is_visible"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// AsItem converts a lost item into the kind-agnostic view.
func (i *LostItem) AsItem() *Item {
	return &Item{
		ID:                  i.ID,
		Kind:                KindLost,
		UserID:              i.UserID,
		ItemName:            i.ItemName,
		Description:         i.Description,
		Category:            i.Category,
		Place:               i.PlaceLost,
		Date:                i.DateLost,
		ImageURL:            i.ImageURL,
		ContactInfo:         i.ContactInfo,
		ValidationQuestions: i.ValidationQuestions,
		Status:              i.Status,
		ClaimedBy:           i.ClaimedBy,
		ClaimedAt:           i.ClaimedAt,
		IsVisible:           i.IsVisible,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
}

// AsItem converts a found item into the kind-agnostic view.
func (i *FoundItem) AsItem() *Item {
	return &Item{
		ID:                  i.ID,
		Kind:                KindFound,
		UserID:              i.UserID,
		ItemName:            i.ItemName,
		Description:         i.Description,
		Category:            i.Category,
		Place:               i.PlaceFound,
		Date:                i.DateFound,
		ImageURL:            i.ImageURL,
		ContactInfo:         i.ContactInfo,
		PickupLocation:      i.PickupLocation,
		ValidationQuestions: i.ValidationQuestions,
		Status:              i.Status,
		ClaimedBy:           i.ClaimedBy,
		ClaimedAt:           i.ClaimedAt,
		IsVisible:           i.IsVisible,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// ClaimStatus is the claim lifecycle state. A claim starts pending and is
// moved exactly once to approved or declined during admin review.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusDeclined ClaimStatus = "declined"
)

// Valid reports whether s names a known claim status.
func (s ClaimStatus) Valid() bool {
	return s == ClaimStatusPending || s == ClaimStatusApproved || s == ClaimStatusDeclined
}

// ClaimAnswer is one submitted (question, answer) pair. Answers are stored
// verbatim; admins judge them manually during review.
type ClaimAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Claim is a formal ownership request against one item, referenced by
// (ItemID, ItemKind). At most one pending claim may exist per
// (item, claimant); the database enforces this with a partial unique index.
type Claim struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ItemID     uint           `gorm:"not null;index:idx_claims_item" json:"item_id"`
	ItemKind   ItemKind       `gorm:"type:varchar(8);not null;index:idx_claims_item" json:"item_kind"`
	ClaimantID uint           `gorm:"not null;index" json:"claimant_id"`
	Claimant   *User          `gorm:"foreignKey:ClaimantID" json:"claimant,omitempty"`
	Answers    []ClaimAnswer  `gorm:"serializer:json" json:"answers"`
	Status     ClaimStatus    `gorm:"type:varchar(16);default:pending;index" json:"status"`
	AdminNotes string         `json:"admin_notes"`
	ReviewedBy *uint          `json:"reviewed_by"`
	Reviewer   *User          `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt *time.Time     `json:"reviewed_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

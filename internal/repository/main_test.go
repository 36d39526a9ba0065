package repository

import (
	"testing"
	"time"

	"reclaimit/internal/database"
	"reclaimit/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory SQLite database with the full
// schema, partial indexes included.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectTest()
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, roll string) *models.User {
	t.Helper()
	user := &models.User{
		Name:        "Test User",
		Email:       email,
		Password:    "hashed-password",
		RollNumber:  roll,
		Branch:      "CSE",
		ContactInfo: "555-0100",
		Role:        models.RoleUser,
		Status:      models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedFoundItem(t *testing.T, db *gorm.DB, userID uint) *models.FoundItem {
	t.Helper()
	item := &models.FoundItem{
		UserID:      userID,
		ItemName:    "Black Wallet",
		Description: "Leather wallet found near the library entrance",
		Category:    "Wallets",
		PlaceFound:  "Central Library",
		DateFound:   time.Now().AddDate(0, 0, -1),
		ContactInfo: "555-0100",
		ValidationQuestions: []models.ValidationQuestion{
			{Question: "What color is the card holder?", ExpectedAnswer: "red"},
		},
		Status:    models.ItemStatusActive,
		IsVisible: true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedLostItem(t *testing.T, db *gorm.DB, userID uint) *models.LostItem {
	t.Helper()
	item := &models.LostItem{
		UserID:      userID,
		ItemName:    "Casio Calculator",
		Description: "Scientific calculator with a cracked corner",
		Category:    "Electronics",
		PlaceLost:   "Lecture Hall 3",
		DateLost:    time.Now().AddDate(0, 0, -2),
		ContactInfo: "555-0100",
		Status:      models.ItemStatusActive,
		IsVisible:   true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedClaim(t *testing.T, db *gorm.DB, itemID uint, kind models.ItemKind, claimantID uint) *models.Claim {
	t.Helper()
	claim := &models.Claim{
		ItemID:     itemID,
		ItemKind:   kind,
		ClaimantID: claimantID,
		Answers: []models.ClaimAnswer{
			{Question: "What color is the card holder?", Answer: "red"},
		},
		Status: models.ClaimStatusPending,
	}
	require.NoError(t, db.Create(claim).Error)
	return claim
}

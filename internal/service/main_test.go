package service

import (
	"sync"
	"testing"
	"time"

	"reclaimit/internal/database"
	"reclaimit/internal/models"
	"reclaimit/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectTest()
	require.NoError(t, err)
	return db
}

// notifierStub records review notifications instead of sending mail.
type notifierStub struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	userID   uint
	claimID  uint
	approved bool
}

func (n *notifierStub) NotifyClaimReviewed(user *models.User, _ *models.Item, claim *models.Claim, approved bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userID: user.ID, claimID: claim.ID, approved: approved})
}

func (n *notifierStub) recorded() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifyCall, len(n.calls))
	copy(out, n.calls)
	return out
}

// claimFixture wires a claim service against an isolated database.
type claimFixture struct {
	db       *gorm.DB
	svc      *ClaimService
	notifier *notifierStub
	items    repository.ItemRepository
	users    repository.UserRepository
	claims   repository.ClaimRepository
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	db := newTestDB(t)
	notifier := &notifierStub{}
	claims := repository.NewClaimRepository(db)
	items := repository.NewItemRepository(db)
	users := repository.NewUserRepository(db)
	return &claimFixture{
		db:       db,
		svc:      NewClaimService(db, claims, items, users, notifier),
		notifier: notifier,
		items:    items,
		users:    users,
		claims:   claims,
	}
}

func (f *claimFixture) seedUser(t *testing.T, email, roll string) *models.User {
	t.Helper()
	user := &models.User{
		Name:        "Test User",
		Email:       email,
		Password:    "hashed-password",
		RollNumber:  roll,
		Branch:      "ECE",
		ContactInfo: "555-0200",
		Role:        models.RoleUser,
		Status:      models.UserStatusActive,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *claimFixture) seedFoundItem(t *testing.T, ownerID uint) *models.FoundItem {
	t.Helper()
	item := &models.FoundItem{
		UserID:      ownerID,
		ItemName:    "Silver Keychain",
		Description: "Keychain with three keys found near the cafeteria",
		Category:    "Keys",
		PlaceFound:  "Cafeteria",
		DateFound:   time.Now().AddDate(0, 0, -1),
		ContactInfo: "555-0200",
		ValidationQuestions: []models.ValidationQuestion{
			{Question: "How many keys are on it?", ExpectedAnswer: "three"},
		},
		Status:    models.ItemStatusActive,
		IsVisible: true,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *claimFixture) reloadFound(t *testing.T, id uint) *models.FoundItem {
	t.Helper()
	var item models.FoundItem
	require.NoError(t, f.db.First(&item, id).Error)
	return &item
}

func (f *claimFixture) reloadClaim(t *testing.T, id uint) *models.Claim {
	t.Helper()
	var claim models.Claim
	require.NoError(t, f.db.First(&claim, id).Error)
	return &claim
}

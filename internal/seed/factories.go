// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"reclaimit/internal/classifier"
	"reclaimit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password assigned to every generated account.
const SeedPassword = "Password123!"

var campusPlaces = []string{
	"Library", "Cafeteria", "Lecture Hall 1", "Lecture Hall 3", "Sports Complex",
	"Hostel Block A", "Hostel Block C", "Computer Lab", "Auditorium", "Bus Stop",
	"Student Center", "Chemistry Lab", "Parking Lot", "Main Gate",
}

var branches = []string{
	"Computer Science", "Electrical Engineering", "Mechanical Engineering",
	"Civil Engineering", "Electronics", "Chemical Engineering",
}

// itemTemplates pair plausible item names with their category so generated
// data matches what the classifier would suggest.
var itemTemplates = map[string][]string{
	"Electronics": {"iPhone 13", "Dell Laptop", "Wireless Earbuds", "Casio Calculator", "Power Bank"},
	"Documents":   {"Chemistry Notes", "Exam Hall Ticket", "Internship Certificate"},
	"Clothing":    {"Blue Hoodie", "College Blazer", "Red Scarf", "Baseball Cap"},
	"Accessories": {"Wrist Watch", "Silver Ring", "Sunglasses", "Bracelet"},
	"Books":       {"Physics Textbook", "Data Structures Book", "Lab Manual", "Novel"},
	"Keys":        {"Hostel Key", "Bike Key", "Locker Key"},
	"ID Cards":    {"Student ID Card", "Library Card", "Bus Pass"},
	"Wallets":     {"Leather Wallet", "Card Holder", "Coin Purse"},
	"Others":      {"Water Bottle", "Umbrella", "Black Backpack", "Gym Bag"},
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	rng          *rand.Rand
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// Hash once; bcrypt per generated user makes large seeds crawl.
	hashed, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hashed),
	}
}

// CreateUser constructs and persists a sample account. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:        gofakeit.Name(),
		Email:       gofakeit.Email(),
		Password:    f.passwordHash,
		RollNumber:  fmt.Sprintf("%s%d-%04d", gofakeit.LetterN(2), gofakeit.Number(18, 25), gofakeit.Number(1, 9999)),
		Branch:      branches[f.rng.Intn(len(branches))],
		ContactInfo: gofakeit.Phone(),
		Role:        models.RoleUser,
		Status:      models.UserStatusActive,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// randomItemName picks a category and a matching item name.
func (f *Factory) randomItemName() (category, name string) {
	categories := classifier.AllCategories()
	category = categories[f.rng.Intn(len(categories))]
	names := itemTemplates[category]
	if len(names) == 0 {
		names = itemTemplates["Others"]
		category = "Others"
	}
	return category, names[f.rng.Intn(len(names))]
}

// spreadBack returns a timestamp up to maxDays in the past.
func (f *Factory) spreadBack(maxDays int) time.Time {
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
}

// CreateLostItem constructs and persists a lost item report for the user.
func (f *Factory) CreateLostItem(user *models.User, overrides ...func(*models.LostItem)) (*models.LostItem, error) {
	category, name := f.randomItemName()
	item := &models.LostItem{
		UserID:      user.ID,
		ItemName:    name,
		Description: gofakeit.Sentence(12),
		Category:    category,
		PlaceLost:   campusPlaces[f.rng.Intn(len(campusPlaces))],
		DateLost:    f.spreadBack(30),
		ContactInfo: user.ContactInfo,
		Status:      models.ItemStatusActive,
		IsVisible:   true,
	}
	for _, override := range overrides {
		override(item)
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateFoundItem constructs and persists a found item report for the user,
// including a validation question for the claim flow.
func (f *Factory) CreateFoundItem(user *models.User, overrides ...func(*models.FoundItem)) (*models.FoundItem, error) {
	category, name := f.randomItemName()
	item := &models.FoundItem{
		UserID:      user.ID,
		ItemName:    name,
		Description: gofakeit.Sentence(12),
		Category:    category,
		PlaceFound:  campusPlaces[f.rng.Intn(len(campusPlaces))],
		DateFound:   f.spreadBack(30),
		ContactInfo: user.ContactInfo,
		Status:      models.ItemStatusActive,
		IsVisible:   true,
		ValidationQuestions: []models.ValidationQuestion{
			{
				Question:       "Describe a distinguishing mark on the " + strings.ToLower(name),
				ExpectedAnswer: gofakeit.Word(),
			},
		},
	}
	for _, override := range overrides {
		override(item)
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateClaim constructs and persists a pending claim by the user against
// the given found item.
func (f *Factory) CreateClaim(claimant *models.User, item *models.FoundItem, overrides ...func(*models.Claim)) (*models.Claim, error) {
	answers := make([]models.ClaimAnswer, 0, len(item.ValidationQuestions))
	for _, q := range item.ValidationQuestions {
		answers = append(answers, models.ClaimAnswer{
			Question: q.Question,
			Answer:   gofakeit.Sentence(4),
		})
	}
	claim := &models.Claim{
		ItemID:     item.ID,
		ItemKind:   models.KindFound,
		ClaimantID: claimant.ID,
		Answers:    answers,
		Status:     models.ClaimStatusPending,
	}
	for _, override := range overrides {
		override(claim)
	}
	if err := f.db.Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}

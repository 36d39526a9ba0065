package seed

import (
	"fmt"
	"log"

	"reclaimit/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll wipes seeded tables. Order matters because claims reference
// items and users.
func (s *Seeder) ClearAll() error {
	log.Println("Cleaning database...")
	tables := []string{"claims", "lost_items", "found_items", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedCampus creates users with a realistic mix of lost reports, found
// reports, and pending claims against some of the found items.
func (s *Seeder) SeedCampus(numUsers, numItems int) error {
	if numUsers < 2 {
		numUsers = 2
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	var foundItems []*models.FoundItem
	for i := 0; i < numItems; i++ {
		reporter := users[i%len(users)]
		if i%2 == 0 {
			if _, err := s.factory.CreateLostItem(reporter); err != nil {
				return fmt.Errorf("create lost item: %w", err)
			}
			continue
		}
		item, err := s.factory.CreateFoundItem(reporter)
		if err != nil {
			return fmt.Errorf("create found item: %w", err)
		}
		foundItems = append(foundItems, item)
	}
	log.Printf("Created %d items (%d found)", numItems, len(foundItems))

	// A pending claim on every third found item, filed by someone other
	// than the reporter.
	claims := 0
	for i, item := range foundItems {
		if i%3 != 0 {
			continue
		}
		claimant := users[(i+1)%len(users)]
		if claimant.ID == item.UserID {
			claimant = users[(i+2)%len(users)]
		}
		if _, err := s.factory.CreateClaim(claimant, item); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}
		claims++
	}
	log.Printf("Created %d pending claims", claims)

	return nil
}

// EnsureAdmin creates a default admin account when none exists.
func (s *Seeder) EnsureAdmin() (*models.User, error) {
	var admin models.User
	err := s.db.Where("role = ?", models.RoleAdmin).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return s.factory.CreateUser(func(u *models.User) {
		u.Name = "Administrator"
		u.Email = "admin@reclaimit.local"
		u.RollNumber = "ADMIN-0001"
		u.Role = models.RoleAdmin
	})
}

// Package main provides admin management utilities for ReClaimIt.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"reclaimit/internal/config"
	"reclaimit/internal/database"
	"reclaimit/internal/models"
	"reclaimit/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminSetup bootstraps or manages admin accounts from the command line
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go bootstrap <email> <password>  - Create the initial admin account")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>            - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>             - Demote user from admin")
		fmt.Println("  go run ./cmd/admin/main.go list-admins                  - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "bootstrap":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin/main.go bootstrap <email> <password>")
			os.Exit(1)
		}
		bootstrapAdmin(db, os.Args[2], os.Args[3])

	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <user_id>")
			os.Exit(1)
		}
		promoteToAdmin(db, os.Args[2])

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <user_id>")
			os.Exit(1)
		}
		demoteFromAdmin(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// bootstrapAdmin creates an admin account, or promotes the account if the
// email is already registered. Idempotent so deploy scripts can call it.
func bootstrapAdmin(db *gorm.DB, email, password string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		log.Fatalf("Invalid email: %v", err)
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsAdmin() {
			fmt.Printf("User %s (ID: %d) is already an admin\n", existing.Email, existing.ID)
			return
		}
		existing.Role = models.RoleAdmin
		if err := db.Save(&existing).Error; err != nil {
			log.Fatalf("Failed to promote existing user: %v", err)
		}
		fmt.Printf("Promoted existing user %s (ID: %d) to admin\n", existing.Email, existing.ID)
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to creation

	default:
		log.Fatalf("Database error: %v", err)
	}

	if err := validation.ValidatePassword(password); err != nil {
		log.Fatalf("Invalid password: %v", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Name:       "Administrator",
		Email:      email,
		Password:   string(hashed),
		RollNumber: "ADMIN-0001",
		Role:       models.RoleAdmin,
		Status:     models.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}
	fmt.Printf("Created admin account %s (ID: %d)\n", admin.Email, admin.ID)
}

func promoteToAdmin(db *gorm.DB, userID string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.IsAdmin() {
		fmt.Printf("User %s (ID: %d) is already an admin\n", user.Email, user.ID)
		return
	}

	user.Role = models.RoleAdmin
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to promote user: %v", err)
	}
	fmt.Printf("Successfully promoted %s (ID: %d) to admin\n", user.Email, user.ID)
}

func demoteFromAdmin(db *gorm.DB, userID string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if !user.IsAdmin() {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.Email, user.ID)
		return
	}

	user.Role = models.RoleUser
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to demote user: %v", err)
	}
	fmt.Printf("Successfully demoted %s (ID: %d) from admin\n", user.Email, user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admin accounts found")
		return
	}
	fmt.Printf("%-5s %-30s %-15s %s\n", "ID", "Email", "Roll Number", "Status")
	for _, a := range admins {
		fmt.Printf("%-5d %-30s %-15s %s\n", a.ID, a.Email, a.RollNumber, a.Status)
	}
}

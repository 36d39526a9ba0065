// Command main runs the database seeder for ReClaimIt.
package main

import (
	"flag"
	"log"

	"reclaimit/internal/config"
	"reclaimit/internal/database"
	"reclaimit/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numItems := flag.Int("items", 120, "Number of item reports to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d items, clean=%v\n", *numUsers, *numItems, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.SeedCampus(*numUsers, *numItems); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	admin, err := s.EnsureAdmin()
	if err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
	log.Printf("Admin account: %s", admin.Email)
	log.Printf("All seeded accounts use the password: %s", seed.SeedPassword)
}

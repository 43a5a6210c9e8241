package db

import (
	"log"
	"os"
	"waypoint/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=waypoint port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCities()
}

// Migrate runs AutoMigrate for every model. Exposed so tests can build a
// schema on a throwaway database.
func Migrate(g *gorm.DB) error {
	return g.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.Place{},
		&models.Playbook{},
		&models.PlaybookEntry{},
		&models.PlaybookRevision{},
		&models.Vote{},
		&models.Comment{},
		&models.Bookmark{},
		&models.PointLog{},
		&models.Gig{},
		&models.Product{},
		&models.ChatRoom{},
		&models.ChatMessage{},
	)
}

func seedCities() {
	var count int64
	DB.Model(&models.City{}).Count(&count)
	if count > 0 {
		log.Println("Cities already seeded, skipping")
		return
	}

	cities := []models.City{
		{Name: "Lisbon", Country: "Portugal", Description: "Hills, tiles and long layovers by the Tagus"},
		{Name: "Bangkok", Country: "Thailand", Description: "Street food capital and regional crew hub"},
		{Name: "Mexico City", Country: "Mexico", Description: "High-altitude sprawl with endless neighborhoods"},
		{Name: "Tbilisi", Country: "Georgia", Description: "Cheap, walkable, and full of guesthouses"},
	}

	for _, city := range cities {
		if err := DB.Create(&city).Error; err != nil {
			log.Printf("Failed to create city %s: %v", city.Name, err)
		}
	}
	log.Println("Initial cities created successfully")
}

package services

import (
	"path/filepath"
	"testing"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB points the package-global connection at a throwaway sqlite file
// and returns it. Each test gets a fresh schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	g, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// Serialize writers; sqlite allows only one anyway
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(g); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	prev := db.DB
	db.DB = g
	t.Cleanup(func() {
		db.DB = prev
		sqlDB.Close()
	})
	return g
}

func seedUser(t *testing.T, g *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Username: email, Email: email, Password: "x"}
	if err := g.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedPlace(t *testing.T, g *gorm.DB, owner *models.User) *models.Place {
	t.Helper()
	city := models.City{Name: "Testville-" + utils.RandomID(6), Country: "Nowhere"}
	if err := g.Create(&city).Error; err != nil {
		t.Fatalf("seed city: %v", err)
	}
	place := models.Place{
		Pid:    utils.RandomID(8),
		CityID: city.ID,
		UserID: owner.ID,
		Name:   "Test Place",
	}
	if err := g.Create(&place).Error; err != nil {
		t.Fatalf("seed place: %v", err)
	}
	return &place
}

func seedPlaybook(t *testing.T, g *gorm.DB, owner *models.User) *models.Playbook {
	t.Helper()
	city := models.City{Name: "Bookville-" + utils.RandomID(6), Country: "Nowhere"}
	if err := g.Create(&city).Error; err != nil {
		t.Fatalf("seed city: %v", err)
	}
	playbook := models.Playbook{
		Pid:    utils.RandomID(8),
		CityID: city.ID,
		UserID: owner.ID,
		Title:  "Test Playbook",
	}
	if err := g.Create(&playbook).Error; err != nil {
		t.Fatalf("seed playbook: %v", err)
	}
	return &playbook
}

package handlers

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

// newTestDB points the package-global connection at a throwaway sqlite file.
// The connection is deliberately left open: background workers scheduled by
// handlers may still touch it after the test body returns.
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
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(g); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	db.DB = g
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

func seedCity(t *testing.T, g *gorm.DB) *models.City {
	t.Helper()
	city := models.City{Name: "Testville-" + utils.RandomID(6), Country: "Nowhere"}
	if err := g.Create(&city).Error; err != nil {
		t.Fatalf("seed city: %v", err)
	}
	return &city
}

func seedPlace(t *testing.T, g *gorm.DB, owner *models.User) *models.Place {
	t.Helper()
	city := seedCity(t, g)
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

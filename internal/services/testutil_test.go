package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema. A
// single connection keeps the in-memory store alive for the test's life.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}
}

func ownerPrincipal(id uint, messID uint) *auth.Principal {
	return &auth.Principal{ID: id, Username: "owner", Role: models.RoleOwner, MessID: &messID}
}

func seedMess(t *testing.T, db *gorm.DB, name string, capacity int) *models.Mess {
	t.Helper()
	mess := models.Mess{Name: name, Capacity: capacity, IsActive: true}
	if err := db.Create(&mess).Error; err != nil {
		t.Fatalf("seeding mess %q: %v", name, err)
	}
	return &mess
}

func seedOwner(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	owner := models.User{
		Username: username,
		Password: "x",
		Role:     models.RoleOwner,
		Name:     username,
		IsActive: true,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seeding owner %q: %v", username, err)
	}
	return &owner
}

func seedStudent(t *testing.T, db *gorm.DB, messID uint, name string, fee float64) *models.Student {
	t.Helper()
	student := models.Student{
		MessID: messID,
		Name:   name,
		Mobile: "9999999999",
		Fee:    fee,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seeding student %q: %v", name, err)
	}
	if err := db.Model(&models.Mess{}).Where("id = ?", messID).
		UpdateColumn("occupancy", gorm.Expr("occupancy + ?", 1)).Error; err != nil {
		t.Fatalf("bumping occupancy: %v", err)
	}
	return &student
}

func mustMess(t *testing.T, db *gorm.DB, id uint) models.Mess {
	t.Helper()
	var mess models.Mess
	if err := db.First(&mess, id).Error; err != nil {
		t.Fatalf("fetching mess %d: %v", id, err)
	}
	return mess
}

func mustStudent(t *testing.T, db *gorm.DB, id uint) models.Student {
	t.Helper()
	var student models.Student
	if err := db.First(&student, id).Error; err != nil {
		t.Fatalf("fetching student %d: %v", id, err)
	}
	return student
}

func mustUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("fetching user %d: %v", id, err)
	}
	return user
}

// closeTo reports whether two times are within a tolerance, for
// assertions against values stamped with time.Now inside the services.
func closeTo(a, b time.Time, tolerance time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

package repo

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/carhaus/car_shop/internal/models"
)

const testThreshold = 5

// newTestDB connects to the Postgres test database, migrates the schema and
// truncates it. Row-lock behavior is driver-specific, so these tests need a
// real Postgres (TEST_DATABASE_URL), not sqlite.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Brand{},
		&models.Car{},
		&models.User{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	tables := []string{
		"order_items",
		"orders",
		"cart_items",
		"users",
		"cars",
		"brands",
	}
	query := fmt.Sprintf(
		"TRUNCATE TABLE %s RESTART IDENTITY CASCADE",
		strings.Join(tables, ", "),
	)
	if err := db.Exec(query).Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return db
}

func seedBrand(t *testing.T, db *gorm.DB, name string) models.Brand {
	t.Helper()
	brand := models.Brand{Name: name}
	if err := db.Create(&brand).Error; err != nil {
		t.Fatalf("failed to seed brand: %v", err)
	}
	return brand
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedCar(t *testing.T, db *gorm.DB, brandID uint, model string, price float64, stock int, status string) models.Car {
	t.Helper()
	car := models.Car{
		BrandID: brandID,
		Model:   model,
		Price:   price,
		Stock:   stock,
		Status:  status,
	}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("failed to seed car: %v", err)
	}
	return car
}

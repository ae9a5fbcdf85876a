package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

// CartRepo owns per-user cart rows. Stock checks here are advisory: they
// reject obvious overselling at add time but reserve nothing. The order
// transaction re-checks stock under a lock.
type CartRepo struct {
	DB *gorm.DB
}

// CartLine is a cart row joined with the live car record. Price and status
// reflect the current catalog, not the values at add time.
type CartLine struct {
	CartItemID uint    `json:"cart_item_id"`
	CarID      uint    `json:"car_id"`
	Model      string  `json:"model"`
	Brand      string  `json:"brand"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	Status     string  `json:"status"`
	Image      string  `json:"image"`
	Quantity   uint    `json:"quantity"`
}

// AddItem merges quantity into an existing (user, car) row or inserts a new
// one. The combined quantity is validated against current stock.
func (r *CartRepo) AddItem(ctx context.Context, userID, carID uint, quantity uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.First(&car, carID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("car %d: %w", carID, apperr.ErrNotFound)
			}
			return apperr.FromDB(err)
		}
		if car.Status == models.CarStatusDiscontinued {
			return fmt.Errorf("car %d is discontinued: %w", carID, apperr.ErrNotFound)
		}

		newQuantity := quantity
		var item models.CartItem
		found := true
		if err := tx.Where("user_id = ? AND car_id = ?", userID, carID).First(&item).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.FromDB(err)
			}
			found = false
		} else {
			newQuantity += item.Quantity
		}

		if int(newQuantity) > car.Stock {
			return fmt.Errorf("car %d: have %d, want %d: %w",
				carID, car.Stock, newQuantity, apperr.ErrInsufficientStock)
		}

		if found {
			if err := tx.Model(&item).Update("quantity", newQuantity).Error; err != nil {
				return apperr.FromDB(err)
			}
		} else {
			item = models.CartItem{UserID: userID, CarID: carID, Quantity: quantity}
			if err := tx.Create(&item).Error; err != nil {
				return apperr.FromDB(err)
			}
		}

		return tx.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error
	})
	if err != nil {
		return 0, apperr.FromDB(err)
	}
	return count, nil
}

// UpdateQuantity replaces the quantity of an owned cart row after an
// advisory stock check.
func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("id = ? AND user_id = ?", cartItemID, userID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart item %d: %w", cartItemID, apperr.ErrNotFound)
			}
			return apperr.FromDB(err)
		}

		var car models.Car
		if err := tx.First(&car, item.CarID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("car %d: %w", item.CarID, apperr.ErrNotFound)
			}
			return apperr.FromDB(err)
		}
		if int(quantity) > car.Stock {
			return fmt.Errorf("car %d: have %d, want %d: %w",
				car.ID, car.Stock, quantity, apperr.ErrInsufficientStock)
		}

		return tx.Model(&item).Update("quantity", quantity).Error
	})
	return apperr.FromDB(err)
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, cartItemID uint) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", cartItemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d: %w", cartItemID, apperr.ErrNotFound)
	}
	return nil
}

func (r *CartRepo) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, apperr.FromDB(err)
	}
	return count, nil
}

func (r *CartRepo) List(ctx context.Context, userID uint) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	err := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.id AS cart_item_id, ci.quantity, c.id AS car_id, c.model, b.name AS brand, c.price, c.stock, c.status, c.images AS image").
		Joins("JOIN cars c ON ci.car_id = c.id").
		Joins("LEFT JOIN brands b ON c.brand_id = b.id").
		Where("ci.user_id = ?", userID).
		Order("ci.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return lines, nil
}

// Items returns the raw cart rows for a user, oldest first.
func (r *CartRepo) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return items, nil
}

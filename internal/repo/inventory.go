package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

// InventoryRepo owns car stock and lifecycle status. Every stock mutation
// locks the car row first so concurrent checkouts serialize per car.
type InventoryRepo struct {
	DB        *gorm.DB
	Threshold int
}

// deriveStatus maps a stock count to its automatic status. Never applied
// while a car is discontinued.
func deriveStatus(stock, threshold int) string {
	switch {
	case stock == 0:
		return models.CarStatusOutOfStock
	case stock <= threshold:
		return models.CarStatusLowStock
	default:
		return models.CarStatusAvailable
	}
}

// lockCarTx loads the car row under a row-level write lock.
func lockCarTx(tx *gorm.DB, carID uint) (*models.Car, error) {
	var car models.Car
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car %d: %w", carID, apperr.ErrNotFound)
		}
		return nil, apperr.FromDB(err)
	}
	return &car, nil
}

// applyStockTx writes the new stock count on an already-locked car and
// recomputes the derived status, unless the status is preserved or sticky.
func applyStockTx(tx *gorm.DB, car *models.Car, newStock, threshold int, preserveStatus bool) error {
	car.Stock = newStock
	if !preserveStatus && car.Status != models.CarStatusDiscontinued {
		car.Status = deriveStatus(newStock, threshold)
	}
	if err := tx.Model(car).Updates(map[string]any{
		"stock":  car.Stock,
		"status": car.Status,
	}).Error; err != nil {
		return apperr.FromDB(err)
	}
	return nil
}

// adjustStockTx locks the car, applies delta and rederives status. The
// enclosing transaction decides commit or rollback.
func adjustStockTx(tx *gorm.DB, carID uint, delta, threshold int, preserveStatus bool) (*models.Car, error) {
	car, err := lockCarTx(tx, carID)
	if err != nil {
		return nil, err
	}
	newStock := car.Stock + delta
	if newStock < 0 {
		return nil, fmt.Errorf("car %d: have %d, want %d: %w",
			carID, car.Stock, -delta, apperr.ErrInsufficientStock)
	}
	if err := applyStockTx(tx, car, newStock, threshold, preserveStatus); err != nil {
		return nil, err
	}
	return car, nil
}

func (r *InventoryRepo) AdjustStock(ctx context.Context, carID uint, delta int) (*models.Car, error) {
	var car *models.Car
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := adjustStockTx(tx, carID, delta, r.Threshold, false)
		if err != nil {
			return err
		}
		car = c
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return car, nil
}

// Restock adds stock but keeps the current status untouched. Raising the
// status again is a separate, explicit admin decision.
func (r *InventoryRepo) Restock(ctx context.Context, carID uint, added int) (*models.Car, error) {
	var car *models.Car
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := adjustStockTx(tx, carID, added, r.Threshold, true)
		if err != nil {
			return err
		}
		car = c
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return car, nil
}

// SetDiscontinued toggles the sticky status. Reactivating a car with zero
// stock is rejected: an empty car cannot go back on sale.
func (r *InventoryRepo) SetDiscontinued(ctx context.Context, carID uint, discontinued bool) (*models.Car, error) {
	var car *models.Car
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCarTx(tx, carID)
		if err != nil {
			return err
		}
		if discontinued {
			c.Status = models.CarStatusDiscontinued
		} else {
			if c.Status == models.CarStatusDiscontinued && c.Stock == 0 {
				return fmt.Errorf("car %d has no stock, cannot reactivate: %w",
					carID, apperr.ErrStateConflict)
			}
			c.Status = deriveStatus(c.Stock, r.Threshold)
		}
		if err := tx.Model(c).Update("status", c.Status).Error; err != nil {
			return apperr.FromDB(err)
		}
		car = c
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return car, nil
}

func (r *InventoryRepo) GetCar(ctx context.Context, carID uint) (*models.Car, error) {
	var car models.Car
	if err := r.DB.WithContext(ctx).First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car %d: %w", carID, apperr.ErrNotFound)
		}
		return nil, apperr.FromDB(err)
	}
	return &car, nil
}

func (r *InventoryRepo) GetStock(ctx context.Context, carID uint) (int, error) {
	car, err := r.GetCar(ctx, carID)
	if err != nil {
		return 0, err
	}
	return car.Stock, nil
}

func (r *InventoryRepo) GetStatus(ctx context.Context, carID uint) (string, error) {
	car, err := r.GetCar(ctx, carID)
	if err != nil {
		return "", err
	}
	return car.Status, nil
}

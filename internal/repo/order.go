package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

// OrderRepo converts carts into persisted orders and back. Order creation is
// all or nothing: every car row it touches is locked, and any failed item
// rolls back the whole transaction.
type OrderRepo struct {
	DB        *gorm.DB
	Threshold int
	StaleAge  time.Duration
}

type OrderLine struct {
	CarID    uint
	Quantity uint
}

type RestoredStock struct {
	CarID    uint   `json:"car_id"`
	Quantity uint   `json:"quantity"`
	Stock    int    `json:"stock"`
	Status   string `json:"status"`
}

// CancelResult reports what a cancellation did. SkippedCars lists order
// items whose car no longer exists; their restore is skipped but the
// cancellation itself still commits.
type CancelResult struct {
	OrderID     uint            `json:"order_id"`
	Restored    []RestoredStock `json:"restored"`
	SkippedCars []uint          `json:"skipped_cars,omitempty"`
}

func newOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD%s%s", now.UTC().Format("20060102150405"), suffix)
}

// Create decrements stock for every line under row locks, snapshots the car
// fields into order items, inserts the order and clears the ordered cars
// from the user's cart. Any failure rolls back everything.
func (r *OrderRepo) Create(ctx context.Context, userID uint, lines []OrderLine) (*models.Order, []models.OrderItem, error) {
	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		carIDs := make([]uint, 0, len(lines))
		orderItems = make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			car, err := lockCarTx(tx, line.CarID)
			if err != nil {
				return err
			}
			if car.Status == models.CarStatusDiscontinued {
				return fmt.Errorf("car %d is discontinued: %w", car.ID, apperr.ErrNotFound)
			}
			newStock := car.Stock - int(line.Quantity)
			if newStock < 0 {
				return fmt.Errorf("car %d: have %d, want %d: %w",
					car.ID, car.Stock, line.Quantity, apperr.ErrInsufficientStock)
			}
			if err := applyStockTx(tx, car, newStock, r.Threshold, false); err != nil {
				return err
			}

			var brand models.Brand
			if err := tx.First(&brand, car.BrandID).Error; err != nil &&
				!errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.FromDB(err)
			}

			item := models.OrderItem{
				CarID:    car.ID,
				CarName:  car.Model,
				CarBrand: brand.Name,
				CarImage: firstImage(car.Images),
				Price:    car.Price,
				Quantity: line.Quantity,
				Subtotal: car.Price * float64(line.Quantity),
			}
			total += item.Subtotal
			orderItems = append(orderItems, item)
			carIDs = append(carIDs, car.ID)
		}

		order = models.Order{
			OrderNo:     newOrderNo(time.Now()),
			UserID:      userID,
			Status:      models.OrderStatusPending,
			TotalAmount: total,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.FromDB(err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return apperr.FromDB(err)
		}

		if err := tx.Where("user_id = ? AND car_id IN ?", userID, carIDs).
			Delete(&models.CartItem{}).Error; err != nil {
			return apperr.FromDB(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperr.FromDB(err)
	}
	return &order, orderItems, nil
}

// Cancel moves a pending order to cancelled and re-adds the item quantities
// to stock. Restores for cars that were deleted since the order are skipped
// and reported; they never block the cancellation.
//
// ownerID scopes the lookup to a user; zero means any owner (admin path).
func (r *OrderRepo) Cancel(ctx context.Context, orderID, ownerID uint) (*CancelResult, error) {
	result := &CancelResult{OrderID: orderID}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		if ownerID != 0 {
			q = q.Where("user_id = ?", ownerID)
		}
		if err := q.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
			}
			return apperr.FromDB(err)
		}
		if order.Status != models.OrderStatusPending {
			return fmt.Errorf("order %d is %s: %w", orderID, order.Status, apperr.ErrStateConflict)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return apperr.FromDB(err)
		}

		for _, item := range items {
			car, err := adjustStockTx(tx, item.CarID, int(item.Quantity), r.Threshold, false)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					result.SkippedCars = append(result.SkippedCars, item.CarID)
					continue
				}
				return err
			}
			result.Restored = append(result.Restored, RestoredStock{
				CarID:    car.ID,
				Quantity: item.Quantity,
				Stock:    car.Stock,
				Status:   car.Status,
			})
		}

		return apperr.FromDB(tx.Model(&order).Update("status", models.OrderStatusCancelled).Error)
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return result, nil
}

// UpdateStatus applies an administrative status change to a non-cancel
// target state. Cancellation goes through Cancel so stock is restored.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
			}
			return apperr.FromDB(err)
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order %d is cancelled: %w", orderID, apperr.ErrStateConflict)
		}
		return apperr.FromDB(tx.Model(&order).Update("status", status).Error)
	})
	return apperr.FromDB(err)
}

func (r *OrderRepo) Get(ctx context.Context, orderID, ownerID uint) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	q := r.DB.WithContext(ctx)
	if ownerID != 0 {
		q = q.Where("user_id = ?", ownerID)
	}
	if err := q.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
		}
		return nil, nil, apperr.FromDB(err)
	}

	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return nil, nil, apperr.FromDB(err)
	}
	return &order, items, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}
	return total, orders, nil
}

func (r *OrderRepo) List(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}
	return total, orders, nil
}

func firstImage(images string) string {
	if i := strings.IndexByte(images, ','); i >= 0 {
		return images[:i]
	}
	return images
}

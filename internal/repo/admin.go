package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

// AdminRepo carries the bulk and catalog-maintenance operations. Batch
// mutations are atomic: one bad id fails the whole batch.
type AdminRepo struct {
	DB        *gorm.DB
	Threshold int
}

// OrderStats aggregates non-cancelled orders. UniqueCustomers counts
// non-admin users, matching the storefront's customer base.
type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	TotalSales      float64 `json:"total_sales"`
	UniqueCustomers int64   `json:"unique_customers"`
}

// TrendPoint is one bucket of the sales trend, keyed by day or month.
type TrendPoint struct {
	Date        string  `json:"date"`
	OrderCount  int64   `json:"order_count"`
	SalesAmount float64 `json:"sales_amount"`
}

// PopularCar ranks a car by units sold in a window. Trend compares the
// window against the one immediately before it, in percent.
type PopularCar struct {
	CarID         uint    `json:"car_id"`
	Model         string  `json:"model"`
	Brand         string  `json:"brand"`
	Price         float64 `json:"price"`
	Image         string  `json:"image"`
	TotalSales    int64   `json:"total_sales"`
	OrderCount    int64   `json:"order_count"`
	PreviousSales int64   `json:"previous_sales"`
	Trend         float64 `json:"trend"`
}

// LatestOrder is a recent order joined with its buyer and the snapshot of
// the first ordered car.
type LatestOrder struct {
	OrderID   uint      `json:"order_id"`
	OrderNo   string    `json:"order_no"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CarID     uint      `json:"car_id"`
	CarModel  string    `json:"car_model"`
	CarBrand  string    `json:"car_brand"`
	CarImage  string    `json:"car_image"`
}

// Overview is the admin dashboard aggregate: lifetime totals, sellable
// stock, window-over-window trends and the two highlight lists.
type Overview struct {
	TotalSales   float64       `json:"total_sales"`
	OrderCount   int64         `json:"order_count"`
	UserCount    int64         `json:"user_count"`
	CarStock     int64         `json:"car_stock"`
	SalesTrend   float64       `json:"sales_trend"`
	OrderTrend   float64       `json:"order_trend"`
	PopularCars  []PopularCar  `json:"popular_cars"`
	LatestOrders []LatestOrder `json:"latest_orders"`
}

// BatchUpdateStatus sets the sticky status for every listed car inside one
// transaction. Target "available" means "drop the sticky override": the
// derived status is recomputed, and a discontinued car with zero stock
// cannot be brought back.
func (r *AdminRepo) BatchUpdateStatus(ctx context.Context, carIDs []uint, status string) (int64, error) {
	var updated int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range carIDs {
			car, err := lockCarTx(tx, id)
			if err != nil {
				return err
			}
			if status == models.CarStatusDiscontinued {
				car.Status = models.CarStatusDiscontinued
			} else {
				if car.Status == models.CarStatusDiscontinued && car.Stock == 0 {
					return fmt.Errorf("car %d has no stock, cannot reactivate: %w",
						id, apperr.ErrStateConflict)
				}
				car.Status = deriveStatus(car.Stock, r.Threshold)
			}
			if err := tx.Model(car).Update("status", car.Status).Error; err != nil {
				return apperr.FromDB(err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, apperr.FromDB(err)
	}
	return updated, nil
}

// BatchDelete removes car rows. Dependent cart and order-item rows are the
// database's problem (foreign keys), not this method's.
func (r *AdminRepo) BatchDelete(ctx context.Context, carIDs []uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id IN ?", carIDs).Delete(&models.Car{})
	if res.Error != nil {
		return 0, apperr.FromDB(res.Error)
	}
	return res.RowsAffected, nil
}

// CreateCar inserts a car with its status derived from the initial stock.
func (r *AdminRepo) CreateCar(ctx context.Context, car *models.Car) error {
	car.Status = deriveStatus(car.Stock, r.Threshold)
	if err := r.DB.WithContext(ctx).Create(car).Error; err != nil {
		return apperr.FromDB(err)
	}
	return nil
}

// UpdateCar rewrites catalog fields and rederives the status from the new
// stock unless the car is discontinued.
func (r *AdminRepo) UpdateCar(ctx context.Context, car *models.Car) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockCarTx(tx, car.ID)
		if err != nil {
			return err
		}
		car.Status = current.Status
		if current.Status != models.CarStatusDiscontinued {
			car.Status = deriveStatus(car.Stock, r.Threshold)
		}
		return apperr.FromDB(tx.Model(current).Updates(map[string]any{
			"brand_id":    car.BrandID,
			"model":       car.Model,
			"price":       car.Price,
			"year":        car.Year,
			"color":       car.Color,
			"description": car.Description,
			"images":      car.Images,
			"stock":       car.Stock,
			"status":      car.Status,
		}).Error)
	})
	return apperr.FromDB(err)
}

func (r *AdminRepo) DeleteCar(ctx context.Context, carID uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Car{}, carID)
	if res.Error != nil {
		return apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car %d: %w", carID, apperr.ErrNotFound)
	}
	return nil
}

// ListCars returns every car regardless of status, newest first.
func (r *AdminRepo) ListCars(ctx context.Context, offset, limit int) (int64, []models.Car, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Car{}).Count(&total).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}

	var cars []models.Car
	if err := r.DB.WithContext(ctx).Model(&models.Car{}).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&cars).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}
	return total, cars, nil
}

func (r *AdminRepo) Stats(ctx context.Context) (*OrderStats, error) {
	var stats OrderStats
	row := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_sales").
		Where("status <> ?", models.OrderStatusCancelled).
		Row()
	if err := row.Scan(&stats.TotalOrders, &stats.TotalSales); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.FromDB(err)
		}
	}

	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role <> ?", "admin").
		Count(&stats.UniqueCustomers).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return &stats, nil
}

// SalesSince sums non-cancelled order totals created after the cutoff.
func (r *AdminRepo) SalesSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status <> ? AND created_at >= ?", models.OrderStatusCancelled, since).
		Scan(&total).Error
	if err != nil {
		return 0, apperr.FromDB(err)
	}
	return total, nil
}

func (r *AdminRepo) salesWindow(ctx context.Context, from, to time.Time) (int64, float64, error) {
	var (
		count int64
		total float64
	)
	row := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*), COALESCE(SUM(total_amount), 0)").
		Where("status <> ? AND created_at >= ? AND created_at < ?",
			models.OrderStatusCancelled, from, to).
		Row()
	if err := row.Scan(&count, &total); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, nil
		}
		return 0, 0, apperr.FromDB(err)
	}
	return count, total, nil
}

// SalesTrend buckets non-cancelled orders created after the cutoff by day,
// or by month when byMonth is set.
func (r *AdminRepo) SalesTrend(ctx context.Context, since time.Time, byMonth bool) ([]TrendPoint, error) {
	format := "YYYY-MM-DD"
	if byMonth {
		format = "YYYY-MM"
	}

	points := make([]TrendPoint, 0)
	err := r.DB.WithContext(ctx).Raw(`
		SELECT to_char(created_at, ?) AS date,
		       COUNT(*)               AS order_count,
		       COALESCE(SUM(total_amount), 0) AS sales_amount
		FROM orders
		WHERE created_at >= ? AND status <> ?
		GROUP BY 1
		ORDER BY 1`,
		format, since, models.OrderStatusCancelled).
		Scan(&points).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return points, nil
}

type popularCarRow struct {
	CarID      uint
	Model      string
	Brand      string
	Price      float64
	Images     string
	TotalSales int64
	OrderCount int64
}

// PopularCars ranks cars by units sold in [since, now), with the previous
// window [prevSince, since) as the trend baseline.
func (r *AdminRepo) PopularCars(ctx context.Context, since, prevSince time.Time, limit int) ([]PopularCar, error) {
	var rows []popularCarRow
	err := r.DB.WithContext(ctx).Raw(`
		SELECT c.id AS car_id, c.model, COALESCE(b.name, '') AS brand,
		       c.price, c.images,
		       COALESCE(SUM(oi.quantity), 0) AS total_sales,
		       COUNT(DISTINCT o.id)          AS order_count
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN cars c ON oi.car_id = c.id
		LEFT JOIN brands b ON c.brand_id = b.id
		WHERE o.created_at >= ? AND o.status <> ?
		GROUP BY c.id, c.model, b.name, c.price, c.images
		ORDER BY total_sales DESC, c.id
		LIMIT ?`,
		since, models.OrderStatusCancelled, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	type prevRow struct {
		CarID uint
		Total int64
	}
	var prev []prevRow
	err = r.DB.WithContext(ctx).Raw(`
		SELECT oi.car_id, COALESCE(SUM(oi.quantity), 0) AS total
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.created_at >= ? AND o.created_at < ? AND o.status <> ?
		GROUP BY oi.car_id`,
		prevSince, since, models.OrderStatusCancelled).
		Scan(&prev).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	prevByCar := make(map[uint]int64, len(prev))
	for _, p := range prev {
		prevByCar[p.CarID] = p.Total
	}

	cars := make([]PopularCar, 0, len(rows))
	for _, row := range rows {
		previous := prevByCar[row.CarID]
		base := previous
		if base == 0 {
			base = 1
		}
		cars = append(cars, PopularCar{
			CarID:         row.CarID,
			Model:         row.Model,
			Brand:         row.Brand,
			Price:         row.Price,
			Image:         firstImage(row.Images),
			TotalSales:    row.TotalSales,
			OrderCount:    row.OrderCount,
			PreviousSales: previous,
			Trend:         float64(row.TotalSales-previous) / float64(base) * 100,
		})
	}
	return cars, nil
}

// LatestOrders returns the newest orders with their buyer and the snapshot
// of the first item. Snapshots keep the view stable when cars change later.
func (r *AdminRepo) LatestOrders(ctx context.Context, limit int) ([]LatestOrder, error) {
	orders := make([]LatestOrder, 0, limit)
	err := r.DB.WithContext(ctx).Raw(`
		SELECT o.id AS order_id, o.order_no, o.total_amount AS amount,
		       o.status, o.created_at,
		       o.user_id, COALESCE(u.username, '') AS username
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`, limit).
		Scan(&orders).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}

	type itemRow struct {
		OrderID  uint
		CarID    uint
		CarName  string
		CarBrand string
		CarImage string
	}
	var items []itemRow
	err = r.DB.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (order_id)
		       order_id, car_id, car_name, car_brand, car_image
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, id`, ids).
		Scan(&items).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	itemByOrder := make(map[uint]itemRow, len(items))
	for _, it := range items {
		itemByOrder[it.OrderID] = it
	}

	for i := range orders {
		if it, ok := itemByOrder[orders[i].OrderID]; ok {
			orders[i].CarID = it.CarID
			orders[i].CarModel = it.CarName
			orders[i].CarBrand = it.CarBrand
			orders[i].CarImage = firstImage(it.CarImage)
		}
	}
	return orders, nil
}

// Overview assembles the admin dashboard: lifetime totals, stock on sale,
// and window-over-window trends plus the highlight lists.
func (r *AdminRepo) Overview(ctx context.Context, now time.Time, window time.Duration) (*Overview, error) {
	stats, err := r.Stats(ctx)
	if err != nil {
		return nil, err
	}

	var userCount int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		return nil, apperr.FromDB(err)
	}

	var carStock int64
	err = r.DB.WithContext(ctx).Model(&models.Car{}).
		Select("COALESCE(SUM(stock), 0)").
		Where("status <> ?", models.CarStatusDiscontinued).
		Scan(&carStock).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	since := now.Add(-window)
	prevSince := since.Add(-window)

	currentSales, err := r.SalesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	var currentCount int64
	err = r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ? AND created_at >= ?", models.OrderStatusCancelled, since).
		Count(&currentCount).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	prevCount, prevSales, err := r.salesWindow(ctx, prevSince, since)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		TotalSales: stats.TotalSales,
		OrderCount: stats.TotalOrders,
		UserCount:  userCount,
		CarStock:   carStock,
	}
	if prevSales > 0 {
		overview.SalesTrend = (currentSales - prevSales) / prevSales * 100
	}
	if prevCount > 0 {
		overview.OrderTrend = float64(currentCount-prevCount) / float64(prevCount) * 100
	}

	if overview.PopularCars, err = r.PopularCars(ctx, since, prevSince, 5); err != nil {
		return nil, err
	}
	if overview.LatestOrders, err = r.LatestOrders(ctx, 5); err != nil {
		return nil, err
	}
	return overview, nil
}

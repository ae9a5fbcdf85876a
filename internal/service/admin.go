package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
	"github.com/carhaus/car_shop/internal/repo"
)

// AdminService wraps the bulk and catalog-maintenance operations. Status
// changes go through the same ledger rules as everywhere else.
type AdminService struct {
	Repo *repo.AdminRepo
}

func (s *AdminService) BatchUpdateStatus(ctx context.Context, carIDs []uint, status string) (int64, error) {
	if len(carIDs) == 0 {
		return 0, fmt.Errorf("car ids required: %w", apperr.ErrValidation)
	}
	switch status {
	case models.CarStatusAvailable, models.CarStatusDiscontinued:
	default:
		return 0, fmt.Errorf("invalid status %q: %w", status, apperr.ErrValidation)
	}
	return s.Repo.BatchUpdateStatus(ctx, carIDs, status)
}

func (s *AdminService) BatchDelete(ctx context.Context, carIDs []uint) (int64, error) {
	if len(carIDs) == 0 {
		return 0, fmt.Errorf("car ids required: %w", apperr.ErrValidation)
	}
	return s.Repo.BatchDelete(ctx, carIDs)
}

func (s *AdminService) CreateCar(ctx context.Context, car *models.Car) error {
	if car.Model == "" {
		return fmt.Errorf("model required: %w", apperr.ErrValidation)
	}
	if car.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", apperr.ErrValidation)
	}
	if car.Stock < 0 {
		return fmt.Errorf("stock must be >= 0: %w", apperr.ErrValidation)
	}
	return s.Repo.CreateCar(ctx, car)
}

func (s *AdminService) UpdateCar(ctx context.Context, car *models.Car) error {
	if car.ID == 0 {
		return fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	if car.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", apperr.ErrValidation)
	}
	if car.Stock < 0 {
		return fmt.Errorf("stock must be >= 0: %w", apperr.ErrValidation)
	}
	return s.Repo.UpdateCar(ctx, car)
}

func (s *AdminService) DeleteCar(ctx context.Context, carID uint) error {
	return s.Repo.DeleteCar(ctx, carID)
}

func (s *AdminService) ListCars(ctx context.Context, offset, limit int) (int64, []models.Car, error) {
	return s.Repo.ListCars(ctx, offset, limit)
}

func (s *AdminService) Stats(ctx context.Context) (*repo.OrderStats, error) {
	return s.Repo.Stats(ctx)
}

const overviewWindow = 30 * 24 * time.Hour

func (s *AdminService) Overview(ctx context.Context) (*repo.Overview, error) {
	return s.Repo.Overview(ctx, time.Now().UTC(), overviewWindow)
}

// SalesTrend buckets sales per day, or per month for the year range.
func (s *AdminService) SalesTrend(ctx context.Context, rangeName string) ([]repo.TrendPoint, error) {
	now := time.Now().UTC()
	switch rangeName {
	case "", "week":
		return s.Repo.SalesTrend(ctx, now.AddDate(0, 0, -7), false)
	case "month":
		return s.Repo.SalesTrend(ctx, now.AddDate(0, 0, -30), false)
	case "year":
		return s.Repo.SalesTrend(ctx, now.AddDate(0, -12, 0), true)
	default:
		return nil, fmt.Errorf("invalid range %q: %w", rangeName, apperr.ErrValidation)
	}
}

func (s *AdminService) PopularCars(ctx context.Context, rangeName string) ([]repo.PopularCar, error) {
	var days int
	switch rangeName {
	case "", "week":
		days = 7
	case "month":
		days = 30
	case "quarter":
		days = 90
	default:
		return nil, fmt.Errorf("invalid range %q: %w", rangeName, apperr.ErrValidation)
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	prevSince := since.AddDate(0, 0, -days)
	return s.Repo.PopularCars(ctx, since, prevSince, 10)
}

func (s *AdminService) LatestOrders(ctx context.Context) ([]repo.LatestOrder, error) {
	return s.Repo.LatestOrders(ctx, 5)
}

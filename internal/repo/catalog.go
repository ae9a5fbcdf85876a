package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

// CatalogRepo serves the public storefront reads. Discontinued cars are
// hidden; low-stock and out-of-stock cars stay visible.
type CatalogRepo struct {
	DB *gorm.DB
}

func (r *CatalogRepo) GetCar(ctx context.Context, carID uint) (*models.Car, error) {
	var car models.Car
	if err := r.DB.WithContext(ctx).
		Where("status <> ?", models.CarStatusDiscontinued).
		First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car %d: %w", carID, apperr.ErrNotFound)
		}
		return nil, apperr.FromDB(err)
	}
	return &car, nil
}

func (r *CatalogRepo) ListCars(ctx context.Context, offset, limit int) (int64, []models.Car, error) {
	q := r.DB.WithContext(ctx).Model(&models.Car{}).
		Where("status <> ?", models.CarStatusDiscontinued)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}

	var cars []models.Car
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cars).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}
	return total, cars, nil
}

func (r *CatalogRepo) ListCarsByBrand(ctx context.Context, brandName string, offset, limit int) (int64, []models.Car, error) {
	q := r.DB.WithContext(ctx).Model(&models.Car{}).
		Joins("JOIN brands b ON cars.brand_id = b.id").
		Where("b.name = ? AND cars.status <> ?", brandName, models.CarStatusDiscontinued)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}

	var cars []models.Car
	if err := q.Order("cars.created_at DESC").Offset(offset).Limit(limit).Find(&cars).Error; err != nil {
		return 0, nil, apperr.FromDB(err)
	}
	return total, cars, nil
}

func (r *CatalogRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return brands, nil
}

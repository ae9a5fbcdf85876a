package service

import (
	"context"
	"fmt"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
	"github.com/carhaus/car_shop/internal/repo"
)

// InventoryService fronts the inventory ledger. All status logic lives in
// the repo derivation; nothing here re-implements it.
type InventoryService struct {
	Repo *repo.InventoryRepo
}

func (s *InventoryService) AdjustStock(ctx context.Context, carID uint, delta int) (*models.Car, error) {
	if carID == 0 {
		return nil, fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	return s.Repo.AdjustStock(ctx, carID, delta)
}

func (s *InventoryService) Restock(ctx context.Context, carID uint, added int) (*models.Car, error) {
	if carID == 0 {
		return nil, fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	if added < 0 {
		return nil, fmt.Errorf("restock quantity must be >= 0: %w", apperr.ErrValidation)
	}
	return s.Repo.Restock(ctx, carID, added)
}

func (s *InventoryService) SetDiscontinued(ctx context.Context, carID uint, discontinued bool) (*models.Car, error) {
	if carID == 0 {
		return nil, fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	return s.Repo.SetDiscontinued(ctx, carID, discontinued)
}

func (s *InventoryService) GetStock(ctx context.Context, carID uint) (int, error) {
	return s.Repo.GetStock(ctx, carID)
}

func (s *InventoryService) GetStatus(ctx context.Context, carID uint) (string, error) {
	return s.Repo.GetStatus(ctx, carID)
}

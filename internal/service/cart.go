package service

import (
	"context"
	"fmt"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/repo"
)

type CartService struct {
	Repo *repo.CartRepo
}

func (s *CartService) AddItem(ctx context.Context, userID, carID uint, quantity uint) (int64, error) {
	if carID == 0 {
		return 0, fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	if quantity < 1 {
		return 0, fmt.Errorf("quantity must be >= 1: %w", apperr.ErrValidation)
	}
	return s.Repo.AddItem(ctx, userID, carID, quantity)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity uint) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be >= 1: %w", apperr.ErrValidation)
	}
	return s.Repo.UpdateQuantity(ctx, userID, cartItemID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, cartItemID uint) error {
	return s.Repo.RemoveItem(ctx, userID, cartItemID)
}

func (s *CartService) Count(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.Count(ctx, userID)
}

func (s *CartService) List(ctx context.Context, userID uint) ([]repo.CartLine, error) {
	return s.Repo.List(ctx, userID)
}

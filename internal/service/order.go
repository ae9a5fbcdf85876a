package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
	"github.com/carhaus/car_shop/internal/repo"
)

// OrderService drives checkout and cancellation. When no explicit lines are
// given, the user's cart is the order.
type OrderService struct {
	Orders   *repo.OrderRepo
	Cart     *repo.CartRepo
	StaleAge time.Duration
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uint, lines []repo.OrderLine) (*models.Order, []models.OrderItem, error) {
	if len(lines) == 0 {
		items, err := s.Cart.Items(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		for _, it := range items {
			lines = append(lines, repo.OrderLine{CarID: it.CarID, Quantity: it.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("no items to order: %w", apperr.ErrValidation)
	}
	for _, line := range lines {
		if line.CarID == 0 {
			return nil, nil, fmt.Errorf("car id required: %w", apperr.ErrValidation)
		}
		if line.Quantity < 1 {
			return nil, nil, fmt.Errorf("quantity must be >= 1: %w", apperr.ErrValidation)
		}
	}
	return s.Orders.Create(ctx, userID, lines)
}

// CancelOrder cancels any user's pending order (admin path).
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*repo.CancelResult, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrValidation)
	}
	return s.Orders.Cancel(ctx, orderID, 0)
}

// CancelOwnOrder cancels the caller's own pending order.
func (s *OrderService) CancelOwnOrder(ctx context.Context, userID, orderID uint) (*repo.CancelResult, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrValidation)
	}
	return s.Orders.Cancel(ctx, orderID, userID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid,
		models.OrderStatusShipped, models.OrderStatusCompleted:
	case models.OrderStatusCancelled:
		// Cancellation restores stock and must go through CancelOrder.
		return fmt.Errorf("use cancel to cancel an order: %w", apperr.ErrValidation)
	default:
		return fmt.Errorf("invalid order status %q: %w", status, apperr.ErrValidation)
	}
	return s.Orders.UpdateStatus(ctx, orderID, status)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, ownerID uint) (*models.Order, []models.OrderItem, error) {
	return s.Orders.Get(ctx, orderID, ownerID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	if userID != 0 {
		return s.Orders.ListByUser(ctx, userID, offset, limit)
	}
	return s.Orders.List(ctx, offset, limit)
}

// DisplayStatus is the read-time projection for stale pending orders.
func (s *OrderService) DisplayStatus(order *models.Order) string {
	return order.EffectiveStatus(s.StaleAge, time.Now().UTC())
}

package transport

import (
	"github.com/carhaus/car_shop/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AddToCartRequest struct {
	CarID    uint `json:"car_id"`
	Quantity uint `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity uint `json:"quantity"`
}

type OrderLineInput struct {
	CarID    uint `json:"car_id"`
	Quantity uint `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderLineInput `json:"items"`
}

type OrderResponse struct {
	ID          uint               `json:"id"`
	OrderNo     string             `json:"order_no"`
	Status      string             `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	CreatedAt   string             `json:"created_at"`
	Items       []models.OrderItem `json:"items,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type SetCarStatusRequest struct {
	Status string `json:"status"`
}

type BatchStatusRequest struct {
	IDs    []uint `json:"ids"`
	Status string `json:"status"`
}

type BatchDeleteRequest struct {
	IDs []uint `json:"ids"`
}

type CarRequest struct {
	BrandID     uint    `json:"brand_id"`
	Model       string  `json:"model"`
	Price       float64 `json:"price"`
	Year        int     `json:"year"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Images      string  `json:"images"`
	Stock       int     `json:"stock"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

package models

import (
	"time"
)

// Car lifecycle statuses. Available/LowStock/OutOfStock are derived from
// stock; Discontinued is set only by explicit admin action.
const (
	CarStatusAvailable    = "available"
	CarStatusLowStock     = "low_stock"
	CarStatusOutOfStock   = "out_of_stock"
	CarStatusDiscontinued = "discontinued"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Brand struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Car struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"            json:"id"`
	BrandID     uint      `gorm:"index;not null"                      json:"brand_id"`
	Model       string    `gorm:"not null"                            json:"model"`
	Price       float64   `gorm:"not null"                            json:"price"`
	Year        int       `json:"year"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Images      string    `json:"images"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Status      string    `gorm:"not null;default:available"          json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type CartItem struct {
	ID       uint `gorm:"primaryKey"                        json:"id"`
	UserID   uint `gorm:"uniqueIndex:idx_user_car;not null" json:"user_id"`
	CarID    uint `gorm:"uniqueIndex:idx_user_car;not null" json:"car_id"`
	Quantity uint `gorm:"default:1;check:quantity > 0"      json:"quantity"`
}

type Order struct {
	ID          uint      `gorm:"primaryKey"      json:"id"`
	OrderNo     string    `gorm:"unique;not null" json:"order_no"`
	UserID      uint      `gorm:"index;not null"  json:"user_id"`
	Status      string    `gorm:"not null"        json:"status"`
	TotalAmount float64   `gorm:"not null"        json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderItem freezes the car's sale fields at order time. Rows are never
// updated after creation.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey"                   json:"id"`
	OrderID  uint    `gorm:"index;not null"               json:"order_id"`
	CarID    uint    `gorm:"not null"                     json:"car_id"`
	CarName  string  `gorm:"not null"                     json:"car_name"`
	CarBrand string  `json:"car_brand"`
	CarImage string  `json:"car_image"`
	Price    float64 `gorm:"not null"                     json:"price"`
	Quantity uint    `gorm:"default:1;check:quantity > 0" json:"quantity"`
	Subtotal float64 `gorm:"not null"                     json:"subtotal"`
}

// EffectiveStatus projects a pending order older than staleAge as cancelled.
// Display only: the row is not mutated and no stock moves until an explicit
// cancellation.
func (o *Order) EffectiveStatus(staleAge time.Duration, now time.Time) string {
	if o.Status == OrderStatusPending && staleAge > 0 && now.Sub(o.CreatedAt) > staleAge {
		return OrderStatusCancelled
	}
	return o.Status
}

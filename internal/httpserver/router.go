package httpserver

import (
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Auth           *AuthMiddleware
	AuthHandler    *AuthHandler
	CatalogHandler *CatalogHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)

	v1.GET("/brands", d.CatalogHandler.ListBrands)
	cars := v1.Group("/cars")
	cars.GET("", d.CatalogHandler.ListCars)
	cars.GET("/:id", d.CatalogHandler.GetCar)
	cars.GET("/brand/:brand", d.CatalogHandler.ListCarsByBrand)

	cart := v1.Group("/cart", d.Auth.RequireUser)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/count", d.CartHandler.GetCount)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PUT("/:id", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:id", d.CartHandler.RemoveCartItem)

	orders := v1.Group("/orders", d.Auth.RequireUser)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/cars", d.AdminHandler.ListCars)
	admin.POST("/cars", d.AdminHandler.CreateCar)
	admin.PUT("/cars/:id", d.AdminHandler.UpdateCar)
	admin.DELETE("/cars/:id", d.AdminHandler.DeleteCar)
	admin.PUT("/cars/:id/stock", d.AdminHandler.AdjustStock)
	admin.PUT("/cars/:id/restock", d.AdminHandler.Restock)
	admin.PUT("/cars/:id/status", d.AdminHandler.SetCarStatus)
	admin.POST("/cars/batch-update-status", d.AdminHandler.BatchUpdateStatus)
	admin.POST("/cars/batch-delete", d.AdminHandler.BatchDelete)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.POST("/orders/:id/cancel", d.AdminHandler.CancelOrder)
	admin.PUT("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.GET("/orders/stats", d.AdminHandler.Stats)
	admin.GET("/overview", d.AdminHandler.Overview)
	admin.GET("/stats/sales-trend", d.AdminHandler.SalesTrend)
	admin.GET("/stats/popular-cars", d.AdminHandler.PopularCars)
	admin.GET("/stats/latest-orders", d.AdminHandler.LatestOrders)
}

package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carhaus/car_shop/internal/models"
	"github.com/carhaus/car_shop/internal/mykafka"
	"github.com/carhaus/car_shop/internal/repo"
	"github.com/carhaus/car_shop/internal/service"
	"github.com/carhaus/car_shop/internal/transport"
	"github.com/carhaus/car_shop/internal/util"
)

// AdminHandler exposes the inventory ledger and batch operations. Role
// checks happen in the middleware; the handlers trust the caller.
type AdminHandler struct {
	Admin     *service.AdminService
	Inventory *service.InventoryService
	Orders    *service.OrderService
	Producer  *mykafka.Producer
}

func (h *AdminHandler) CreateCar(c echo.Context) error {
	var req transport.CarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car := models.Car{
		BrandID:     req.BrandID,
		Model:       req.Model,
		Price:       req.Price,
		Year:        req.Year,
		Color:       req.Color,
		Description: req.Description,
		Images:      req.Images,
		Stock:       req.Stock,
	}
	if err := h.Admin.CreateCar(c.Request().Context(), &car); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "inventory_events", map[string]any{
		"type":    "car_created",
		"user_id": userID(c),
		"car_id":  car.ID,
	})

	return c.JSON(http.StatusCreated, car)
}

func (h *AdminHandler) UpdateCar(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.CarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car := models.Car{
		ID:          id,
		BrandID:     req.BrandID,
		Model:       req.Model,
		Price:       req.Price,
		Year:        req.Year,
		Color:       req.Color,
		Description: req.Description,
		Images:      req.Images,
		Stock:       req.Stock,
	}
	if err := h.Admin.UpdateCar(c.Request().Context(), &car); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, car)
}

func (h *AdminHandler) DeleteCar(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Admin.DeleteCar(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListCars(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, cars, err := h.Admin.ListCars(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": cars,
		"total": total,
		"page":  page,
		"size":  limit,
	})
}

func (h *AdminHandler) AdjustStock(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.Inventory.AdjustStock(c.Request().Context(), id, req.Delta)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "inventory_events", map[string]any{
		"type":    "stock_adjusted",
		"user_id": userID(c),
		"car_id":  car.ID,
		"delta":   req.Delta,
		"stock":   car.Stock,
		"status":  car.Status,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"stock":  car.Stock,
		"status": car.Status,
	})
}

func (h *AdminHandler) Restock(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.RestockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.Inventory.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "inventory_events", map[string]any{
		"type":    "car_restocked",
		"user_id": userID(c),
		"car_id":  car.ID,
		"added":   req.Quantity,
		"stock":   car.Stock,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"stock":  car.Stock,
		"status": car.Status,
	})
}

func (h *AdminHandler) SetCarStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.SetCarStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var car *models.Car
	switch req.Status {
	case models.CarStatusDiscontinued:
		car, err = h.Inventory.SetDiscontinued(c.Request().Context(), id, true)
	case models.CarStatusAvailable:
		car, err = h.Inventory.SetDiscontinued(c.Request().Context(), id, false)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"status": car.Status})
}

func (h *AdminHandler) BatchUpdateStatus(c echo.Context) error {
	var req transport.BatchStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.Admin.BatchUpdateStatus(c.Request().Context(), req.IDs, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (h *AdminHandler) BatchDelete(c echo.Context) error {
	var req transport.BatchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deleted, err := h.Admin.BatchDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *AdminHandler) CancelOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	result, err := h.Orders.CancelOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":     "order_cancelled",
		"user_id":  userID(c),
		"order_id": id,
	})

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Orders.ListOrders(c.Request().Context(), 0, offset, limit)
	if err != nil {
		return httpError(err)
	}

	type adminOrder struct {
		models.Order
		DisplayStatus string `json:"display_status"`
	}
	resp := make([]adminOrder, 0, len(orders))
	for i := range orders {
		resp = append(resp, adminOrder{
			Order:         orders[i],
			DisplayStatus: h.Orders.DisplayStatus(&orders[i]),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": resp,
		"total": total,
		"page":  page,
		"size":  limit,
	})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.Admin.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// projectLatest applies the stale-pending display rule to recent orders.
func (h *AdminHandler) projectLatest(orders []repo.LatestOrder) {
	for i := range orders {
		o := models.Order{Status: orders[i].Status, CreatedAt: orders[i].CreatedAt}
		orders[i].Status = h.Orders.DisplayStatus(&o)
	}
}

func (h *AdminHandler) Overview(c echo.Context) error {
	overview, err := h.Admin.Overview(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	h.projectLatest(overview.LatestOrders)
	return c.JSON(http.StatusOK, overview)
}

func (h *AdminHandler) SalesTrend(c echo.Context) error {
	points, err := h.Admin.SalesTrend(c.Request().Context(), c.QueryParam("range"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, points)
}

func (h *AdminHandler) PopularCars(c echo.Context) error {
	cars, err := h.Admin.PopularCars(c.Request().Context(), c.QueryParam("range"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cars)
}

func (h *AdminHandler) LatestOrders(c echo.Context) error {
	orders, err := h.Admin.LatestOrders(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	h.projectLatest(orders)
	return c.JSON(http.StatusOK, orders)
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carhaus/car_shop/internal/models"
	"github.com/carhaus/car_shop/internal/mykafka"
	"github.com/carhaus/car_shop/internal/repo"
	"github.com/carhaus/car_shop/internal/service"
	"github.com/carhaus/car_shop/internal/transport"
	"github.com/carhaus/car_shop/internal/util"
)

type OrderHandler struct {
	Orders   *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHandler) orderResponse(order *models.Order, items []models.OrderItem) transport.OrderResponse {
	return transport.OrderResponse{
		ID:          order.ID,
		OrderNo:     order.OrderNo,
		Status:      h.Orders.DisplayStatus(order),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
		Items:       items,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	uid := userID(c)

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lines := make([]repo.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, repo.OrderLine{CarID: it.CarID, Quantity: it.Quantity})
	}

	order, items, err := h.Orders.CreateOrder(c.Request().Context(), uid, lines)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":     "order_created",
		"user_id":  uid,
		"order_id": order.ID,
		"order_no": order.OrderNo,
		"total":    order.TotalAmount,
	})

	return c.JSON(http.StatusCreated, h.orderResponse(order, items))
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	uid := userID(c)
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	result, err := h.Orders.CancelOwnOrder(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":     "order_cancelled",
		"user_id":  uid,
		"order_id": id,
	})

	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	order, items, err := h.Orders.GetOrder(c.Request().Context(), id, userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.orderResponse(order, items))
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Orders.ListOrders(c.Request().Context(), userID(c), offset, limit)
	if err != nil {
		return httpError(err)
	}

	resp := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, h.orderResponse(&orders[i], nil))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": resp,
		"meta": transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

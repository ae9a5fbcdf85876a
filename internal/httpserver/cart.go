package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carhaus/car_shop/internal/mykafka"
	"github.com/carhaus/car_shop/internal/service"
	"github.com/carhaus/car_shop/internal/transport"
)

type CartHandler struct {
	Cart     *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	lines, err := h.Cart.List(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) GetCount(c echo.Context) error {
	count, err := h.Cart.Count(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	uid := userID(c)

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := h.Cart.AddItem(c.Request().Context(), uid, req.CarID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":     "cart_item_added",
		"user_id":  uid,
		"car_id":   req.CarID,
		"quantity": req.Quantity,
	})

	return c.JSON(http.StatusOK, map[string]int64{"cart_count": count})
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	uid := userID(c)
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Cart.UpdateQuantity(c.Request().Context(), uid, id, req.Quantity); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":         "cart_item_updated",
		"user_id":      uid,
		"cart_item_id": id,
		"quantity":     req.Quantity,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	uid := userID(c)
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Cart.RemoveItem(c.Request().Context(), uid, id); err != nil {
		return httpError(err)
	}

	count, err := h.Cart.Count(c.Request().Context(), uid)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":         "cart_item_removed",
		"user_id":      uid,
		"cart_item_id": id,
	})

	return c.JSON(http.StatusOK, map[string]int64{"cart_count": count})
}

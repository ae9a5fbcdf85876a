package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carhaus/car_shop/internal/repo"
	"github.com/carhaus/car_shop/internal/transport"
	"github.com/carhaus/car_shop/internal/util"
)

// CatalogHandler serves the public storefront. Reads only.
type CatalogHandler struct {
	Repo *repo.CatalogRepo
}

func (h *CatalogHandler) GetCar(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	car, err := h.Repo.GetCar(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, car)
}

func (h *CatalogHandler) ListCars(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, cars, err := h.Repo.ListCars(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": cars,
		"meta": transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *CatalogHandler) ListCarsByBrand(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, cars, err := h.Repo.ListCarsByBrand(c.Request().Context(), c.Param("brand"), offset, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": cars,
		"total": total,
	})
}

func (h *CatalogHandler) ListBrands(c echo.Context) error {
	brands, err := h.Repo.ListBrands(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brands)
}

package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stock int
		want  string
	}{
		{name: "zero stock", stock: 0, want: models.CarStatusOutOfStock},
		{name: "one unit", stock: 1, want: models.CarStatusLowStock},
		{name: "at threshold", stock: 5, want: models.CarStatusLowStock},
		{name: "above threshold", stock: 6, want: models.CarStatusAvailable},
		{name: "plenty", stock: 100, want: models.CarStatusAvailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, deriveStatus(tt.stock, testThreshold))
		})
	}
}

func TestAdjustStock_DecrementToZero(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Toyota")
	car := seedCar(t, db, brand.ID, "Corolla", 21000, 5, models.CarStatusAvailable)

	got, err := r.AdjustStock(ctx, car.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, models.CarStatusOutOfStock, got.Status)
}

func TestAdjustStock_DerivesLowStock(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Honda")
	car := seedCar(t, db, brand.ID, "Civic", 24000, 10, models.CarStatusAvailable)

	got, err := r.AdjustStock(ctx, car.ID, -7)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, models.CarStatusLowStock, got.Status)
}

func TestAdjustStock_InsufficientStock(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Mazda")
	car := seedCar(t, db, brand.ID, "MX-5", 29000, 2, models.CarStatusLowStock)

	_, err := r.AdjustStock(ctx, car.ID, -3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	stock, err := r.GetStock(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock, "failed adjustment must not change stock")
}

func TestAdjustStock_UnknownCar(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}

	_, err := r.AdjustStock(context.Background(), 9999, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustStock_DiscontinuedKeepsStatus(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Saab")
	car := seedCar(t, db, brand.ID, "900", 15000, 3, models.CarStatusDiscontinued)

	got, err := r.AdjustStock(ctx, car.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 13, got.Stock)
	assert.Equal(t, models.CarStatusDiscontinued, got.Status,
		"discontinued is sticky, stock changes must not clear it")
}

func TestRestock_PreservesStatus(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Ford")
	car := seedCar(t, db, brand.ID, "Focus", 19000, 2, models.CarStatusLowStock)

	got, err := r.Restock(ctx, car.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Stock)
	assert.Equal(t, models.CarStatusLowStock, got.Status,
		"restock only adds stock, status changes are an explicit admin step")
}

func TestSetDiscontinued(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Volvo")
	car := seedCar(t, db, brand.ID, "V60", 41000, 8, models.CarStatusAvailable)

	got, err := r.SetDiscontinued(ctx, car.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusDiscontinued, got.Status)

	got, err = r.SetDiscontinued(ctx, car.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusAvailable, got.Status)
}

func TestSetDiscontinued_ReactivateWithZeroStock(t *testing.T) {
	db := newTestDB(t)
	r := &InventoryRepo{DB: db, Threshold: testThreshold}
	ctx := context.Background()

	brand := seedBrand(t, db, "Lancia")
	car := seedCar(t, db, brand.ID, "Delta", 12000, 0, models.CarStatusDiscontinued)

	_, err := r.SetDiscontinued(ctx, car.ID, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)

	status, err := r.GetStatus(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusDiscontinued, status)
}

package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

func TestAddItem_MergesQuantities(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Toyota")
	car := seedCar(t, db, brand.ID, "Yaris", 17000, 10, models.CarStatusAvailable)

	count, err := r.AddItem(ctx, 1, car.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = r.AddItem(ctx, 1, car.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "merge must not create a second row")

	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, uint(5), items[0].Quantity)
}

func TestAddItem_CombinedQuantityExceedsStock(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Honda")
	car := seedCar(t, db, brand.ID, "Jazz", 16000, 4, models.CarStatusLowStock)

	_, err := r.AddItem(ctx, 1, car.ID, 3)
	require.NoError(t, err)

	_, err = r.AddItem(ctx, 1, car.ID, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ? AND car_id = ?", 1, car.ID).First(&item).Error)
	assert.Equal(t, uint(3), item.Quantity, "failed merge must not change the row")
}

func TestAddItem_DiscontinuedCar(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}

	brand := seedBrand(t, db, "Saab")
	car := seedCar(t, db, brand.ID, "9-3", 14000, 5, models.CarStatusDiscontinued)

	_, err := r.AddItem(context.Background(), 1, car.ID, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddItem_DuplicateRowIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	brand := seedBrand(t, db, "Skoda")
	car := seedCar(t, db, brand.ID, "Octavia", 21000, 10, models.CarStatusAvailable)

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, CarID: car.ID, Quantity: 1}).Error)

	// A second insert for the same (user, car) pair hits the unique index,
	// which is what a concurrent add racing past the merge lookup does.
	err := db.WithContext(ctx).Create(&models.CartItem{UserID: 1, CarID: car.ID, Quantity: 1}).Error
	require.Error(t, err)
	assert.ErrorIs(t, apperr.FromDB(err), apperr.ErrStateConflict)
}

func TestUpdateQuantity_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Ford")
	car := seedCar(t, db, brand.ID, "Fiesta", 15000, 10, models.CarStatusAvailable)

	_, err := r.AddItem(ctx, 1, car.ID, 2)
	require.NoError(t, err)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).First(&item).Error)

	err = r.UpdateQuantity(ctx, 2, item.ID, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "other users must not see the row")

	require.NoError(t, r.UpdateQuantity(ctx, 1, item.ID, 5))

	require.NoError(t, db.First(&item, item.ID).Error)
	assert.Equal(t, uint(5), item.Quantity)
}

func TestUpdateQuantity_ExceedsStock(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Mazda")
	car := seedCar(t, db, brand.ID, "3", 22000, 3, models.CarStatusLowStock)

	_, err := r.AddItem(ctx, 1, car.ID, 1)
	require.NoError(t, err)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).First(&item).Error)

	err = r.UpdateQuantity(ctx, 1, item.ID, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
}

func TestRemoveItem(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Volvo")
	car := seedCar(t, db, brand.ID, "XC40", 38000, 10, models.CarStatusAvailable)

	_, err := r.AddItem(ctx, 1, car.ID, 1)
	require.NoError(t, err)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).First(&item).Error)

	err = r.RemoveItem(ctx, 2, item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, r.RemoveItem(ctx, 1, item.ID))

	count, err := r.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, r.RemoveItem(ctx, 1, item.ID), apperr.ErrNotFound)
}

func TestList_JoinsLiveCarData(t *testing.T) {
	db := newTestDB(t)
	r := &CartRepo{DB: db}
	ctx := context.Background()

	brand := seedBrand(t, db, "Kia")
	car := seedCar(t, db, brand.ID, "Ceed", 18000, 10, models.CarStatusAvailable)

	_, err := r.AddItem(ctx, 1, car.ID, 2)
	require.NoError(t, err)

	// Cart does not snapshot: a later price change must show up.
	require.NoError(t, db.Model(&models.Car{}).Where("id = ?", car.ID).Update("price", 17500).Error)

	lines, err := r.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, car.ID, lines[0].CarID)
	assert.Equal(t, "Ceed", lines[0].Model)
	assert.Equal(t, "Kia", lines[0].Brand)
	assert.Equal(t, 17500.0, lines[0].Price)
	assert.Equal(t, uint(2), lines[0].Quantity)
}

package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhaus/car_shop/internal/apperr"
	"github.com/carhaus/car_shop/internal/models"
)

func TestCreateOrder_Succeeds(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Toyota")
	car := seedCar(t, db, brand.ID, "Camry", 30000, 10, models.CarStatusAvailable)

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, CarID: car.ID, Quantity: 2}).Error)

	order, items, err := r.Create(ctx, 1, []OrderLine{{CarID: car.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.NotEmpty(t, order.OrderNo)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 60000.0, order.TotalAmount)
	assert.Equal(t, order.TotalAmount, items[0].Subtotal)
	assert.Equal(t, "Camry", items[0].CarName)
	assert.Equal(t, "Toyota", items[0].CarBrand)

	var updated models.Car
	require.NoError(t, db.First(&updated, car.ID).Error)
	assert.Equal(t, 8, updated.Stock)

	var cartRows int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartRows).Error)
	assert.Equal(t, int64(0), cartRows, "ordered cars must leave the cart")
}

func TestCreateOrder_SnapshotSurvivesCarChanges(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Honda")
	car := seedCar(t, db, brand.ID, "Accord", 28000, 5, models.CarStatusAvailable)

	order, _, err := r.Create(ctx, 1, []OrderLine{{CarID: car.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Car{}).Where("id = ?", car.ID).
		Updates(map[string]any{"price": 35000, "model": "Accord Hybrid"}).Error)

	_, items, err := r.Get(ctx, order.ID, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 28000.0, items[0].Price)
	assert.Equal(t, "Accord", items[0].CarName)
}

func TestCreateOrder_AtomicOnPartialFailure(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Mixed")
	carA := seedCar(t, db, brand.ID, "A", 10000, 3, models.CarStatusLowStock)
	carB := seedCar(t, db, brand.ID, "B", 20000, 0, models.CarStatusOutOfStock)

	_, _, err := r.Create(ctx, 1, []OrderLine{
		{CarID: carA.ID, Quantity: 1},
		{CarID: carB.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	var a models.Car
	require.NoError(t, db.First(&a, carA.ID).Error)
	assert.Equal(t, 3, a.Stock, "no stock may move when any item fails")

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestCreateOrder_DiscontinuedCar(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}

	brand := seedBrand(t, db, "Saab")
	car := seedCar(t, db, brand.ID, "9-5", 18000, 4, models.CarStatusDiscontinued)

	_, _, err := r.Create(context.Background(), 1, []OrderLine{{CarID: car.ID, Quantity: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Ford")
	carX := seedCar(t, db, brand.ID, "X", 10000, 10, models.CarStatusAvailable)
	carY := seedCar(t, db, brand.ID, "Y", 20000, 10, models.CarStatusAvailable)

	order, _, err := r.Create(ctx, 1, []OrderLine{
		{CarID: carX.ID, Quantity: 2},
		{CarID: carY.ID, Quantity: 1},
	})
	require.NoError(t, err)

	result, err := r.Cancel(ctx, order.ID, 0)
	require.NoError(t, err)
	require.Len(t, result.Restored, 2)
	assert.Empty(t, result.SkippedCars)

	var x, y models.Car
	require.NoError(t, db.First(&x, carX.ID).Error)
	require.NoError(t, db.First(&y, carY.ID).Error)
	assert.Equal(t, 10, x.Stock)
	assert.Equal(t, 10, y.Stock)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	// Second cancel must fail and must not double-restore.
	_, err = r.Cancel(ctx, order.ID, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)

	require.NoError(t, db.First(&x, carX.ID).Error)
	assert.Equal(t, 10, x.Stock)
}

func TestCancelOrder_SkipsDeletedCars(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Orphan")
	carA := seedCar(t, db, brand.ID, "Kept", 10000, 5, models.CarStatusLowStock)
	carB := seedCar(t, db, brand.ID, "Gone", 20000, 5, models.CarStatusLowStock)

	order, _, err := r.Create(ctx, 1, []OrderLine{
		{CarID: carA.ID, Quantity: 1},
		{CarID: carB.ID, Quantity: 2},
	})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Car{}, carB.ID).Error)

	result, err := r.Cancel(ctx, order.ID, 0)
	require.NoError(t, err, "a deleted car must not block cancellation")
	require.Len(t, result.Restored, 1)
	assert.Equal(t, carA.ID, result.Restored[0].CarID)
	assert.Equal(t, []uint{carB.ID}, result.SkippedCars)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestCancelOrder_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Audi")
	car := seedCar(t, db, brand.ID, "A4", 40000, 5, models.CarStatusLowStock)

	order, _, err := r.Create(ctx, 1, []OrderLine{{CarID: car.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = r.Cancel(ctx, order.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = r.Cancel(ctx, order.ID, 1)
	require.NoError(t, err)
}

func TestCreateOrder_ConcurrentOversell(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "Rare")
	car := seedCar(t, db, brand.ID, "One-off", 99000, 1, models.CarStatusLowStock)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = r.Create(ctx, uint(i+1), []OrderLine{{CarID: car.ID, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of two concurrent orders must fail")

	var got models.Car
	require.NoError(t, db.First(&got, car.ID).Error)
	assert.Equal(t, 0, got.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)
}

func TestUpdateStatus_CancelledIsTerminal(t *testing.T) {
	db := newTestDB(t)
	r := &OrderRepo{DB: db, Threshold: testThreshold, StaleAge: 30 * time.Minute}
	ctx := context.Background()

	brand := seedBrand(t, db, "BMW")
	car := seedCar(t, db, brand.ID, "i3", 35000, 5, models.CarStatusLowStock)

	order, _, err := r.Create(ctx, 1, []OrderLine{{CarID: car.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, r.UpdateStatus(ctx, order.ID, models.OrderStatusPaid))

	_, err = r.Cancel(ctx, order.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrStateConflict, "only pending orders can be cancelled")

	err = r.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
}

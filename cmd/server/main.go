package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/carhaus/car_shop/internal/config"
	"github.com/carhaus/car_shop/internal/httpserver"
	"github.com/carhaus/car_shop/internal/logging"
	"github.com/carhaus/car_shop/internal/mykafka"
	"github.com/carhaus/car_shop/internal/repo"
	"github.com/carhaus/car_shop/internal/service"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	inventoryRepo := &repo.InventoryRepo{DB: db, Threshold: configuration.LowStockThreshold}
	cartRepo := &repo.CartRepo{DB: db}
	orderRepo := &repo.OrderRepo{DB: db, Threshold: configuration.LowStockThreshold, StaleAge: configuration.StaleOrderAge}
	adminRepo := &repo.AdminRepo{DB: db, Threshold: configuration.LowStockThreshold}
	catalogRepo := &repo.CatalogRepo{DB: db}
	userRepo := &repo.UserRepo{DB: db}

	jwtSecret := []byte(configuration.JWT_SECRET)
	authSvc := &service.AuthService{Repo: userRepo, JWTSecret: jwtSecret}
	inventorySvc := &service.InventoryService{Repo: inventoryRepo}
	cartSvc := &service.CartService{Repo: cartRepo}
	orderSvc := &service.OrderService{Orders: orderRepo, Cart: cartRepo, StaleAge: configuration.StaleOrderAge}
	adminSvc := &service.AdminService{Repo: adminRepo}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.ContextLogger(logger))

	deps := httpserver.Deps{
		Auth:           &httpserver.AuthMiddleware{JWTSecret: jwtSecret},
		AuthHandler:    &httpserver.AuthHandler{Auth: authSvc, Producer: producer},
		CatalogHandler: &httpserver.CatalogHandler{Repo: catalogRepo},
		CartHandler:    &httpserver.CartHandler{Cart: cartSvc, Producer: producer},
		OrderHandler:   &httpserver.OrderHandler{Orders: orderSvc, Producer: producer},
		AdminHandler: &httpserver.AdminHandler{
			Admin:     adminSvc,
			Inventory: inventorySvc,
			Orders:    orderSvc,
			Producer:  producer,
		},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", configuration.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	logger.Info("shutdown complete")
}

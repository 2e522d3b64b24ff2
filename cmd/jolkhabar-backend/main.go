package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/config"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/delivery"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/razorpay"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/repo"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/shiprocket"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(logger)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var stores store
	if cfg.DatabaseURL != "" {
		db, err := repo.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		pg := repo.NewPostgresStore(db, logger)
		if err := pg.Bootstrap(); err != nil {
			logger.Fatalf("Failed to bootstrap database schema: %v", err)
		}
		logger.Info("Using PostgreSQL stores")
		stores = pg
	} else {
		logger.Info("Using in-memory stores")
		stores = repo.NewMemoryStore()
	}

	gateway := &razorpay.Client{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		Log:       logger,
	}
	shipping := &shiprocket.Client{
		BaseURL:        cfg.ShiprocketBaseURL,
		Email:          cfg.ShiprocketEmail,
		Password:       cfg.ShiprocketPassword,
		PickupLocation: cfg.PickupLocation,
		HTTP:           &http.Client{Timeout: 30 * time.Second},
		Log:            logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shipping.StartRefresher(ctx)

	authService := &usecase.AuthService{Users: stores, JWTSecret: cfg.JWTSecret}
	catalogService := &usecase.CatalogService{Products: stores}
	cartService := &usecase.CartService{Carts: stores, Products: stores, Log: logger}
	orderService := &usecase.OrderService{
		Orders:   stores,
		Carts:    stores,
		Users:    stores,
		Gateway:  gateway,
		Shipping: shipping,
		Log:      logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), delivery.RequestLogger(logger))

	authRequired := delivery.AuthMiddleware(authService, logger)
	adminOnly := delivery.AdminOnly(logger)

	api := router.Group("/api/v1")

	authHandler := delivery.NewAuthHandler(authService, logger)
	authHandler.RegisterRoutes(api)

	catalogHandler := delivery.NewCatalogHandler(catalogService, logger)
	catalogHandler.RegisterPublicRoutes(api)
	catalogHandler.RegisterAdminRoutes(api.Group("/admin", authRequired, adminOnly))

	orderHandler := delivery.NewOrderHandler(orderService, logger)
	orderHandler.RegisterPublicRoutes(api)
	orderHandler.RegisterRoutes(api.Group("", authRequired), adminOnly)

	cartHandler := delivery.NewCartHandler(cartService, logger)
	cartHandler.RegisterRoutes(api.Group("", authRequired))

	paymentHandler := delivery.NewPaymentHandler(orderService, cfg.RazorpayKeyID, logger)
	paymentHandler.RegisterRoutes(api.Group("", authRequired))

	shippingHandler := delivery.NewShippingHandler(shipping, logger)
	shippingHandler.RegisterAdminRoutes(api.Group("/admin", authRequired, adminOnly))

	logger.Infof("Starting server on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

// store is the union of the per-service store interfaces so one backend
// can serve every service.
type store interface {
	usecase.UserStore
	usecase.ProductStore
	usecase.CartStore
	usecase.OrderStore
}

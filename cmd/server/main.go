package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/config"
	"shopledger/internal/events"
	"shopledger/internal/gateway/handlers"
	"shopledger/internal/gateway/middleware"
	"shopledger/internal/ledger"
	"shopledger/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	ledgerStore, err := newStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ledgerInstance, err := ledger.New(ctx, ledgerStore)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load ledger: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	publisher := events.NewPublisher(redisClient)

	ledgerHandler := handlers.NewLedgerHTTPHandler(ledgerInstance, redisClient, publisher)
	reportsHandler := handlers.NewReportsHTTPHandler(ledgerInstance, redisClient)
	authHandler := handlers.NewAuthHTTPHandler(cfg.Auth.JWTSecret, cfg.Auth.OperatorKey, cfg.Auth.TokenTTL)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		public.POST("/auth/token", authHandler.IssueToken)

		public.GET("/inventory/products", ledgerHandler.ListInventory)
		public.GET("/inventory/products/export", ledgerHandler.ExportInventory)

		public.GET("/sales", ledgerHandler.ListSales)
		public.GET("/sales/export", ledgerHandler.ExportSales)

		public.GET("/dashboard", reportsHandler.Dashboard)
		public.GET("/reports/revenue", reportsHandler.TotalRevenue)
		public.GET("/reports/sales-by-product", reportsHandler.SalesByProduct)
		public.GET("/search", reportsHandler.Search)

		public.GET("/customers", reportsHandler.ListCustomers)
		public.GET("/customers/:name/purchases", reportsHandler.CustomerHistory)
		public.GET("/customers/:name/purchases/export", reportsHandler.ExportCustomerHistory)
	}

	// --- Protected API Group ---
	// Mutations require a bearer token when a JWT secret is configured.
	protected := r.Group("/api/v1")
	if cfg.Auth.JWTSecret != "" {
		protected.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))
	}
	{
		protected.POST("/inventory/products", ledgerHandler.UpsertProduct)
		protected.POST("/sales", ledgerHandler.RecordSale)
		protected.DELETE("/sales/:index", ledgerHandler.DeleteSale)
	}

	r.GET("/health", healthCheckHandler(cfg.Store.Driver, redisClient != nil))

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s (store driver: %s)", port, cfg.Store.Driver)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newStore(cfg config.StoreConfig) (ledger.Store, error) {
	switch cfg.Driver {
	case "csv":
		return store.NewCSVStore(cfg.DataDir), nil
	case "sqlite":
		db, err := store.OpenDB("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)
	default:
		db, err := store.OpenDB(cfg.Driver, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)
	}
}

func healthCheckHandler(storeDriver string, redisAvailable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cache := "disabled"
		if redisAvailable {
			cache = "available"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"store":     storeDriver,
			"cache":     cache,
			"timestamp": time.Now(),
		})
	}
}

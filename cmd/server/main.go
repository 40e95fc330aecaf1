package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"

	"shopstack/config"
	"shopstack/internal/api/handlers"
	"shopstack/internal/api/middleware"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/metrics"
	"shopstack/internal/services/auth"
	"shopstack/internal/services/inventory"
	"shopstack/internal/services/product"
	"shopstack/internal/services/sales"
	"shopstack/internal/services/user"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient = config.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	serverMetrics := metrics.NewServerMetrics()

	authSvc := auth.NewService(db, &cfg)
	userSvc := user.NewService(db, &cfg)
	productSvc := product.NewService(db, &cfg, redisClient)
	inventorySvc := inventory.NewService(db, &cfg, redisClient)
	salesSvc := sales.NewService(db, &cfg, redisClient)

	authHandler := handlers.NewAuthHandler(authSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	productHandler := handlers.NewProductHandler(productSvc)
	inventoryHandler := handlers.NewInventoryHandler(inventorySvc)
	salesHandler := handlers.NewSalesHandler(salesSvc, serverMetrics)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimit, redisClient))
	r.Use(serverMetrics.Middleware())

	// --- Public ---
	public := r.Group(cfg.APIPath)
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/password", authHandler.ResetPassword)
	}

	// --- Protected; recovery routes stay open to accounts that still
	// have to rotate their password ---
	recovery := r.Group(cfg.APIPath)
	recovery.Use(middleware.Authenticated(authSvc, true))
	{
		recovery.PATCH("/logout", authHandler.Logout)
		recovery.PATCH("/password", authHandler.UpdatePassword)
	}

	protected := r.Group(cfg.APIPath)
	protected.Use(middleware.Authenticated(authSvc, false))
	{
		protected.GET("/me", authHandler.Me)

		sell := protected.Group("/sales")
		sell.Use(middleware.RequireRole(userSvc, models.RoleCashier, models.RoleAttendant))
		{
			sell.POST("", salesHandler.Checkout)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.GET("/products", productHandler.ListProducts)
			admin.GET("/products/:id", productHandler.GetProduct)
			admin.PATCH("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.POST("/products/discounts", productHandler.CreateDiscount)

			admin.POST("/inventory/stock_entry", inventoryHandler.AddStock)
			admin.GET("/inventory/stock_entry", inventoryHandler.ListStockEntries)
			admin.POST("/inventory/stock_removal", inventoryHandler.RemoveStock)
			admin.GET("/inventory/stock_removal", inventoryHandler.ListStockRemovals)

			admin.GET("/sales", salesHandler.ListSales)
			admin.GET("/sales/:id", salesHandler.GetSales)
			admin.GET("/sales/items", salesHandler.ListSalesItems)

			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.ListUsers)
			admin.DELETE("/users/:id", userHandler.DeleteUser)
			admin.POST("/users/privileges", userHandler.AssignPrivilege)
			admin.GET("/users/privileges", userHandler.ListPrivileges)
			admin.DELETE("/users/privileges/:id", userHandler.RevokePrivilege)
		}
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

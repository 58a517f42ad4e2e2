package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/controllers"
	"github.com/hometaste/hometaste-api/middleware"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"github.com/hometaste/hometaste-api/utils"
)

func main() {
	log.Println("Starting HomeTaste API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	utils.UploadDir = cfg.UploadDir
	if err := initImageService(cfg); err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := services.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to initialize status publisher: %v", err)
		}
		defer publisher.Close()
		services.SetStatusPublisher(publisher)
		log.Printf("Publishing order status events to exchange %s", services.OrderStatusExchange)
	} else {
		log.Println("RABBITMQ_URL not set, order status events will not be published")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, middleware.EnsureValidToken(cfg))

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initImageService stores dish photos in S3 when a bucket is configured, on local disk otherwise
func initImageService(cfg *config.Config) error {
	if !cfg.UsesS3() {
		services.InitImageService(services.NewLocalImageService(cfg.UploadDir))
		log.Printf("Storing dish photos in %s", cfg.UploadDir)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s3Service, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return err
	}
	services.InitImageService(services.NewS3ImageService(s3Service))
	log.Printf("Storing dish photos in S3 bucket %s", cfg.AWSS3Bucket)
	return nil
}

// setupRouter builds the HTTP API. auth authenticates the caller and must set the
// Auth0 subject the way middleware.EnsureValidToken does.
func setupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AddAllowHeaders("Authorization")
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	authed := v1.Group("", auth)
	{
		authed.POST("/profiles", controllers.CreateProfile)
		authed.GET("/profiles/me", controllers.GetMyProfile)
		authed.PUT("/profiles/me", controllers.UpdateMyProfile)
		authed.GET("/session/redirect", controllers.GetSessionRedirect)

		// Any role; visibility is checked per order
		authed.GET("/orders", controllers.ListOrders)
		authed.GET("/orders/:id", controllers.GetOrder)
		authed.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)

		authed.GET("/stats/me", controllers.GetMyStats)
		authed.GET("/gamification/me", controllers.GetMyGamification)
		authed.GET("/reviews/me", controllers.ListMyReviews)
	}

	customer := authed.Group("", middleware.RequireRole(models.RoleCustomer, controllers.LookupPrincipal))
	{
		customer.GET("/feed", controllers.GetFeed)
		customer.GET("/feed/categories", controllers.GetFeedCategories)
		customer.POST("/orders", controllers.CreateOrder)
		customer.POST("/orders/:id/reviews", controllers.CreateReview)
		customer.POST("/addresses", controllers.CreateAddress)
		customer.GET("/addresses", controllers.ListAddresses)
	}

	cook := authed.Group("", middleware.RequireRole(models.RoleCook, controllers.LookupPrincipal))
	{
		cook.POST("/dishes", controllers.CreateDish)
		cook.GET("/dishes/mine", controllers.ListMyDishes)
		cook.GET("/dashboard/cook", controllers.GetCookDashboard)
	}

	delivery := authed.Group("", middleware.RequireRole(models.RoleDelivery, controllers.LookupPrincipal))
	{
		delivery.GET("/orders/available", controllers.ListAvailableDeliveries)
		delivery.GET("/dashboard/delivery", controllers.GetDeliveryDashboard)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "HomeTaste API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not initialized",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}

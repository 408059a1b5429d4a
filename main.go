package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/metrics"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureCategoryIndexes(db); err != nil {
		log.Printf("category index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	jwtSecret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL
	uploadDir := config.AppEnv.UploadDir

	auth := middleware.RequireAuth(db, jwtSecret)
	admin := middleware.RequireAdmin()

	r := gin.Default()
	r.Use(metrics.Middleware())
	r.Use(middleware.RateLimit(config.AppEnv.RateLimitRPM))

	r.Static("/uploads", uploadDir)
	r.GET("/metrics", metrics.Handler())
	r.GET("/health", func(c *gin.Context) {
		if err := client.Ping(c.Request.Context(), nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", handlers.Register(db, jwtSecret, accessTTL))
		authRoutes.POST("/login", handlers.Login(db, jwtSecret, accessTTL))
		authRoutes.POST("/google", handlers.OAuthLogin(db, "google", jwtSecret, accessTTL))
		authRoutes.POST("/facebook", handlers.OAuthLogin(db, "facebook", jwtSecret, accessTTL))
		authRoutes.GET("/me", auth, handlers.GetMe())
	}

	categories := api.Group("/categories")
	{
		categories.GET("", handlers.GetCategories(db))
		categories.GET("/main", handlers.GetMainCategories(db))
		categories.GET("/:id", handlers.GetCategory(db))
		categories.GET("/:id/subcategories", handlers.GetSubcategories(db))
		categories.POST("", auth, admin, handlers.CreateCategory(db))
		categories.PUT("/:id", auth, admin, handlers.UpdateCategory(db))
		categories.DELETE("/:id", auth, admin, handlers.DeleteCategory(db))
	}

	products := api.Group("/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProduct(db))
		products.POST("", auth, admin, handlers.CreateProduct(db))
		products.PUT("/:id", auth, admin, handlers.UpdateProduct(db))
		products.DELETE("/:id", auth, admin, handlers.DeleteProduct(db, uploadDir))
	}

	orders := api.Group("/orders", auth)
	{
		orders.GET("", handlers.GetOrders(db))
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.PUT("/:id/status", admin, handlers.UpdateOrderStatus(db))
		orders.DELETE("/:id", admin, handlers.DeleteOrder(db))
	}

	users := api.Group("/users", auth)
	{
		users.PUT("/profile", handlers.UpdateProfile(db))
		users.PUT("/password", handlers.ChangePassword(db))
		users.GET("", admin, handlers.ListUsers(db))
		users.GET("/:id", admin, handlers.GetUser(db))
		users.PUT("/:id", admin, handlers.UpdateUser(db))
		users.DELETE("/:id", admin, handlers.DeleteUser(db))
	}

	api.GET("/stats", auth, admin, handlers.GetStats(db))

	upload := api.Group("/upload", auth, admin)
	{
		upload.POST("", handlers.UploadImage(uploadDir))
		upload.POST("/multiple", handlers.UploadImages(uploadDir))
	}

	r.Run(":" + config.AppEnv.Port)
}

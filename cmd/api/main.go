package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"handwriting-dataset-api/config"
	"handwriting-dataset-api/controllers"
	"handwriting-dataset-api/middleware"
	"handwriting-dataset-api/models"
	"handwriting-dataset-api/routes"
	"handwriting-dataset-api/services"
	"handwriting-dataset-api/storage"
	"handwriting-dataset-api/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging and database
	config.InitLogging()
	config.InitDB()

	if err := config.DB.AutoMigrate(&models.User{}, &models.Role{}, &models.Sample{}, &models.SampleReview{}); err != nil {
		log.Fatal("Failed to migrate database schema:", err)
	}

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire sample persistence
	sampleStore := store.NewGormStore(config.DB)

	// Wire image storage: MinIO when configured, local disk otherwise
	imageStore, err := buildImageStore()
	if err != nil {
		log.Fatal("Failed to initialize image storage:", err)
	}

	// Wire the recognition gateway
	recognizer := services.NewRecognitionService(
		os.Getenv("VLM_BASE_URL"),
		os.Getenv("VLM_API_KEY"),
		vlmModel(),
		recognitionTimeout(),
	)

	controllers.Setup(sampleStore, imageStore, recognizer)

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Serve disk-stored images when running without MinIO
	if _, ok := imageStore.(*storage.FileStore); ok {
		router.Static("/uploads", uploadPath())
	}

	// Setup routes
	routes.SetupRoutes(router)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func buildImageStore() (storage.ObjectStore, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint != "" {
		return storage.NewMinioStore(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			minioBucket(),
			os.Getenv("MINIO_USE_SSL") == "true",
		)
	}
	return storage.NewFileStore(uploadPath(), "/uploads")
}

func uploadPath() string {
	if p := os.Getenv("UPLOAD_PATH"); p != "" {
		return p
	}
	return "./uploads"
}

func minioBucket() string {
	if b := os.Getenv("MINIO_BUCKET"); b != "" {
		return b
	}
	return "handwriting-samples"
}

func vlmModel() string {
	if m := os.Getenv("VLM_MODEL"); m != "" {
		return m
	}
	return "google/gemini-2.5-flash"
}

func recognitionTimeout() time.Duration {
	if s := os.Getenv("VLM_TIMEOUT_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0 // service default
}

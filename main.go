package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/logger"
	"github.com/amberlane-studio/amberlane-backend-go/mailer"
	"github.com/amberlane-studio/amberlane-backend-go/payments"
	"github.com/amberlane-studio/amberlane-backend-go/routes"
	"github.com/amberlane-studio/amberlane-backend-go/shipping"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	if err := logger.Init(config.GetEnv("APP_ENV", "development")); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// External collaborators
	payments.Init()
	shipping.Init()
	mailer.Init()

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3000")
	e.Logger.Fatal(e.Start(":" + port))
}

package main

import (
	"notes-service/internal/handler"
	"notes-service/internal/middleware"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting notes service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS()) // permissive CORS, answers OPTIONS preflight
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)
	auth.POST("/logout", handler.Logout, middleware.AuthMiddleware)

	// Current user - identity plus profile, tenant and note usage
	e.GET("/me", handler.GetCurrentUser, middleware.AuthMiddleware)

	// Note routes - all require authentication
	notes := e.Group("/notes")
	notes.Use(middleware.AuthMiddleware)
	notes.GET("", handler.ListNotes)
	notes.POST("", handler.CreateNote)
	notes.GET("/:id", handler.GetNote)
	notes.PUT("/:id", handler.UpdateNote)
	notes.DELETE("/:id", handler.DeleteNote)

	// Tenant routes
	tenants := e.Group("/tenants")
	tenants.Use(middleware.AuthMiddleware)
	tenants.POST("/:slug/upgrade", handler.UpgradeTenant)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

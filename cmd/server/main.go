package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"trackmymess/internal/auth"
	"trackmymess/internal/handlers"
	"trackmymess/internal/middleware"
	"trackmymess/internal/models"
	"trackmymess/internal/services"
	"trackmymess/pkg/logging"
)

const defaultTokenHours = 168 // 7 days

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment")
	}
	logging.Setup()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	db, err := services.InitDB(dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := services.AutoMigrate(db); err != nil {
		slog.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET not set")
		os.Exit(1)
	}
	tokenHours := defaultTokenHours
	if raw := os.Getenv("JWT_EXPIRES_HOURS"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h > 0 {
			tokenHours = h
		}
	}
	jwtManager := auth.NewJWTManager(secret, time.Duration(tokenHours)*time.Hour)

	// Redis is optional; alert reads fall back to live scans without it.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			slog.Warn("redis unavailable, continuing without cache", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = middleware.CustomErrorHandler
	e.Validator = handlers.NewRequestValidator()

	authHandler := handlers.NewAuthHandler(services.NewAuthService(db, jwtManager))
	messHandler := handlers.NewMessHandler(services.NewMessService(db))
	ownerHandler := handlers.NewOwnerHandler(services.NewOwnerService(db))
	studentHandler := handlers.NewStudentHandler(services.NewStudentService(db))
	paymentHandler := handlers.NewPaymentHandler(services.NewBillingService(db))
	notificationHandler := handlers.NewNotificationHandler(services.NewNotificationService(db), cache)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.RequireAuth(db, jwtManager))
	protected.GET("/auth/me", authHandler.Me)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleOwner)

	mess := protected.Group("/mess")
	mess.GET("", messHandler.List, adminOnly)
	mess.GET("/unassigned", messHandler.ListUnassigned, adminOnly)
	mess.GET("/:id", messHandler.Get, anyRole)
	mess.POST("", messHandler.Create, adminOnly)
	mess.PUT("/:id", messHandler.Update, adminOnly)
	mess.POST("/:id/assign-owner", messHandler.AssignOwner, adminOnly)
	mess.DELETE("/:id", messHandler.Delete, adminOnly)

	owners := protected.Group("/owners", adminOnly)
	owners.GET("", ownerHandler.List)
	owners.GET("/:id", ownerHandler.Get)
	owners.POST("", ownerHandler.Create)
	owners.PUT("/:id", ownerHandler.Update)
	owners.PUT("/:id/toggle-active", ownerHandler.ToggleActive)

	students := protected.Group("/students", anyRole)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", studentHandler.Add)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)
	students.PUT("/:id/freeze", studentHandler.ToggleFreeze)

	payments := protected.Group("/payments", anyRole)
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.POST("", paymentHandler.Add)
	payments.DELETE("/:id", paymentHandler.Delete)

	protected.GET("/notifications", notificationHandler.List, anyRole)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := e.Start(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

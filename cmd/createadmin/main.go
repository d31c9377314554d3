package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
	"trackmymess/internal/services"
	"trackmymess/pkg/logging"
)

func main() {
	username := flag.String("username", "admin", "Username for the admin account")
	password := flag.String("password", "", "Password for the admin account (mandatory)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment")
	}
	logging.Setup()

	if *password == "" {
		slog.Error("password flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := auth.ValidatePassword(*password); err != nil {
		slog.Error("invalid password", "error", err)
		os.Exit(1)
	}

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

	var existing models.User
	err = db.Where("username = ?", *username).First(&existing).Error
	if err == nil {
		slog.Info("user already exists", "username", *username, "id", existing.ID)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("looking up user", "error", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		os.Exit(1)
	}

	admin := models.User{
		Username: *username,
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		slog.Error("creating admin", "error", err)
		os.Exit(1)
	}

	slog.Info("admin created", "username", admin.Username, "id", admin.ID)
}

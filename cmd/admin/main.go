// Command admin bootstraps the first ADMIN user. It is a no-op when an admin
// already exists, so it is safe to run on every deploy.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/weatherdesk/weatherdesk-go/internal/config"
	"github.com/weatherdesk/weatherdesk-go/internal/crypto"
	"github.com/weatherdesk/weatherdesk-go/internal/model"
	"github.com/weatherdesk/weatherdesk-go/internal/repository"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		slog.Error("email and password are required")
		flag.Usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewUserRepository(db)

	exists, err := repo.AdminExists(ctx)
	if err != nil {
		slog.Error("admin lookup failed", "error", err)
		os.Exit(1)
	}
	if exists {
		slog.Info("admin already exists, nothing to do")
		return
	}

	hash, err := crypto.HashPassword(*password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		os.Exit(1)
	}

	token, err := crypto.GenerateToken(*email, cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		os.Exit(1)
	}

	user := &model.User{
		Email:        *email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Token:        token,
	}

	if err := repo.Create(ctx, user); err != nil {
		slog.Error("admin creation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("admin created", "email", user.Email)
}

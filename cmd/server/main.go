package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/autofill"
	"github.com/invoiceo/invoiceo/internal/config"
	"github.com/invoiceo/invoiceo/internal/db"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/server"
	"github.com/invoiceo/invoiceo/internal/services"
	"github.com/invoiceo/invoiceo/internal/store"
	"github.com/invoiceo/invoiceo/pkg/logging"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	logging.Setup()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if *migrateOnlyFlag {
		slog.Info("migrations completed; exiting as requested")
		return
	}

	if err := seedAdmin(dbConn); err != nil {
		slog.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	st := store.New(dbConn)
	rec := services.NewReconciler(st, cfg.TaxRate)
	af := autofill.NewService(autofill.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel))

	handler := server.New(cfg, dbConn, st, rec, af)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// seedAdmin creates the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no user with that email exists yet.
func seedAdmin(dbConn *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := dbConn.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Admin",
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
		Plan:     models.PlanBusiness,
		Language: "en",
		Currency: "EUR",
	}
	if err := dbConn.Create(&admin).Error; err != nil {
		return err
	}
	slog.Info("admin account created", "email", email)
	return nil
}

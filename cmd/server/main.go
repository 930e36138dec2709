package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/dmelats/loanbook/internal/config"
	"github.com/dmelats/loanbook/internal/database"
	"github.com/dmelats/loanbook/internal/handler"
	"github.com/dmelats/loanbook/internal/mailer"
	"github.com/dmelats/loanbook/internal/queue"
	"github.com/dmelats/loanbook/internal/repository"
	"github.com/dmelats/loanbook/internal/router"
	"github.com/dmelats/loanbook/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis holds the OTP records; without it nobody can authenticate.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	// Repositories
	users := repository.NewUserRepo(db)
	clients := repository.NewClientRepo(db)
	loans := repository.NewLoanRepo(db)
	dashboard := repository.NewDashboardRepo(db)
	codes := repository.NewOTPStore(rdb)

	// Collaborators and core services
	smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	otp := service.NewOTPService(codes, smtp, time.Duration(cfg.OTPTTLMin)*time.Minute)

	// Handlers
	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, otp),
		Clients:   handler.NewClientHandler(clients, users),
		Loans:     handler.NewLoanHandler(loans, clients, users, cfg.ExportDir),
		Dashboard: handler.NewDashboardHandler(dashboard),
	}

	// Background consumer records loan events to logs/loans.log and keeps
	// reconnecting on its own; a dead broker never blocks the API.
	go queue.StartLoanConsumer()

	e := echo.New()
	router.Register(e, h, rdb, cfg.JWTSecret, cfg.AuthRPM)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

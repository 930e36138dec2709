// Package router wires the HTTP surface onto an Echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dmelats/loanbook/internal/handler"
	"github.com/dmelats/loanbook/internal/middleware"
)

// Handlers bundles everything the router needs to register.
type Handlers struct {
	Auth      *handler.AuthHandler
	Clients   *handler.ClientHandler
	Loans     *handler.LoanHandler
	Dashboard *handler.DashboardHandler
}

// Register mounts all routes. The /auth group carries a fixed-window rate
// limit (authRPM requests per minute per IP, 0 disables). Everything under
// /v1 requires a valid access token, which only verify-otp hands out.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client, jwtSecret string, authRPM int) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/auth")
	auth.Use(middleware.RateLimit(rdb, authRPM, time.Minute))
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.GET("/me", h.Auth.Me)

	v1.POST("/clients", h.Clients.Create)
	v1.PUT("/clients/:id", h.Clients.Update)
	v1.GET("/clients", h.Clients.List)
	v1.DELETE("/clients/:id", h.Clients.Delete)

	v1.POST("/loans", h.Loans.Create)
	v1.PUT("/loans/:id", h.Loans.Update)
	v1.GET("/loans", h.Loans.List)
	v1.GET("/loans/:id", h.Loans.Get)
	v1.DELETE("/loans/:id", h.Loans.Delete)
	v1.GET("/loans/:id/pdf", h.Loans.ExportPDF)
	v1.GET("/loans/:id/excel", h.Loans.ExportExcel)

	v1.GET("/dashboard", h.Dashboard.Get)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmelats/loanbook/internal/config"
	"github.com/dmelats/loanbook/internal/model"
	"github.com/dmelats/loanbook/internal/repository"
	"github.com/dmelats/loanbook/internal/service"
	"github.com/dmelats/loanbook/internal/utils"
)

const (
	dbTimeout  = 5 * time.Second
	otpTimeout = 15 * time.Second // includes an SMTP round trip
)

// UserStore is the persistence contract the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	DeleteByEmail(ctx context.Context, email string) error
	Activate(ctx context.Context, id uint64) error
}

// OTPFlow issues and verifies one-time codes. Implemented by service.OTPService.
type OTPFlow interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// AuthHandler bundles dependencies for the signup/login/verify endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	OTP   OTPFlow
}

func NewAuthHandler(cfg config.Config, users UserStore, otp OTPFlow) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, OTP: otp}
}

// ----- DTOs -----

type signupReq struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Gender       string `json:"gender"`
	ProfileImage string `json:"profileImage"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type verifiedResp struct {
	Message string            `json:"message"`
	User    model.Profile     `json:"user"`
	Access  utils.AccessToken `json:"access"`
}

// Signup registers a new staff account and sends a verification OTP. An
// unactivated record for the same email is treated as an abandoned signup
// and replaced; an activated one is a conflict. No session is returned,
// authentication completes only via VerifyOTP.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)

	var missing []string
	if req.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Gender == "" {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields: " + strings.Join(missing, ", ")})
	}
	if !model.ValidGender(req.Gender) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be male, female or other"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), otpTimeout)
	defer cancel()

	existing, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.IsActivated:
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists and is activated"})
	case err == nil:
		// Abandoned signup: drop the stale record and start over.
		if err := h.Users.DeleteByEmail(ctx, req.Email); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
		}
	case !errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	u := &model.User{
		FirstName:    req.FirstName,
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Gender:       req.Gender,
		ProfileImage: req.ProfileImage,
	}
	if _, err := h.Users.Create(ctx, u); err != nil {
		// Two racing signups for the same email: the loser hits the unique key.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	if err := h.OTP.Issue(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrDelivery) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send verification email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "signup successful, please verify your email"})
}

// Login checks credentials and sends a fresh OTP. It never completes
// authentication in one step: the caller must follow up with VerifyOTP.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), otpTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !u.IsActivated {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account not activated, please verify your email"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.OTP.Issue(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrDelivery) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send verification email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent to your email, please verify to complete login"})
}

// VerifyOTP completes both the signup and the login flow. On the first
// successful verification after signup it activates the account. The
// response carries the profile and a signed access token for the /v1 group.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.OTP = strings.TrimSpace(req.OTP)
	if req.Email == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.OTP.Verify(ctx, req.Email, req.OTP); err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid otp"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "otp verification failed"})
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "otp verification failed"})
	}
	if !u.IsActivated {
		if err := h.Users.Activate(ctx, u.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "otp verification failed"})
		}
		u.IsActivated = true
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, verifiedResp{
		Message: "otp verified successfully",
		User:    u.Profile(),
		Access:  access,
	})
}

// Me echoes the authenticated identity from the token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
	})
}

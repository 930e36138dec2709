package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmelats/loanbook/internal/config"
	"github.com/dmelats/loanbook/internal/model"
	"github.com/dmelats/loanbook/internal/repository"
	"github.com/dmelats/loanbook/internal/service"
	"github.com/dmelats/loanbook/internal/utils"
)

// ----- in-memory fakes -----

type memUsers struct {
	seq     uint64
	byEmail map[string]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*model.User)}
}

func (m *memUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return 0, repository.ErrEmailExists
	}
	m.seq++
	u.ID = m.seq
	cp := *u
	m.byEmail[u.Email] = &cp
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return *u, nil
}

func (m *memUsers) DeleteByEmail(_ context.Context, email string) error {
	delete(m.byEmail, email)
	return nil
}

func (m *memUsers) Activate(_ context.Context, id uint64) error {
	for _, u := range m.byEmail {
		if u.ID == id {
			u.IsActivated = true
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type memSender struct {
	body string
	err  error
}

func (s *memSender) Send(_, _, body string) error {
	if s.err != nil {
		return s.err
	}
	s.body = body
	return nil
}

func (s *memSender) code(t *testing.T) string {
	t.Helper()
	idx := strings.LastIndex(s.body, " ")
	require.Positive(t, idx)
	return s.body[idx+1:]
}

type memOTPCodes struct{ codes map[string]bool }

func (m *memOTPCodes) Save(_ context.Context, email, code string, _ time.Duration) error {
	m.codes[email+":"+code] = true
	return nil
}

func (m *memOTPCodes) Consume(_ context.Context, email, code string) (bool, error) {
	key := email + ":" + code
	if !m.codes[key] {
		return false, nil
	}
	delete(m.codes, key)
	return true, nil
}

func authFixture() (*AuthHandler, *memUsers, *memSender) {
	users := newMemUsers()
	mail := &memSender{}
	otp := service.NewOTPService(&memOTPCodes{codes: make(map[string]bool)}, mail, 5*time.Minute)
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: bcrypt.MinCost}
	return NewAuthHandler(cfg, users, otp), users, mail
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

const signupBody = `{"firstName":"Dina","lastName":"M","email":"Dina@Example.com","password":"s3cret!","gender":"female"}`

func TestSignupVerifyLogin(t *testing.T) {
	h, users, mail := authFixture()

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	// email is normalized and the account starts unactivated
	u, err := users.GetByEmail(context.Background(), "dina@example.com")
	require.NoError(t, err)
	assert.False(t, u.IsActivated)

	// a wrong code never authenticates
	rec = doJSON(t, h.VerifyOTP, http.MethodPost, "/auth/verify-otp",
		`{"email":"dina@example.com","otp":"000000"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the emailed code completes signup and activates the account
	rec = doJSON(t, h.VerifyOTP, http.MethodPost, "/auth/verify-otp",
		`{"email":"dina@example.com","otp":"`+mail.code(t)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string            `json:"message"`
		User    model.Profile     `json:"user"`
		Access  utils.AccessToken `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.User.IsActivated)
	assert.Equal(t, "dina@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Access.Token)

	u, err = users.GetByEmail(context.Background(), "dina@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsActivated)

	// login sends a fresh code and only then a token is issued again
	rec = doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"dina@example.com","password":"s3cret!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h.VerifyOTP, http.MethodPost, "/auth/verify-otp",
		`{"email":"dina@example.com","otp":"`+mail.code(t)+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	h, _, _ := authFixture()

	t.Run("missing fields are all named", func(t *testing.T) {
		rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", `{"lastName":"M"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		for _, field := range []string{"firstName", "email", "password", "gender"} {
			assert.Contains(t, rec.Body.String(), field)
		}
	})

	t.Run("unknown gender is rejected", func(t *testing.T) {
		rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
			`{"firstName":"D","email":"d@x.com","password":"p","gender":"robot"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignupExistingAccounts(t *testing.T) {
	t.Run("activated account conflicts", func(t *testing.T) {
		h, users, _ := authFixture()
		id, err := users.Create(context.Background(), &model.User{Email: "dina@example.com"})
		require.NoError(t, err)
		require.NoError(t, users.Activate(context.Background(), id))

		rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", signupBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("abandoned signup is replaced", func(t *testing.T) {
		h, users, _ := authFixture()
		_, err := users.Create(context.Background(), &model.User{Email: "dina@example.com", FirstName: "Old"})
		require.NoError(t, err)

		rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", signupBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		u, err := users.GetByEmail(context.Background(), "dina@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Dina", u.FirstName)
	})
}

func TestSignupDeliveryFailure(t *testing.T) {
	h, _, mail := authFixture()
	mail.err = errors.New("smtp refused")

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", signupBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoginGates(t *testing.T) {
	h, users, _ := authFixture()
	hash, err := utils.HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(context.Background(), &model.User{Email: "dina@example.com", PasswordHash: hash})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
			`{"email":"nobody@example.com","password":"s3cret!"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unactivated account", func(t *testing.T) {
		rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
			`{"email":"dina@example.com","password":"s3cret!"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		require.NoError(t, users.Activate(context.Background(), 1))
		rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
			`{"email":"dina@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

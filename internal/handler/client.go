package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmelats/loanbook/internal/model"
	"github.com/dmelats/loanbook/internal/repository"
)

// ClientStore is the persistence contract the client endpoints need.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Delete(ctx context.Context, id uint64) error
	Exists(ctx context.Context, id uint64) (bool, error)
}

// UserDirectory resolves staff ids when validating references.
type UserDirectory interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// ClientHandler serves the borrower CRUD surface.
type ClientHandler struct {
	Clients ClientStore
	Users   UserDirectory
}

func NewClientHandler(clients ClientStore, users UserDirectory) *ClientHandler {
	return &ClientHandler{Clients: clients, Users: users}
}

type clientReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Gender    *string `json:"gender"`
	Country   *string `json:"country"`
	State     *string `json:"state"`
	Address   *string `json:"address"`
	ZipCode   *string `json:"zipCode"`
	IDNumber  *string `json:"idNumber"`
	UserID    *uint64 `json:"userId"`
}

func strOf(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Create handles POST /v1/clients.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	cl := model.Client{
		FirstName: strOf(req.FirstName),
		LastName:  strOf(req.LastName),
		Gender:    strOf(req.Gender),
		Country:   strOf(req.Country),
		State:     strOf(req.State),
		Address:   strOf(req.Address),
		ZipCode:   strOf(req.ZipCode),
		IDNumber:  strOf(req.IDNumber),
	}
	if req.UserID != nil {
		cl.UserID = *req.UserID
	}

	var missing []string
	for _, f := range []struct{ name, val string }{
		{"firstName", cl.FirstName}, {"gender", cl.Gender}, {"country", cl.Country},
		{"state", cl.State}, {"address", cl.Address}, {"zipCode", cl.ZipCode}, {"idNumber", cl.IDNumber},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if cl.UserID == 0 {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields: " + strings.Join(missing, ", ")})
	}
	if !model.ValidGender(cl.Gender) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be male, female or other"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Users.Exists(ctx, cl.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create client"})
	}
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "userId does not resolve to an existing user"})
	}

	if err := h.Clients.Create(ctx, &cl); err != nil {
		if errors.Is(err, repository.ErrIDNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "id number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create client"})
	}
	return c.JSON(http.StatusCreated, cl)
}

// Update handles PUT /v1/clients/:id. Absent fields keep their stored value.
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cl, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.FirstName != nil {
		cl.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		cl.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Gender != nil {
		cl.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Country != nil {
		cl.Country = strings.TrimSpace(*req.Country)
	}
	if req.State != nil {
		cl.State = strings.TrimSpace(*req.State)
	}
	if req.Address != nil {
		cl.Address = strings.TrimSpace(*req.Address)
	}
	if req.ZipCode != nil {
		cl.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.IDNumber != nil {
		cl.IDNumber = strings.TrimSpace(*req.IDNumber)
	}
	if cl.FirstName == "" || cl.IDNumber == "" || !model.ValidGender(cl.Gender) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client fields"})
	}

	if err := h.Clients.Update(ctx, &cl); err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		case errors.Is(err, repository.ErrIDNumberExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "id number already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, cl)
}

// List handles GET /v1/clients.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Clients.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Delete handles DELETE /v1/clients/:id. Loans referencing the client keep
// their entries; the reference simply dangles afterwards.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Clients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

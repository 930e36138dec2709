package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmelats/loanbook/internal/export"
	"github.com/dmelats/loanbook/internal/model"
	"github.com/dmelats/loanbook/internal/queue"
	"github.com/dmelats/loanbook/internal/repository"
	"github.com/dmelats/loanbook/internal/service"
)

// Export generation may be slow; it gets a wider timeout than plain DB work.
const exportTimeout = 30 * time.Second

// LoanStore is the persistence contract the loan endpoints need.
type LoanStore interface {
	Create(ctx context.Context, l *model.Loan) error
	Update(ctx context.Context, id uint64, p repository.LoanPatch) (model.Loan, error)
	GetByID(ctx context.Context, id uint64) (model.Loan, error)
	GetDetail(ctx context.Context, id uint64) (model.LoanDetail, error)
	List(ctx context.Context) ([]model.Loan, error)
	Delete(ctx context.Context, id uint64) error
}

// LoanHandler serves loan CRUD, exports and the lifecycle events around
// them. The render and publish functions are fields so tests can swap them;
// production wiring uses the package defaults.
type LoanHandler struct {
	Loans     LoanStore
	Clients   ClientStore
	Users     UserDirectory
	ExportDir string

	RenderPDF   func(model.LoanDetail, string) (string, error)
	RenderExcel func(model.LoanDetail, string) (string, error)
	Publish     func(context.Context, queue.LoanEvent) error
}

func NewLoanHandler(loans LoanStore, clients ClientStore, users UserDirectory, exportDir string) *LoanHandler {
	return &LoanHandler{
		Loans:       loans,
		Clients:     clients,
		Users:       users,
		ExportDir:   exportDir,
		RenderPDF:   export.RenderPDF,
		RenderExcel: export.RenderExcel,
		Publish:     service.PublishLoanEvent,
	}
}

// publish sends a lifecycle event best-effort; failures are already logged
// by the publisher and never fail the request.
func (h *LoanHandler) publish(ctx context.Context, action string, l model.Loan) {
	_ = h.Publish(ctx, queue.LoanEvent{
		Action:     action,
		LoanID:     l.ID,
		LoanName:   l.LoanName,
		UserID:     l.UserID,
		Capital:    l.Capital,
		Currency:   l.Currency,
		Status:     l.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ----- DTOs -----

type loanClientReq struct {
	Client  uint64 `json:"client"`
	HasPaid bool   `json:"hasPaid"`
}

type loanReq struct {
	LoanName        *string         `json:"loanName"`
	Clients         []loanClientReq `json:"clients"`
	UserID          *uint64         `json:"userId"`
	Capital         *float64        `json:"capital"`
	MonthlyInterest *float64        `json:"monthlyInterest"`
	AnnualInterest  *float64        `json:"annualInterest"`
	Timeline        *int            `json:"timeline"`
	Currency        *string         `json:"currency"`
	LegalExpenses   *float64        `json:"legalExpenses"`
	TotalProfit     *float64        `json:"totalProfit"`
	Status          *string         `json:"status"`
}

func (r loanReq) toInput() service.LoanInput {
	in := service.LoanInput{
		Capital:         r.Capital,
		MonthlyInterest: r.MonthlyInterest,
		AnnualInterest:  r.AnnualInterest,
		Timeline:        r.Timeline,
		LegalExpenses:   r.LegalExpenses,
		TotalProfit:     r.TotalProfit,
	}
	if r.LoanName != nil {
		in.LoanName = *r.LoanName
	}
	if r.UserID != nil {
		in.UserID = *r.UserID
	}
	if r.Currency != nil {
		in.Currency = *r.Currency
	}
	if r.Status != nil {
		in.Status = *r.Status
	}
	for _, lc := range r.Clients {
		in.Clients = append(in.Clients, model.LoanClient{ClientID: lc.Client, HasPaid: lc.HasPaid})
	}
	return in
}

// resolveRefs checks that every client id and the user id exist. It returns
// a message naming the first dangling reference, or "" when all resolve.
func (h *LoanHandler) resolveRefs(ctx context.Context, clientIDs []uint64, userID uint64) (string, error) {
	seen := make(map[uint64]bool)
	for _, id := range clientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ok, err := h.Clients.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("client %d does not resolve to an existing client", id), nil
		}
	}
	ok, err := h.Users.Exists(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("userId %d does not resolve to an existing user", userID), nil
	}
	return "", nil
}

// Create handles POST /v1/loans. Every client reference and the user id
// must resolve; client entries always start unpaid; annualInterest and
// totalProfit are derived when absent. Nothing is persisted on failure.
func (h *LoanHandler) Create(c echo.Context) error {
	var req loanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := req.toInput()
	if err := service.ValidateLoan(in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ids := make([]uint64, len(in.Clients))
	for i, lc := range in.Clients {
		ids[i] = lc.ClientID
	}
	if msg, err := h.resolveRefs(ctx, ids, in.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create loan"})
	} else if msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}

	loan := service.BuildLoan(in)
	if err := h.Loans.Create(ctx, &loan); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create loan"})
	}
	h.publish(ctx, queue.ActionLoanCreated, loan)
	return c.JSON(http.StatusCreated, loan)
}

// Update handles PUT /v1/loans/:id. Absent fields keep their stored value;
// a provided client list replaces the stored one and carries hasPaid, which
// is how a client's obligation gets marked settled. References are not
// re-validated here, only create resolves them.
func (h *LoanHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req loanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var invalid []string
	if req.Capital != nil && *req.Capital <= 0 {
		invalid = append(invalid, "capital")
	}
	if req.MonthlyInterest != nil && *req.MonthlyInterest < 0 {
		invalid = append(invalid, "monthlyInterest")
	}
	if req.Timeline != nil && *req.Timeline <= 0 {
		invalid = append(invalid, "timeline")
	}
	if req.LegalExpenses != nil && *req.LegalExpenses < 0 {
		invalid = append(invalid, "legalExpenses")
	}
	if req.Status != nil && !model.ValidLoanStatus(*req.Status) {
		invalid = append(invalid, "status")
	}
	if req.LoanName != nil && strings.TrimSpace(*req.LoanName) == "" {
		invalid = append(invalid, "loanName")
	}
	for _, lc := range req.Clients {
		if lc.Client == 0 {
			invalid = append(invalid, "clients")
			break
		}
	}
	if len(invalid) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid fields: " + strings.Join(invalid, ", ")})
	}

	patch := repository.LoanPatch{
		LoanName:        req.LoanName,
		Capital:         req.Capital,
		MonthlyInterest: req.MonthlyInterest,
		AnnualInterest:  req.AnnualInterest,
		Timeline:        req.Timeline,
		Currency:        req.Currency,
		LegalExpenses:   req.LegalExpenses,
		TotalProfit:     req.TotalProfit,
		Status:          req.Status,
	}
	if req.Clients != nil {
		entries := make([]model.LoanClient, len(req.Clients))
		for i, lc := range req.Clients {
			entries[i] = model.LoanClient{ClientID: lc.Client, HasPaid: lc.HasPaid}
		}
		patch.Clients = &entries
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	loan, err := h.Loans.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.publish(ctx, queue.ActionLoanUpdated, loan)
	return c.JSON(http.StatusOK, loan)
}

// List handles GET /v1/loans.
func (h *LoanHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Loans.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /v1/loans/:id and returns the fully joined detail view.
// Entries whose client was deleted come back with a null client.
func (h *LoanHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	detail, err := h.Loans.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /v1/loans/:id. No cascade: referenced clients are
// untouched.
func (h *LoanHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	loan, err := h.Loans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Loans.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.publish(ctx, queue.ActionLoanDeleted, loan)
	return c.NoContent(http.StatusNoContent)
}

// ExportPDF handles GET /v1/loans/:id/pdf.
func (h *LoanHandler) ExportPDF(c echo.Context) error {
	return h.exportLoan(c, h.RenderPDF)
}

// ExportExcel handles GET /v1/loans/:id/excel.
func (h *LoanHandler) ExportExcel(c echo.Context) error {
	return h.exportLoan(c, h.RenderExcel)
}

func (h *LoanHandler) exportLoan(c echo.Context, render func(model.LoanDetail, string) (string, error)) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), exportTimeout)
	defer cancel()

	detail, err := h.Loans.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	path, err := render(detail, h.ExportDir)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "report generation failed"})
	}
	return c.Attachment(path, filepath.Base(path))
}

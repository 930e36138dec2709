package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmelats/loanbook/internal/model"
)

// DashboardSource computes the rollups. Implemented by repository.DashboardRepo.
type DashboardSource interface {
	Totals(ctx context.Context) (model.Dashboard, error)
}

// DashboardHandler serves GET /v1/dashboard. Figures are computed on demand;
// nothing is cached.
type DashboardHandler struct {
	Source DashboardSource
}

func NewDashboardHandler(src DashboardSource) *DashboardHandler {
	return &DashboardHandler{Source: src}
}

// Get returns the current totals across all loans.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Source.Totals(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}

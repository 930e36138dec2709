// Package handler contains the HTTP handlers binding the core lifecycles to
// the REST surface. Handlers depend on small consumer-defined interfaces so
// they test without a database.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

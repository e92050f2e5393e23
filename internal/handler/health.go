package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Home answers the root route with a static line of text.
func Home(c echo.Context) error {
	return c.String(http.StatusOK, "we are on the home url")
}

// HealthHandler reports whether the process and its store are usable.
type HealthHandler struct {
	Store Pinger
}

// Health pings the store with a short timeout.  It returns 200 when the
// store answers and 503 otherwise, so load balancers can take a replica
// without a database out of rotation while the process keeps running.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "degraded",
			"store":  "down",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "store": "up"})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
)

// QuotaHandler serves the quota ledger read endpoint.
type QuotaHandler struct {
	Ledger *engine.Ledger
}

func NewQuotaHandler(ledger *engine.Ledger) *QuotaHandler {
	if ledger == nil {
		panic("nil ledger passed to NewQuotaHandler")
	}
	return &QuotaHandler{Ledger: ledger}
}

// Status handles GET /v1/garages/:id/quota. Consumption is derived fresh
// from the booking table on every call, never cached in a counter.
func (h *QuotaHandler) Status(c echo.Context) error {
	garageID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	st, err := h.Ledger.Status(c.Request().Context(), garageID)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, st)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
)

// getUserID extracts the authenticated user ID placed in the context by the
// JWT middleware. The claim travels through JSON so it may arrive as a
// float64 rather than an integer type.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// admissionStatus maps an admission or lifecycle error to an HTTP status
// code. Unknown errors fall through to 500.
func admissionStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGarageNotFound), errors.Is(err, engine.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSlotUnavailable), errors.Is(err, engine.ErrSlotOccupied),
		errors.Is(err, engine.ErrQuotaExhausted), errors.Is(err, engine.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, engine.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the standard error envelope used across the API.
func errorBody(err error) echo.Map {
	return echo.Map{"error": err.Error()}
}

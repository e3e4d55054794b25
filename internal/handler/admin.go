package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// AdminHandler exposes privileged garage administration: quota top-ups and
// approval decisions. Routes are guarded by the ADMIN role.
type AdminHandler struct {
	Garages *repository.GarageRepo
	Ledger  *engine.Ledger
}

func NewAdminHandler(garages *repository.GarageRepo, ledger *engine.Ledger) *AdminHandler {
	if garages == nil || ledger == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Garages: garages, Ledger: ledger}
}

type quotaTopUpReq struct {
	Amount int `json:"amount"`
}

// AddQuota handles POST /v1/admin/garages/:id/quota. The top-up raises the
// purchased ceiling; the response carries the resulting ledger classification
// so the operator sees whether the garage left EXHAUSTED state.
func (h *AdminHandler) AddQuota(c echo.Context) error {
	garageID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	var req quotaTopUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	ctx := c.Request().Context()
	purchased, err := h.Garages.AddQuota(ctx, garageID, req.Amount)
	if err != nil {
		if errors.Is(err, engine.ErrGarageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	consumed, err := h.Ledger.Consumed(ctx, garageID)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"garage_id": garageID,
		"quota":     engine.Classify(consumed, purchased),
	})
}

type approvalReq struct {
	Status string `json:"status"`
}

// SetApproval handles POST /v1/admin/garages/:id/approval. Only APPROVED
// garages can accept reservations; demoting an approved garage stops new
// admissions without touching existing bookings.
func (h *AdminHandler) SetApproval(c echo.Context) error {
	garageID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	var req approvalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.ApprovalStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown approval status"})
	}
	if err := h.Garages.SetApproval(c.Request().Context(), garageID, status); err != nil {
		if errors.Is(err, engine.ErrGarageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"garage_id": garageID, "approval_status": status})
}

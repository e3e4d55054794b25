package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// VehicleHandler lets customers register and list the vehicles they book
// appointments for.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(vehicles *repository.VehicleRepo) *VehicleHandler {
	if vehicles == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: vehicles}
}

type vehicleReq struct {
	Registration string `json:"registration"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

type vehicleView struct {
	ID           uint64 `json:"id"`
	Registration string `json:"registration"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

// Create handles POST /v1/vehicles.
func (h *VehicleHandler) Create(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Registration = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(req.Registration), " ", ""))
	if req.Registration == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration required"})
	}
	v := &model.Vehicle{
		CustomerID:   customerID,
		Registration: req.Registration,
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
	}
	if err := h.Vehicles.Create(c.Request().Context(), v); err != nil {
		if errors.Is(err, repository.ErrDuplicateVehicle) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, vehicleView{ID: v.ID, Registration: v.Registration, Make: v.Make, Model: v.Model})
}

// List handles GET /v1/vehicles.
func (h *VehicleHandler) List(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Vehicles.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]vehicleView, 0, len(items))
	for _, v := range items {
		views = append(views, vehicleView{ID: v.ID, Registration: v.Registration, Make: v.Make, Model: v.Model})
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": views})
}

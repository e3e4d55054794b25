package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// GarageHandler serves the public garage directory.
type GarageHandler struct {
	Garages *repository.GarageRepo
}

func NewGarageHandler(garages *repository.GarageRepo) *GarageHandler {
	if garages == nil {
		panic("nil repository passed to NewGarageHandler")
	}
	return &GarageHandler{Garages: garages}
}

type garageView struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Postcode string `json:"postcode"`
}

// List handles GET /v1/garages. Only APPROVED garages are listed; pending
// and rejected garages are invisible to customers.
func (h *GarageHandler) List(c echo.Context) error {
	garages, err := h.Garages.ListApproved(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]garageView, 0, len(garages))
	for _, g := range garages {
		views = append(views, garageView{ID: g.ID, Name: g.Name, Postcode: g.Postcode})
	}
	return c.JSON(http.StatusOK, echo.Map{"garages": views})
}

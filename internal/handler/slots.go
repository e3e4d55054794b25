package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// SlotHandler serves the public availability calendar and the garage-side
// slot management endpoints. Garage endpoints resolve the caller's garage
// from their user ID; a garage account manages exactly one garage.
type SlotHandler struct {
	Calendar *engine.Calendar
	Garages  *repository.GarageRepo
}

func NewSlotHandler(calendar *engine.Calendar, garages *repository.GarageRepo) *SlotHandler {
	if calendar == nil || garages == nil {
		panic("nil dependency passed to NewSlotHandler")
	}
	return &SlotHandler{Calendar: calendar, Garages: garages}
}

type slotCell struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// Offered handles GET /v1/garages/:id/slots?from=&to=. Only offerable cells
// are returned; booked and blocked cells never appear.
func (h *SlotHandler) Offered(c echo.Context) error {
	garageID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	slots, err := h.Calendar.ListOffered(c.Request().Context(), garageID, from, to)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	cells := make([]slotCell, 0, len(slots))
	for _, s := range slots {
		cells = append(cells, slotCell{Date: s.SlotDate, TimeSlot: s.TimeSlot})
	}
	return c.JSON(http.StatusOK, echo.Map{"garage_id": garageID, "slots": cells})
}

// callerGarage loads the garage owned by the authenticated user.
func (h *SlotHandler) callerGarage(c echo.Context) (uint64, error) {
	userID, err := getUserID(c)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	g, err := h.Garages.GetByOwner(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, engine.ErrGarageNotFound) {
			return 0, echo.NewHTTPError(http.StatusNotFound, "no garage for caller")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return g.ID, nil
}

type publishReq struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Slots []string `json:"slots"`
}

// Publish handles POST /v1/garage/slots. It opens every date in [from, to]
// with the given time-slot pattern. Re-publishing an overlapping range is
// safe: existing cells keep their booked and blocked facets.
func (h *SlotHandler) Publish(c echo.Context) error {
	garageID, err := h.callerGarage(c)
	if err != nil {
		return err
	}
	var req publishReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	created, err := h.Calendar.Publish(c.Request().Context(), garageID, req.From, req.To, req.Slots)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": created})
}

type blockReq struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// Block handles POST /v1/garage/slots/block. Booked cells cannot be blocked.
func (h *SlotHandler) Block(c echo.Context) error {
	return h.setBlocked(c, true)
}

// Unblock handles POST /v1/garage/slots/unblock.
func (h *SlotHandler) Unblock(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *SlotHandler) setBlocked(c echo.Context, blocked bool) error {
	garageID, err := h.callerGarage(c)
	if err != nil {
		return err
	}
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	if blocked {
		err = h.Calendar.Block(ctx, garageID, req.Date, req.TimeSlot)
	} else {
		err = h.Calendar.Unblock(ctx, garageID, req.Date, req.TimeSlot)
	}
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"date": req.Date, "time_slot": req.TimeSlot, "blocked": blocked})
}

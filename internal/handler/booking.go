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

// BookingHandler exposes reservation and lifecycle endpoints. Reservation
// admission and state transitions are delegated to the engine; the handler
// only authenticates, authorizes against ownership and translates errors to
// HTTP statuses.
type BookingHandler struct {
	Coordinator *engine.Coordinator
	Lifecycle   *engine.Lifecycle
	Calendar    *engine.Calendar
	Bookings    *repository.BookingRepo
	Garages     *repository.GarageRepo
	Vehicles    *repository.VehicleRepo
}

func NewBookingHandler(co *engine.Coordinator, lc *engine.Lifecycle, cal *engine.Calendar,
	bookings *repository.BookingRepo, garages *repository.GarageRepo, vehicles *repository.VehicleRepo) *BookingHandler {
	if co == nil || lc == nil || cal == nil || bookings == nil || garages == nil || vehicles == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		Coordinator: co,
		Lifecycle:   lc,
		Calendar:    cal,
		Bookings:    bookings,
		Garages:     garages,
		Vehicles:    vehicles,
	}
}

type reserveReq struct {
	GarageID  uint64 `json:"garage_id"`
	VehicleID uint64 `json:"vehicle_id"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
}

// bookingView is the JSON shape of one booking across all endpoints.
type bookingView struct {
	ID          uint64              `json:"id"`
	Reference   string              `json:"reference"`
	GarageID    uint64              `json:"garage_id"`
	CustomerID  uint64              `json:"customer_id"`
	VehicleID   uint64              `json:"vehicle_id"`
	Date        string              `json:"date"`
	TimeSlot    string              `json:"time_slot"`
	Status      model.BookingStatus `json:"status"`
	ReviewReady bool                `json:"review_unlocked"`
}

func viewOf(b *model.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		Reference:   b.Reference,
		GarageID:    b.GarageID,
		CustomerID:  b.CustomerID,
		VehicleID:   b.VehicleID,
		Date:        b.SlotDate,
		TimeSlot:    b.TimeSlot,
		Status:      b.Status,
		ReviewReady: b.ReviewUnlocked,
	}
}

// Reserve handles POST /v1/bookings. The vehicle must belong to the caller.
// On admission failure the response carries the garage's currently offered
// cells for the requested date so the client can re-pick without another
// round trip.
func (h *BookingHandler) Reserve(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	if _, err := h.Vehicles.GetForCustomer(ctx, req.VehicleID, customerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrVehicleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "vehicle belongs to another customer"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	b, err := h.Coordinator.Reserve(ctx, engine.ReserveRequest{
		GarageID:   req.GarageID,
		CustomerID: customerID,
		VehicleID:  req.VehicleID,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
	})
	if err != nil {
		body := errorBody(err)
		if errors.Is(err, engine.ErrSlotUnavailable) || errors.Is(err, engine.ErrQuotaExhausted) {
			if slots, lerr := h.Calendar.ListOffered(ctx, req.GarageID, req.Date, req.Date); lerr == nil {
				cells := make([]slotCell, 0, len(slots))
				for _, s := range slots {
					cells = append(cells, slotCell{Date: s.SlotDate, TimeSlot: s.TimeSlot})
				}
				body["offered_slots"] = cells
			}
		}
		return c.JSON(admissionStatus(err), body)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": viewOf(b)})
}

type transitionReq struct {
	TargetStatus string `json:"target_status"`
}

// Transition handles POST /v1/bookings/:id/transition. A customer may cancel
// their own booking; a garage account may confirm, start, complete, cancel or
// no-show bookings at their garage. Everything else is forbidden before the
// engine is consulted.
func (h *BookingHandler) Transition(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	target := model.BookingStatus(strings.ToUpper(strings.TrimSpace(req.TargetStatus)))

	ctx := c.Request().Context()
	b, err := h.Lifecycle.Get(ctx, bookingID)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	if err := h.authorizeTransition(c, b, target, userID); err != nil {
		return err
	}

	updated, err := h.Lifecycle.Transition(ctx, bookingID, target)
	if err != nil {
		return c.JSON(admissionStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": viewOf(updated)})
}

func (h *BookingHandler) authorizeTransition(c echo.Context, b *model.Booking, target model.BookingStatus, userID uint64) error {
	role, _ := c.Get("role").(string)
	switch role {
	case model.RoleCustomer:
		if b.CustomerID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "not your booking")
		}
		if target != model.StatusCancelled {
			return echo.NewHTTPError(http.StatusForbidden, "customers may only cancel")
		}
	case model.RoleGarage:
		g, err := h.Garages.GetByOwner(c.Request().Context(), userID)
		if err != nil || g.ID != b.GarageID {
			return echo.NewHTTPError(http.StatusForbidden, "booking is at another garage")
		}
	default:
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

// ListMine handles GET /v1/bookings for customers.
func (h *BookingHandler) ListMine(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// ListGarage handles GET /v1/garage/bookings for garage accounts.
func (h *BookingHandler) ListGarage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	g, err := h.Garages.GetByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, engine.ErrGarageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no garage for caller"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items, err := h.Bookings.ListByGarage(ctx, g.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"garage_id": g.ID, "bookings": items})
}

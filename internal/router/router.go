package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/herlandro/bookamot-saas-sub003/internal/config"
	"github.com/herlandro/bookamot-saas-sub003/internal/handler"
	"github.com/herlandro/bookamot-saas-sub003/internal/middleware"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// Handlers collects every handler the API mounts. All fields must be non-nil.
type Handlers struct {
	Auth     *handler.AuthHandler
	Garage   *handler.GarageHandler
	Slots    *handler.SlotHandler
	Bookings *handler.BookingHandler
	Quota    *handler.QuotaHandler
	Vehicles *handler.VehicleHandler
	Admin    *handler.AdminHandler
}

// Register mounts all routes. Public browse endpoints get the Redis response
// cache and rate limiter; both degrade to pass-through when rdb is nil.
// Protected groups are split by role: customers reserve and cancel, garage
// accounts manage availability and progress bookings, admins run approval
// and quota top-ups.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rate := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public browse surface: garage directory, offered slots, quota board.
	pub := e.Group("/v1", rate)
	pub.GET("/garages", h.Garage.List, cache)
	pub.GET("/garages/:id/slots", h.Slots.Offered, cache)
	pub.GET("/garages/:id/quota", h.Quota.Status)

	// Session endpoints.
	auth := e.Group("/v1/auth", rate)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	jwt := middleware.JWTAuth(cfg.JWTSecret)

	me := e.Group("/v1", jwt)
	me.GET("/me", h.Auth.Me)

	// Customer surface.
	customer := e.Group("/v1", jwt, middleware.RequireRole(model.RoleCustomer))
	customer.POST("/bookings", h.Bookings.Reserve)
	customer.GET("/bookings", h.Bookings.ListMine)
	customer.POST("/vehicles", h.Vehicles.Create)
	customer.GET("/vehicles", h.Vehicles.List)

	// Lifecycle transitions: both roles reach the endpoint, per-booking
	// authorization happens in the handler.
	trans := e.Group("/v1", jwt, middleware.RequireRole(model.RoleCustomer, model.RoleGarage))
	trans.POST("/bookings/:id/transition", h.Bookings.Transition)

	// Garage surface.
	garage := e.Group("/v1/garage", jwt, middleware.RequireRole(model.RoleGarage))
	garage.GET("/bookings", h.Bookings.ListGarage)
	garage.POST("/slots", h.Slots.Publish)
	garage.POST("/slots/block", h.Slots.Block)
	garage.POST("/slots/unblock", h.Slots.Unblock)

	// Admin surface.
	admin := e.Group("/v1/admin", jwt, middleware.RequireRole(model.RoleAdmin))
	admin.POST("/garages/:id/quota", h.Admin.AddQuota)
	admin.POST("/garages/:id/approval", h.Admin.SetApproval)
}

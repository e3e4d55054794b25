package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/herlandro/bookamot-saas-sub003/internal/config"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
	"github.com/herlandro/bookamot-saas-sub003/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints. Registering with
// the GARAGE role also creates the garage profile, which starts PENDING and
// cannot accept bookings until an admin approves it.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Garages *repository.GarageRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, garages *repository.GarageRepo) *AuthHandler {
	if users == nil || garages == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users, Garages: garages}
}

type registerReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role"` // CUSTOMER | GARAGE
	GarageName string `json:"garage_name"`
	Postcode   string `json:"postcode"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Register creates an account and returns a signed access token. GARAGE
// registrations must carry garage_name and postcode so the profile can be
// created in the same request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleGarage {
		role = model.RoleCustomer
	}
	if role == model.RoleGarage {
		req.GarageName = strings.TrimSpace(req.GarageName)
		req.Postcode = strings.ToUpper(strings.TrimSpace(req.Postcode))
		if req.GarageName == "" || req.Postcode == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "garage_name and postcode required"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hashing failed"})
	}
	u := &model.User{Email: req.Email, PasswordHash: hash, Name: req.Name, Role: role}
	if err := h.Users.Create(ctx, u); err != nil {
		if err == repository.ErrDuplicateEmail {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if role == model.RoleGarage {
		g := &model.Garage{OwnerID: u.ID, Name: req.GarageName, Postcode: req.Postcode}
		if err := h.Garages.Create(ctx, g); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: role},
		Token:   tok.Token,
		Expires: tok.Exp,
	})
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Token:   tok.Token,
		Expires: tok.Exp,
	})
}

// Me returns the authenticated user's profile. Garage accounts also get
// their garage record so the dashboard can show approval state and quota.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := echo.Map{"user": userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}}
	if u.Role == model.RoleGarage {
		if g, err := h.Garages.GetByOwner(ctx, u.ID); err == nil {
			resp["garage"] = echo.Map{
				"id":              g.ID,
				"name":            g.Name,
				"postcode":        g.Postcode,
				"approval_status": g.ApprovalStatus,
				"purchased_quota": g.PurchasedQuota,
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trappazoid/booking-backend/internal/config"
	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/repository"
	"github.com/trappazoid/booking-backend/internal/utils"
)

// AuthHandler implements registration, login and the refresh-token
// lifecycle. Refresh tokens rotate on every use: the presented token is
// revoked and a new one issued in its place.
type AuthHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    config.Config
}

func NewAuthHandler(users *repository.UserRepo, tokens *repository.TokenRepo, cfg config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Cfg: cfg}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /v1/auth/register. Every self-registered account
// gets the USER role; admins are provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and a password of at least 8 characters are required"})
	}

	id, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": req.Email})
}

// Login handles POST /v1/auth/login and issues an access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		// Same response for unknown email and wrong password.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, u.ID, u.Role)
}

// Refresh handles POST /v1/auth/refresh. The presented refresh token is
// consumed: it is revoked and a fresh pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(c.Request().Context(), hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate token"})
	}
	if err := h.Tokens.RevokeByHash(c.Request().Context(), hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to rotate token"})
	}

	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	return h.issuePair(c, u.ID, u.Role)
}

// Logout handles POST /v1/auth/logout. Revoking an already-revoked or
// unknown token is not an error; logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}
	if err := h.Tokens.RevokeByHash(c.Request().Context(), utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to revoke token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me handles GET /v1/auth/me for the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	})
}

// issuePair mints an access token and a stored refresh token for the user.
func (h *AuthHandler) issuePair(c echo.Context, userID uint64, role string) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access.Token,
		"refresh_token": refresh.Raw,
		"expires_at":    access.Exp,
	})
}

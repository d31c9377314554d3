package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/middleware"
	"trackmymess/internal/services"
)

// AuthHandler handles login and the current-user endpoint.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and issues a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user": map[string]interface{}{
			"id":                  user.ID,
			"username":            user.Username,
			"role":                user.Role,
			"mess_id":             user.MessID,
			"subscription_expiry": user.SubscriptionExpiry,
		},
	})
}

// Me returns the fresh record of the authenticated caller.
// GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	user, err := h.auth.CurrentUser(p.ID)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"id":                  user.ID,
		"username":            user.Username,
		"name":                user.Name,
		"contact":             user.Contact,
		"email":               user.Email,
		"role":                user.Role,
		"mess_id":             user.MessID,
		"is_active":           user.IsActive,
		"subscription_expiry": user.SubscriptionExpiry,
	}
	if user.Mess != nil {
		out["mess_name"] = user.Mess.Name
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": out})
}

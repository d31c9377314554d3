package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// principalKey is the context key the authenticated caller is stored under.
const principalKey = "principal"

// RequireAuth returns a middleware that verifies the bearer token and
// attaches a Principal to the context. The user record is re-fetched on
// every request so role and mess scope always come from the live row;
// token claims identify the caller but never authorize them.
func RequireAuth(db *gorm.DB, jwtManager *auth.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrMissingToken.Error())
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			}

			var user models.User
			if err := db.First(&user, claims.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				}
				return err
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusForbidden, "account has been blocked")
			}

			c.Set(principalKey, auth.FromUser(&user))
			return next(c)
		}
	}
}

// RequireRoles returns a middleware that rejects callers whose live role
// is not in the allowed set.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrMissingToken.Error())
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
}

// GetPrincipal returns the authenticated caller, or nil outside protected
// routes.
func GetPrincipal(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}

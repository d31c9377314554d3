package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/middleware"
	"trackmymess/internal/services"
)

// alertCacheTTL bounds how stale a cached alert scan may be.
const alertCacheTTL = time.Minute

// NotificationHandler serves the derived alert feed.
type NotificationHandler struct {
	notifications *services.NotificationService
	cache         *services.RedisCache
}

func NewNotificationHandler(notifications *services.NotificationService, cache *services.RedisCache) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, cache: cache}
}

// List returns capacity, overdue and expiry alerts for the caller's scope.
// Results are cached briefly per scope when Redis is configured.
// GET /api/notifications
func (h *NotificationHandler) List(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	cacheKey := "notifications:admin"
	if !p.IsAdmin() {
		messID := uint(0)
		if p.MessID != nil {
			messID = *p.MessID
		}
		cacheKey = fmt.Sprintf("notifications:mess:%d", messID)
	}

	alerts, err := services.GetOrSet(h.cache, c.Request().Context(), cacheKey, alertCacheTTL,
		func() ([]services.Notification, error) {
			return h.notifications.Alerts(p)
		})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": alerts})
}

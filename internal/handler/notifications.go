package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/notify"
)

// NotificationHandler exposes the per-user transient notice slot fed by
// the event consumer.
type NotificationHandler struct {
	Center *notify.Center
}

func NewNotificationHandler(center *notify.Center) *NotificationHandler {
	if center == nil {
		panic("nil center passed to NewNotificationHandler")
	}
	return &NotificationHandler{Center: center}
}

// Current handles GET /v1/notifications/current.  204 means no notice
// is pending; a notice expires on its own shortly after being shown.
func (h *NotificationHandler) Current(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, ok := h.Center.Current(userID)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"kind": string(n.Kind),
		"text": n.Text,
	})
}

// Dismiss handles DELETE /v1/notifications/current.
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	h.Center.Dismiss(userID)
	return c.NoContent(http.StatusNoContent)
}

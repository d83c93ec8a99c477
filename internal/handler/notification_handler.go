package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/notification"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

// NotificationHandler upgrades authenticated clients onto the realtime hub.
type NotificationHandler struct {
	hub    *notification.Hub
	logger *zap.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(hub *notification.Hub, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{hub: hub, logger: logger}
}

// Stream godoc
// @Summary Open the realtime notification stream
// @Description Upgrades the connection to a WebSocket. Pass the access token
// @Description either as a Bearer header or a token query parameter.
// @Tags Notifications
// @Success 101
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, claims.UserID); err != nil {
		// Serve replies to the client itself when the upgrade fails.
		h.logger.Warn("websocket upgrade failed",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
	}
}

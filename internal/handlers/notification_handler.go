package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	limit, offset := Pagination(c)
	notifications, total, err := h.notificationService.ListForUser(
		c.Request.Context(),
		auth.CurrentUserID(c),
		auth.CurrentUserRole(c),
		limit, offset,
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: notifications, Total: total})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification marked read"})
}

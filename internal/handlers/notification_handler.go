package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"irisai/internal/services"
)

type NotificationHandler struct {
	Service *services.NotificationService
	logger  *zap.Logger
}

func NewNotificationHandler(service *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Service: service, logger: logger}
}

// @Summary      List my notifications
// @Tags         Notifications
// @Produce      json
// @Param        unread_only  query  bool  false  "Only unread"
// @Param        page         query  int   false  "Page (default 1)"
// @Param        size         query  int   false  "Page size (default 50)"
// @Success      200  {array}  models.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))
	page, size := getPaging(c)

	items, err := h.Service.List(c.Request.Context(), userID, unreadOnly, page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Mark notification read
// @Tags         Notifications
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	if err := h.Service.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

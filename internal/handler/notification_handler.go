package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

type NotificationHandler struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationHandler(repo repository.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// NotificationResponse представляет ответ с данными уведомления
type NotificationResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	RelatedID *string `json:"related_id,omitempty"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func toNotificationResponse(notification *model.Notification) NotificationResponse {
	response := NotificationResponse{
		ID:        notification.ID.String(),
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      notification.Type,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt.Format(time.RFC3339),
	}
	if notification.RelatedID != nil {
		relatedID := notification.RelatedID.String()
		response.RelatedID = &relatedID
	}
	return response
}

// List возвращает уведомления текущего пользователя
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notifications, err := h.repo.GetByUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve notifications")
		return
	}

	response := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		response[i] = toNotificationResponse(&notifications[i])
	}
	c.JSON(http.StatusOK, response)
}

// MarkRead помечает уведомление текущего пользователя прочитанным
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid notification ID format")
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), notificationID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "notification_not_found", "Notification not found")
		} else {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to mark notification as read")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// Delete удаляет уведомление текущего пользователя
func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid notification ID format")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), notificationID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "notification_not_found", "Notification not found")
		} else {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to delete notification")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

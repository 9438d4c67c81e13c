package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/middleware"
	"taskhub/internal/workflow"
)

// respondError отдает машиночитаемый код ошибки и человекочитаемое сообщение
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

// currentActor извлекает аутентифицированного пользователя из контекста.
// При отсутствии или порче данных сам пишет ответ и возвращает ok=false.
func currentActor(c *gin.Context) (workflow.Actor, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return workflow.Actor{}, false
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return workflow.Actor{}, false
	}

	role, _ := c.Get(middleware.UserRoleKey)
	roleStr, _ := role.(string)

	return workflow.Actor{ID: authenticatedUserID, Role: roleStr}, true
}

package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

type ServiceRequestHandler struct {
	repo     repository.ServiceRequestRepositoryInterface
	userRepo repository.UserRepositoryInterface
	notifier notify.Notifier
	logger   *log.Logger
}

func NewServiceRequestHandler(
	repo repository.ServiceRequestRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifier notify.Notifier,
	logger *log.Logger,
) *ServiceRequestHandler {
	return &ServiceRequestHandler{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// ServiceRequestCreateRequest представляет новую сервисную заявку
type ServiceRequestCreateRequest struct {
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description"`
}

// ServiceRequestUpdateRequest представляет решение по заявке
type ServiceRequestUpdateRequest struct {
	Status      string `json:"status" binding:"required,oneof=open in_review resolved"`
	ManagerNote string `json:"manager_note"`
}

// ServiceRequestResponse представляет ответ с данными заявки
type ServiceRequestResponse struct {
	ID          string `json:"id"`
	RequestedBy string `json:"requested_by"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ManagerNote string `json:"manager_note,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toServiceRequestResponse(request *model.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:          request.ID.String(),
		RequestedBy: request.RequestedBy.String(),
		Subject:     request.Subject,
		Description: request.Description,
		Status:      request.Status,
		ManagerNote: request.ManagerNote,
		CreatedAt:   request.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   request.UpdatedAt.Format(time.RFC3339),
	}
}

// Create регистрирует сервисную заявку сотрудника и оповещает администраторов
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ServiceRequestCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	request := &model.ServiceRequest{
		RequestedBy: actor.ID,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      model.ServiceRequestOpen,
	}
	if err := h.repo.Create(c.Request.Context(), request); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create service request")
		return
	}

	h.notifyAdmins(c, request)

	c.JSON(http.StatusCreated, toServiceRequestResponse(request))
}

func (h *ServiceRequestHandler) notifyAdmins(c *gin.Context, request *model.ServiceRequest) {
	admins, err := h.userRepo.GetByRole(c.Request.Context(), model.RoleAdmin)
	if err != nil {
		h.logger.Printf("service request %s: failed to load admins: %v", request.ID, err)
		return
	}
	for _, admin := range admins {
		_, err := h.notifier.Notify(c.Request.Context(), notify.Recipient{
			UserID:   admin.ID,
			UserType: model.RoleAdmin,
		}, notify.Message{
			Title:     "Новая сервисная заявка",
			Body:      "Поступила заявка: " + request.Subject,
			Type:      model.NotificationServiceRequestCreated,
			RelatedID: &request.ID,
		})
		if err != nil {
			h.logger.Printf("service request notification for admin %s failed: %v", admin.ID, err)
		}
	}
}

// List возвращает заявки: сотрудник видит свои, менеджер и админ - все
func (h *ServiceRequestHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var (
		requests []model.ServiceRequest
		err      error
	)
	if actor.Role == model.RoleEmployee {
		requests, err = h.repo.GetByRequester(c.Request.Context(), actor.ID)
	} else {
		requests, err = h.repo.GetAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve service requests")
		return
	}

	response := make([]ServiceRequestResponse, len(requests))
	for i := range requests {
		response[i] = toServiceRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, response)
}

// Update меняет статус заявки и уведомляет ее автора
func (h *ServiceRequestHandler) Update(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid service request ID format")
		return
	}

	var req ServiceRequestUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	request, err := h.repo.GetByID(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceRequestNotFound) {
			respondError(c, http.StatusNotFound, "service_request_not_found", "Service request not found")
		} else {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve service request")
		}
		return
	}

	request.Status = req.Status
	request.ManagerNote = req.ManagerNote
	if err := h.repo.Update(c.Request.Context(), request); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to update service request")
		return
	}

	_, err = h.notifier.Notify(c.Request.Context(), notify.Recipient{
		UserID:   request.RequestedBy,
		UserType: model.RoleEmployee,
	}, notify.Message{
		Title:     "Обновление по заявке",
		Body:      "Статус вашей заявки '" + request.Subject + "' изменен на " + request.Status,
		Type:      model.NotificationServiceRequestUpdated,
		RelatedID: &request.ID,
	})
	if err != nil {
		h.logger.Printf("service request update notification for user %s failed: %v", request.RequestedBy, err)
	}

	c.JSON(http.StatusOK, toServiceRequestResponse(request))
}

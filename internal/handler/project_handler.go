package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

type ProjectHandler struct {
	projectRepo repository.ProjectRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	notifier    notify.Notifier
	logger      *log.Logger
}

func NewProjectHandler(
	projectRepo repository.ProjectRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifier notify.Notifier,
	logger *log.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// ProjectRequest представляет запрос на создание или обновление проекта
type ProjectRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

// ProjectStatusRequest представляет запрос на смену статуса проекта
type ProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Ongoing Completed"`
}

// ProjectResponse представляет ответ с данными проекта
type ProjectResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedBy   string         `json:"created_by"`
	Status      string         `json:"status"`
	Progress    int            `json:"progress"`
	Employees   []UserResponse `json:"assigned_employees"`
	CreatedAt   string         `json:"created_at"`
}

func toProjectResponse(project *model.Project) ProjectResponse {
	employees := make([]UserResponse, len(project.AssignedEmployees))
	for i, employee := range project.AssignedEmployees {
		employees[i] = UserResponse{
			ID:    employee.ID.String(),
			Email: employee.Email,
			Name:  employee.Name,
			Role:  employee.Role,
		}
	}
	return ProjectResponse{
		ID:          project.ID.String(),
		Name:        project.Name,
		Description: project.Description,
		CreatedBy:   project.CreatedBy.String(),
		Status:      project.Status,
		Progress:    project.Progress,
		Employees:   employees,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
	}
}

// loadEmployees разворачивает список идентификаторов в пользователей
func (h *ProjectHandler) loadEmployees(c *gin.Context, ids []string) ([]model.User, bool) {
	employees := make([]model.User, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "Invalid employee ID format")
			return nil, false
		}
		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve employee")
			return nil, false
		}
		if user == nil {
			respondError(c, http.StatusBadRequest, "employee_not_found", "Employee not found: "+idStr)
			return nil, false
		}
		employees = append(employees, *user)
	}
	return employees, true
}

func (h *ProjectHandler) notifyAssigned(c *gin.Context, project *model.Project, employees []model.User) {
	for _, employee := range employees {
		_, err := h.notifier.Notify(c.Request.Context(), notify.Recipient{
			UserID:   employee.ID,
			UserType: model.RoleEmployee,
		}, notify.Message{
			Title:     "Назначение в проект",
			Body:      "Вы назначены в проект '" + project.Name + "'",
			Type:      model.NotificationProjectAssigned,
			RelatedID: &project.ID,
		})
		if err != nil {
			h.logger.Printf("project assignment notification for user %s failed: %v", employee.ID, err)
		}
	}
}

// Create создает новый проект и назначает в него сотрудников
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	employees, ok := h.loadEmployees(c, req.EmployeeIDs)
	if !ok {
		return
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
		Status:      model.ProjectStatusPending,
	}
	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create project")
		return
	}

	if len(employees) > 0 {
		if err := h.projectRepo.ReplaceEmployees(c.Request.Context(), project, employees); err != nil {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to assign employees")
			return
		}
		project.AssignedEmployees = employees
		h.notifyAssigned(c, project, employees)
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// List возвращает проекты по роли: сотрудник - где состоит, менеджер - свои,
// админ - все
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var (
		projects []model.Project
		err      error
	)
	switch actor.Role {
	case model.RoleEmployee:
		projects, err = h.projectRepo.GetByMember(c.Request.Context(), actor.ID)
	case model.RoleManager:
		projects, err = h.projectRepo.GetByCreator(c.Request.Context(), actor.ID)
	default:
		projects, err = h.projectRepo.GetAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve projects")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, response)
}

// Get возвращает проект, доступный текущему пользователю
func (h *ProjectHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve project")
		return
	}
	if project == nil {
		respondError(c, http.StatusNotFound, "project_not_found", "Project not found")
		return
	}

	if actor.Role != model.RoleAdmin && project.CreatedBy != actor.ID {
		member, err := h.projectRepo.IsMember(c.Request.Context(), projectID, actor.ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to check project access")
			return
		}
		if !member {
			respondError(c, http.StatusForbidden, "forbidden", "You don't have access to this project")
			return
		}
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Update обновляет название, описание и состав проекта
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve project")
		return
	}
	if project == nil {
		respondError(c, http.StatusNotFound, "project_not_found", "Project not found")
		return
	}
	if actor.Role != model.RoleAdmin && project.CreatedBy != actor.ID {
		respondError(c, http.StatusForbidden, "not_owner", "You can only update your own projects")
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	employees, ok := h.loadEmployees(c, req.EmployeeIDs)
	if !ok {
		return
	}

	// Уведомляем только тех, кого раньше в проекте не было
	existing := make(map[uuid.UUID]bool, len(project.AssignedEmployees))
	for _, employee := range project.AssignedEmployees {
		existing[employee.ID] = true
	}
	var added []model.User
	for _, employee := range employees {
		if !existing[employee.ID] {
			added = append(added, employee)
		}
	}

	project.Name = req.Name
	project.Description = req.Description
	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to update project")
		return
	}
	if err := h.projectRepo.ReplaceEmployees(c.Request.Context(), project, employees); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to assign employees")
		return
	}
	project.AssignedEmployees = employees

	h.notifyAssigned(c, project, added)

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// UpdateStatus вручную меняет статус проекта; завершение выставляет 100%
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve project")
		return
	}
	if project == nil {
		respondError(c, http.StatusNotFound, "project_not_found", "Project not found")
		return
	}
	if actor.Role != model.RoleAdmin && project.CreatedBy != actor.ID {
		respondError(c, http.StatusForbidden, "not_owner", "You can only update your own projects")
		return
	}

	var req ProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	project.Status = req.Status
	if req.Status == model.ProjectStatusCompleted {
		project.Progress = 100
	}
	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to update project status")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Delete удаляет проект
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid project ID format")
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve project")
		return
	}
	if project == nil {
		respondError(c, http.StatusNotFound, "project_not_found", "Project not found")
		return
	}
	if actor.Role != model.RoleAdmin && project.CreatedBy != actor.ID {
		respondError(c, http.StatusForbidden, "not_owner", "You can only delete your own projects")
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), projectID); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to delete project")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

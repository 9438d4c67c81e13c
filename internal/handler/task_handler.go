package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/workflow"
)

type TaskHandler struct {
	engine   workflow.EngineInterface
	taskRepo repository.TaskRepositoryInterface
}

func NewTaskHandler(engine workflow.EngineInterface, taskRepo repository.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{engine: engine, taskRepo: taskRepo}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	TaskName     string     `json:"task_name" binding:"required"`
	Description  string     `json:"description"`
	ProjectID    string     `json:"project_id" binding:"required,uuid"`
	AssignedTo   string     `json:"assigned_to" binding:"required,uuid"`
	Deadline     *time.Time `json:"deadline"`
	DeadlineTime string     `json:"deadline_time"`
	Priority     string     `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// ProgressRequest представляет отчет сотрудника о ходе работы
type ProgressRequest struct {
	Photos    []string `json:"photos"`
	VoiceNote string   `json:"voice_note"`
	Audio     string   `json:"audio"`
	Videos    []string `json:"videos"`
	Notes     string   `json:"notes"`
}

// ApprovalRequest представляет решение менеджера по отчету
type ApprovalRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID              string                 `json:"id"`
	TaskName        string                 `json:"task_name"`
	Description     string                 `json:"description"`
	ProjectID       string                 `json:"project_id"`
	AssignedTo      string                 `json:"assigned_to"`
	CreatedBy       string                 `json:"created_by"`
	Status          string                 `json:"status"`
	Deadline        *string                `json:"deadline,omitempty"`
	DeadlineTime    string                 `json:"deadline_time,omitempty"`
	Priority        string                 `json:"priority,omitempty"`
	PendingApproval bool                   `json:"pending_approval"`
	ProgressUpdates []model.ProgressUpdate `json:"progress_updates"`
	CreatedAt       string                 `json:"created_at"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	response := TaskResponse{
		ID:              task.ID.String(),
		TaskName:        task.TaskName,
		Description:     task.Description,
		ProjectID:       task.ProjectID.String(),
		AssignedTo:      task.AssignedTo.String(),
		CreatedBy:       task.CreatedBy.String(),
		Status:          task.Status,
		DeadlineTime:    task.DeadlineTime,
		Priority:        task.Priority,
		PendingApproval: task.PendingApproval,
		ProgressUpdates: task.ProgressUpdates,
		CreatedAt:       task.CreatedAt.Format(time.RFC3339),
	}
	if response.ProgressUpdates == nil {
		response.ProgressUpdates = []model.ProgressUpdate{}
	}
	if task.Deadline != nil {
		deadline := task.Deadline.Format(time.RFC3339)
		response.Deadline = &deadline
	}
	return response
}

// Create создает новую задачу в проекте
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid project ID format")
		return
	}
	assignedTo, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid assignee ID format")
		return
	}

	task, err := h.engine.CreateTask(c.Request.Context(), actor, workflow.CreateTaskInput{
		TaskName:     req.TaskName,
		Description:  req.Description,
		ProjectID:    projectID,
		AssignedTo:   assignedTo,
		Deadline:     req.Deadline,
		DeadlineTime: req.DeadlineTime,
		Priority:     req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			respondError(c, http.StatusNotFound, "project_not_found", "Project not found")
		case errors.Is(err, workflow.ErrNotOwner):
			respondError(c, http.StatusForbidden, "not_owner", "You can only create tasks in your own projects")
		case errors.Is(err, workflow.ErrNotProjectMember):
			respondError(c, http.StatusBadRequest, "not_project_member", "Assignee is not a member of the project")
		default:
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create task")
		}
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List возвращает задачи в зависимости от роли: сотрудник видит назначенные
// ему, менеджер - созданные им, админ - все
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var (
		tasks []model.Task
		err   error
	)
	switch actor.Role {
	case model.RoleEmployee:
		tasks, err = h.taskRepo.GetByAssignee(c.Request.Context(), actor.ID)
	case model.RoleManager:
		tasks, err = h.taskRepo.GetByCreator(c.Request.Context(), actor.ID)
	default:
		tasks, err = h.taskRepo.GetAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve tasks")
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID возвращает задачу, если она доступна текущему пользователю
func (h *TaskHandler) GetByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid task ID format")
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "task_not_found", "Task not found")
		} else {
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to retrieve task")
		}
		return
	}

	if actor.Role != model.RoleAdmin && task.AssignedTo != actor.ID && task.CreatedBy != actor.ID {
		respondError(c, http.StatusForbidden, "forbidden", "You don't have access to this task")
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete удаляет задачу ее создателя
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid task ID format")
		return
	}

	if err := h.engine.DeleteTask(c.Request.Context(), actor, taskID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "task_not_found", "Task not found")
		case errors.Is(err, workflow.ErrNotOwner):
			respondError(c, http.StatusForbidden, "not_owner", "You can only delete your own tasks")
		default:
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to delete task")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SubmitProgress принимает отчет сотрудника по задаче
func (h *TaskHandler) SubmitProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid task ID format")
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	task, err := h.engine.Submit(c.Request.Context(), actor, taskID, workflow.Evidence{
		Photos:    req.Photos,
		VoiceNote: req.VoiceNote,
		Audio:     req.Audio,
		Videos:    req.Videos,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "task_not_found", "Task not found")
		case errors.Is(err, workflow.ErrNotAssigned):
			respondError(c, http.StatusForbidden, "not_assigned", "Task is not assigned to you")
		case errors.Is(err, repository.ErrSubmissionPending):
			respondError(c, http.StatusConflict, "submission_pending", "Previous progress update is still awaiting approval")
		default:
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to submit progress")
		}
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Approve фиксирует решение менеджера по последнему отчету задачи
func (h *TaskHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid task ID format")
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	task, err := h.engine.Decide(c.Request.Context(), actor, taskID, workflow.Decision{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "task_not_found", "Task not found")
		case errors.Is(err, workflow.ErrNotOwner):
			respondError(c, http.StatusForbidden, "not_owner", "You can only review tasks you created")
		case errors.Is(err, repository.ErrNoPendingSubmission):
			respondError(c, http.StatusBadRequest, "no_pending_submission", "Task has no progress update awaiting approval")
		case errors.Is(err, workflow.ErrInvalidDecision):
			respondError(c, http.StatusBadRequest, "invalid_decision", "Decision must be approved or rejected")
		default:
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to review progress")
		}
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/handler"
	"taskhub/internal/middleware"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок движка задач
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) CreateTask(ctx context.Context, actor workflow.Actor, input workflow.CreateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, actor, input)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockEngine) Submit(ctx context.Context, actor workflow.Actor, taskID uuid.UUID, evidence workflow.Evidence) (*model.Task, error) {
	args := m.Called(ctx, actor, taskID, evidence)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockEngine) Decide(ctx context.Context, actor workflow.Actor, taskID uuid.UUID, decision workflow.Decision) (*model.Task, error) {
	args := m.Called(ctx, actor, taskID, decision)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockEngine) DeleteTask(ctx context.Context, actor workflow.Actor, taskID uuid.UUID) error {
	args := m.Called(ctx, actor, taskID)
	return args.Error(0)
}

// Мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByAssignee(ctx context.Context, employeeID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByCreator(ctx context.Context, managerID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, managerID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) AppendProgress(ctx context.Context, taskID uuid.UUID, update model.ProgressUpdate) (*model.Task, error) {
	args := m.Called(ctx, taskID, update)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) FinalizeProgress(ctx context.Context, taskID uuid.UUID, status, note string, decidedAt time.Time) (*model.Task, error) {
	args := m.Called(ctx, taskID, status, note, decidedAt)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// stubAuth подменяет JWT-мидлварь, кладя пользователя прямо в контекст
func stubAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	}
}

func setupTaskRouter(userID uuid.UUID, role string) (*gin.Engine, *MockEngine, *MockTaskRepository) {
	gin.SetMode(gin.TestMode)
	mockEngine := new(MockEngine)
	mockRepo := new(MockTaskRepository)
	taskHandler := handler.NewTaskHandler(mockEngine, mockRepo)

	r := gin.New()
	r.Use(stubAuth(userID, role))
	r.GET("/tasks", taskHandler.List)
	r.GET("/tasks/:id", taskHandler.GetByID)
	r.POST("/tasks", taskHandler.Create)
	r.DELETE("/tasks/:id", taskHandler.Delete)
	r.POST("/tasks/:id/progress", taskHandler.SubmitProgress)
	r.PUT("/tasks/:id/approve", taskHandler.Approve)

	return r, mockEngine, mockRepo
}

func TestSubmitProgress_Success(t *testing.T) {
	employeeID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(employeeID, model.RoleEmployee)

	taskID := uuid.New()
	submitted := &model.Task{
		ID:              taskID,
		TaskName:        "Install fixtures",
		ProjectID:       uuid.New(),
		AssignedTo:      employeeID,
		CreatedBy:       uuid.New(),
		Status:          model.TaskStatusInProgress,
		PendingApproval: true,
		ProgressUpdates: model.ProgressUpdates{{
			Notes:          "half done",
			ApprovalStatus: model.ApprovalPending,
		}},
	}

	mockEngine.On("Submit", mock.Anything,
		workflow.Actor{ID: employeeID, Role: model.RoleEmployee},
		taskID,
		workflow.Evidence{Notes: "half done", Photos: []string{"p1.jpg"}}).
		Return(submitted, nil)

	body, _ := json.Marshal(handler.ProgressRequest{Notes: "half done", Photos: []string{"p1.jpg"}})
	req, _ := http.NewRequest("POST", "/tasks/"+taskID.String()+"/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.TaskResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.PendingApproval)
	assert.Len(t, response.ProgressUpdates, 1)

	mockEngine.AssertExpectations(t)
}

func TestSubmitProgress_Conflict(t *testing.T) {
	employeeID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(employeeID, model.RoleEmployee)

	taskID := uuid.New()
	mockEngine.On("Submit", mock.Anything, mock.Anything, taskID, mock.Anything).
		Return(nil, repository.ErrSubmissionPending)

	body, _ := json.Marshal(handler.ProgressRequest{Notes: "again"})
	req, _ := http.NewRequest("POST", "/tasks/"+taskID.String()+"/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)

	var response map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.Equal(t, "submission_pending", response["error"])
}

func TestSubmitProgress_NotAssigned(t *testing.T) {
	employeeID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(employeeID, model.RoleEmployee)

	taskID := uuid.New()
	mockEngine.On("Submit", mock.Anything, mock.Anything, taskID, mock.Anything).
		Return(nil, workflow.ErrNotAssigned)

	body, _ := json.Marshal(handler.ProgressRequest{Notes: "not mine"})
	req, _ := http.NewRequest("POST", "/tasks/"+taskID.String()+"/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)

	var response map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.Equal(t, "not_assigned", response["error"])
}

func TestApprove_Success(t *testing.T) {
	managerID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(managerID, model.RoleManager)

	taskID := uuid.New()
	approved := &model.Task{
		ID:         taskID,
		TaskName:   "Install fixtures",
		ProjectID:  uuid.New(),
		AssignedTo: uuid.New(),
		CreatedBy:  managerID,
		Status:     model.TaskStatusCompleted,
	}

	mockEngine.On("Decide", mock.Anything,
		workflow.Actor{ID: managerID, Role: model.RoleManager},
		taskID,
		workflow.Decision{Status: model.ApprovalApproved, Note: "good"}).
		Return(approved, nil)

	body, _ := json.Marshal(handler.ApprovalRequest{Status: "approved", Note: "good"})
	req, _ := http.NewRequest("PUT", "/tasks/"+taskID.String()+"/approve", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.TaskResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, response.Status)

	mockEngine.AssertExpectations(t)
}

func TestApprove_NoPendingSubmission(t *testing.T) {
	managerID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(managerID, model.RoleManager)

	taskID := uuid.New()
	mockEngine.On("Decide", mock.Anything, mock.Anything, taskID, mock.Anything).
		Return(nil, repository.ErrNoPendingSubmission)

	body, _ := json.Marshal(handler.ApprovalRequest{Status: "approved"})
	req, _ := http.NewRequest("PUT", "/tasks/"+taskID.String()+"/approve", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.Equal(t, "no_pending_submission", response["error"])
}

func TestApprove_InvalidStatusRejectedByValidation(t *testing.T) {
	managerID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(managerID, model.RoleManager)

	// Статус вне approved/rejected не проходит биндинг
	body, _ := json.Marshal(map[string]string{"status": "maybe"})
	req, _ := http.NewRequest("PUT", "/tasks/"+uuid.New().String()+"/approve", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockEngine.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_NotOwner(t *testing.T) {
	managerID := uuid.New()
	router, mockEngine, _ := setupTaskRouter(managerID, model.RoleManager)

	taskID := uuid.New()
	mockEngine.On("Decide", mock.Anything, mock.Anything, taskID, mock.Anything).
		Return(nil, workflow.ErrNotOwner)

	body, _ := json.Marshal(handler.ApprovalRequest{Status: "rejected", Note: "nope"})
	req, _ := http.NewRequest("PUT", "/tasks/"+taskID.String()+"/approve", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestTaskList_EmployeeSeesAssigned(t *testing.T) {
	employeeID := uuid.New()
	router, _, mockRepo := setupTaskRouter(employeeID, model.RoleEmployee)

	mockRepo.On("GetByAssignee", mock.Anything, employeeID).Return([]model.Task{
		{ID: uuid.New(), TaskName: "Mine", AssignedTo: employeeID},
	}, nil)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var response []handler.TaskResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, "Mine", response[0].TaskName)

	mockRepo.AssertExpectations(t)
}

func TestTaskGetByID_ForbiddenForOutsider(t *testing.T) {
	outsiderID := uuid.New()
	router, _, mockRepo := setupTaskRouter(outsiderID, model.RoleEmployee)

	taskID := uuid.New()
	task := &model.Task{
		ID:         taskID,
		AssignedTo: uuid.New(),
		CreatedBy:  uuid.New(),
	}
	mockRepo.On("GetByID", mock.Anything, taskID).Return(task, nil)

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestTaskGetByID_NotFound(t *testing.T) {
	router, _, mockRepo := setupTaskRouter(uuid.New(), model.RoleAdmin)

	taskID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, taskID).Return(nil, repository.ErrTaskNotFound)

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)

	var response map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &response)
	assert.Equal(t, "task_not_found", response["error"])
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

var (
	// ErrNotAssigned - отчет пытается отправить не исполнитель задачи
	ErrNotAssigned = errors.New("task is not assigned to this user")
	// ErrNotOwner - задачей распоряжается не ее создатель
	ErrNotOwner = errors.New("task does not belong to this manager")
	// ErrNotProjectMember - исполнитель не входит в состав проекта
	ErrNotProjectMember = errors.New("assignee is not a member of the project")
	// ErrInvalidDecision - решение не является approved/rejected
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)

// Actor is the authenticated user performing a workflow operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) isAdmin() bool {
	return a.Role == model.RoleAdmin
}

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	TaskName     string
	Description  string
	ProjectID    uuid.UUID
	AssignedTo   uuid.UUID
	Deadline     *time.Time
	DeadlineTime string
	Priority     string
}

// Evidence is the material an employee attaches to a progress report.
type Evidence struct {
	Photos    []string
	VoiceNote string
	Audio     string
	Videos    []string
	Notes     string
}

// Decision is the manager's verdict on a pending progress report.
type Decision struct {
	Status string
	Note   string
}

// EngineInterface defines the task workflow operations
type EngineInterface interface {
	CreateTask(ctx context.Context, actor Actor, input CreateTaskInput) (*model.Task, error)
	Submit(ctx context.Context, actor Actor, taskID uuid.UUID, evidence Evidence) (*model.Task, error)
	Decide(ctx context.Context, actor Actor, taskID uuid.UUID, decision Decision) (*model.Task, error)
	DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error
}

// Engine orchestrates the submit/approve cycle: task mutations go through the
// repositories, project progress is recomputed from task counts, and every
// state change fans out a notification.
type Engine struct {
	tasks    repository.TaskRepositoryInterface
	projects repository.ProjectRepositoryInterface
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time
}

var _ EngineInterface = (*Engine)(nil)

func NewEngine(
	tasks repository.TaskRepositoryInterface,
	projects repository.ProjectRepositoryInterface,
	notifier notify.Notifier,
	logger *log.Logger,
) *Engine {
	return &Engine{
		tasks:    tasks,
		projects: projects,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTask создает задачу в проекте менеджера и уведомляет исполнителя
func (e *Engine) CreateTask(ctx context.Context, actor Actor, input CreateTaskInput) (*model.Task, error) {
	project, err := e.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, repository.ErrProjectNotFound
	}
	if !actor.isAdmin() && project.CreatedBy != actor.ID {
		return nil, ErrNotOwner
	}

	member, err := e.projects.IsMember(ctx, input.ProjectID, input.AssignedTo)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotProjectMember
	}

	task := &model.Task{
		TaskName:     input.TaskName,
		Description:  input.Description,
		ProjectID:    input.ProjectID,
		AssignedTo:   input.AssignedTo,
		CreatedBy:    actor.ID,
		Status:       model.TaskStatusPending,
		Deadline:     input.Deadline,
		DeadlineTime: input.DeadlineTime,
		Priority:     input.Priority,
	}
	if err := e.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	e.recomputeProject(ctx, task.ProjectID)

	e.announce(ctx, task.AssignedTo, model.RoleEmployee, notify.Message{
		Title:     "Новая задача",
		Body:      fmt.Sprintf("Вам назначена задача '%s'", task.TaskName),
		Type:      model.NotificationTaskAssigned,
		RelatedID: &task.ID,
	})

	return task, nil
}

// Submit записывает отчет сотрудника и переводит задачу в ожидание проверки
func (e *Engine) Submit(ctx context.Context, actor Actor, taskID uuid.UUID, evidence Evidence) (*model.Task, error) {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.isAdmin() && task.AssignedTo != actor.ID {
		return nil, ErrNotAssigned
	}

	update := model.ProgressUpdate{
		Photos:         evidence.Photos,
		VoiceNote:      evidence.VoiceNote,
		Audio:          evidence.Audio,
		Videos:         evidence.Videos,
		Notes:          evidence.Notes,
		SubmittedAt:    e.now(),
		ApprovalStatus: model.ApprovalPending,
	}

	task, err = e.tasks.AppendProgress(ctx, taskID, update)
	if err != nil {
		return nil, err
	}

	e.recomputeProject(ctx, task.ProjectID)

	e.announce(ctx, task.CreatedBy, model.RoleManager, notify.Message{
		Title:     "Отчет о ходе работы",
		Body:      fmt.Sprintf("По задаче '%s' отправлен отчет на проверку", task.TaskName),
		Type:      model.NotificationProgressSubmitted,
		RelatedID: &task.ID,
	})

	return task, nil
}

// Decide фиксирует решение менеджера по pending-отчету.
//
// Само решение атомарно внутри FinalizeProgress; пересчет проекта и
// уведомление выполняются после и при сбое только логируются, решение
// уже зафиксировано.
func (e *Engine) Decide(ctx context.Context, actor Actor, taskID uuid.UUID, decision Decision) (*model.Task, error) {
	if decision.Status != model.ApprovalApproved && decision.Status != model.ApprovalRejected {
		return nil, ErrInvalidDecision
	}

	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.isAdmin() && task.CreatedBy != actor.ID {
		return nil, ErrNotOwner
	}

	task, err = e.tasks.FinalizeProgress(ctx, taskID, decision.Status, decision.Note, e.now())
	if err != nil {
		return nil, err
	}

	e.recomputeProject(ctx, task.ProjectID)

	msg := notify.Message{
		Type:      model.NotificationProgressApproved,
		Title:     "Отчет принят",
		Body:      fmt.Sprintf("Отчет по задаче '%s' принят", task.TaskName),
		RelatedID: &task.ID,
	}
	if decision.Status == model.ApprovalRejected {
		msg.Type = model.NotificationProgressRejected
		msg.Title = "Отчет отклонен"
		msg.Body = fmt.Sprintf("Отчет по задаче '%s' отклонен", task.TaskName)
		if decision.Note != "" {
			msg.Body += ": " + decision.Note
		}
	}
	e.announce(ctx, task.AssignedTo, model.RoleEmployee, msg)

	return task, nil
}

// DeleteTask удаляет задачу и пересчитывает прогресс проекта
func (e *Engine) DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !actor.isAdmin() && task.CreatedBy != actor.ID {
		return ErrNotOwner
	}

	if err := e.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	e.recomputeProject(ctx, task.ProjectID)
	return nil
}

// recomputeProject пересчитывает процент готовности проекта по числу
// завершенных задач. Процент округляется до ближайшего целого.
func (e *Engine) recomputeProject(ctx context.Context, projectID uuid.UUID) {
	total, completed, err := e.tasks.CountByProject(ctx, projectID)
	if err != nil {
		e.logger.Printf("project %s progress recompute failed: %v", projectID, err)
		return
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(completed) * 100 / float64(total)))
	}

	status := model.ProjectStatusPending
	switch {
	case total > 0 && completed == total:
		status = model.ProjectStatusCompleted
	case completed > 0:
		status = model.ProjectStatusOngoing
	}

	if err := e.projects.UpdateProgress(ctx, projectID, progress, status); err != nil {
		e.logger.Printf("project %s progress update failed: %v", projectID, err)
	}
}

func (e *Engine) announce(ctx context.Context, userID uuid.UUID, userType string, msg notify.Message) {
	_, err := e.notifier.Notify(ctx, notify.Recipient{UserID: userID, UserType: userType}, msg)
	if err != nil {
		e.logger.Printf("notification %q for user %s failed: %v", msg.Type, userID, err)
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetByAssignee(ctx context.Context, employeeID uuid.UUID) ([]model.Task, error)
	GetByCreator(ctx context.Context, managerID uuid.UUID) ([]model.Task, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	GetAll(ctx context.Context) ([]model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendProgress(ctx context.Context, taskID uuid.UUID, update model.ProgressUpdate) (*model.Task, error)
	FinalizeProgress(ctx context.Context, taskID uuid.UUID, status, note string, decidedAt time.Time) (*model.Task, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (total, completed int64, err error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetByAssignee retrieves all tasks assigned to a specific employee
func (r *TaskRepository) GetByAssignee(ctx context.Context, employeeID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", employeeID).
		Order("created_at").
		Find(&tasks).Error
	return tasks, err
}

// GetByCreator retrieves all tasks created by a specific manager
func (r *TaskRepository) GetByCreator(ctx context.Context, managerID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("created_by = ?", managerID).
		Order("created_at").
		Find(&tasks).Error
	return tasks, err
}

// GetByProjectID retrieves all tasks belonging to a project
func (r *TaskRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&tasks).Error
	return tasks, err
}

// GetAll retrieves every task (admin listing)
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Order("created_at").Find(&tasks).Error
	return tasks, err
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AppendProgress appends a progress update to the task's embedded history
// and flips the task into the awaiting-approval state.
//
// Инвариант "не более одного pending-отчета" держится на блокировке строки:
// параллельные отправки по одной задаче сериализуются, проигравшая получает
// ErrSubmissionPending.
func (r *TaskRepository) AppendProgress(ctx context.Context, taskID uuid.UUID, update model.ProgressUpdate) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if task.PendingApproval {
			return ErrSubmissionPending
		}

		task.ProgressUpdates = append(task.ProgressUpdates, update)
		task.Status = model.TaskStatusInProgress
		task.PendingApproval = true
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FinalizeProgress records the manager's decision on the pending progress
// update and recomputes the task status.
func (r *TaskRepository) FinalizeProgress(ctx context.Context, taskID uuid.UUID, status, note string, decidedAt time.Time) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		// Pending-отчет может быть только последним: порядок массива - это
		// порядок отправки, по меткам времени ничего не ищем.
		last := len(task.ProgressUpdates) - 1
		if last < 0 || task.ProgressUpdates[last].ApprovalStatus != model.ApprovalPending {
			return ErrNoPendingSubmission
		}

		task.ProgressUpdates[last].ApprovalStatus = status
		task.ProgressUpdates[last].ApprovalNote = note
		task.ProgressUpdates[last].ApprovedAt = &decidedAt
		task.PendingApproval = false
		if status == model.ApprovalApproved {
			task.Status = model.TaskStatusCompleted
		} else {
			task.Status = model.TaskStatusInProgress
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CountByProject returns the total and completed task counts for a project
func (r *TaskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (total, completed int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND status = ?", projectID, model.TaskStatusCompleted).
		Count(&completed).Error
	return total, completed, err
}

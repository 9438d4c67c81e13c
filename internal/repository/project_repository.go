package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetByCreator(ctx context.Context, managerID uuid.UUID) ([]model.Project, error)
	GetByMember(ctx context.Context, employeeID uuid.UUID) ([]model.Project, error)
	GetAll(ctx context.Context) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	ReplaceEmployees(ctx context.Context, project *model.Project, employees []model.User) error
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("AssignedEmployees").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetByCreator возвращает проекты, созданные менеджером
func (r *ProjectRepository) GetByCreator(ctx context.Context, managerID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("AssignedEmployees").
		Where("created_by = ?", managerID).
		Find(&projects).Error
	return projects, err
}

// GetByMember возвращает проекты, в которые назначен сотрудник
func (r *ProjectRepository) GetByMember(ctx context.Context, employeeID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_employees ON project_employees.project_id = projects.id").
		Where("project_employees.user_id = ?", employeeID).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Preload("AssignedEmployees").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// ReplaceEmployees заменяет состав назначенных сотрудников проекта
func (r *ProjectRepository) ReplaceEmployees(ctx context.Context, project *model.Project, employees []model.User) error {
	return r.db.WithContext(ctx).Model(project).Association("AssignedEmployees").Replace(employees)
}

// UpdateProgress persists a recomputed progress percentage and status
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, status string) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"progress": progress, "status": status})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// IsMember проверяет, входит ли пользователь в состав проекта
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("project_employees").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

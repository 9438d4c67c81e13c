package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

type ServiceRequestRepository struct {
	db *gorm.DB
}

type ServiceRequestRepositoryInterface interface {
	Create(ctx context.Context, request *model.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	GetByRequester(ctx context.Context, userID uuid.UUID) ([]model.ServiceRequest, error)
	GetAll(ctx context.Context) ([]model.ServiceRequest, error)
	Update(ctx context.Context, request *model.ServiceRequest) error
}

var _ ServiceRequestRepositoryInterface = (*ServiceRequestRepository)(nil)

func NewServiceRequestRepository(db *gorm.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

func (r *ServiceRequestRepository) Create(ctx context.Context, request *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var request model.ServiceRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *ServiceRequestRepository) GetByRequester(ctx context.Context, userID uuid.UUID) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	err := r.db.WithContext(ctx).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ServiceRequestRepository) GetAll(ctx context.Context) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *ServiceRequestRepository) Update(ctx context.Context, request *model.ServiceRequest) error {
	result := r.db.WithContext(ctx).Save(request)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceRequestNotFound
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Статусы сервисной заявки
const (
	ServiceRequestOpen     = "open"
	ServiceRequestInReview = "in_review"
	ServiceRequestResolved = "resolved"
)

type ServiceRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject     string    `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'open';check:status IN ('open', 'in_review', 'resolved')"`
	ManagerNote string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester User `gorm:"foreignKey:RequestedBy"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationTaskAssigned          = "task_assigned"
	NotificationProgressSubmitted     = "progress_submitted"
	NotificationProgressApproved      = "progress_approved"
	NotificationProgressRejected      = "progress_rejected"
	NotificationProjectAssigned       = "project_assigned"
	NotificationServiceRequestCreated = "service_request_created"
	NotificationServiceRequestUpdated = "service_request_updated"
)

// Notification создается только компонентом рассылки; пользователь может
// лишь пометить свою запись прочитанной или удалить ее.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserType  string     `gorm:"not null"`
	Title     string     `gorm:"not null"`
	Message   string     `gorm:"not null"`
	Type      string     `gorm:"not null"`
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	IsRead    bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

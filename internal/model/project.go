package model

import (
	"time"

	"github.com/google/uuid"
)

// Статусы проекта
const (
	ProjectStatusPending   = "Pending"
	ProjectStatusOngoing   = "Ongoing"
	ProjectStatusCompleted = "Completed"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"not null;default:'Pending';check:status IN ('Pending', 'Ongoing', 'Completed')"`
	Progress    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator           User   `gorm:"foreignKey:CreatedBy"`
	AssignedEmployees []User `gorm:"many2many:project_employees"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string    `gorm:"not null"`
	Role           string    `gorm:"not null;check:role IN ('admin', 'manager', 'employee')"`
	PushToken      string
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Роли пользователей
const (
	RoleAdmin    = "admin"    // полный доступ, минуя проверки владения
	RoleManager  = "manager"  // создает проекты и задачи, принимает отчеты
	RoleEmployee = "employee" // выполняет задачи и отправляет отчеты
)

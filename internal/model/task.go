package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Статусы задачи
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "InProgress"
	TaskStatusCompleted  = "Completed"
)

// Статусы проверки отчета о ходе работы
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ProgressUpdate - один отчет сотрудника (материалы + заметки), ожидающий
// или уже получивший решение менеджера. Живет только внутри своей задачи.
type ProgressUpdate struct {
	Photos         []string   `json:"photos,omitempty"`
	VoiceNote      string     `json:"voice_note,omitempty"`
	Audio          string     `json:"audio,omitempty"`
	Videos         []string   `json:"videos,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ApprovalStatus string     `json:"approval_status"`
	ApprovalNote   string     `json:"approval_note,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

// ProgressUpdates хранится в задаче как jsonb-массив: порядок добавления
// равен хронологическому, последний элемент - самый свежий отчет.
type ProgressUpdates []ProgressUpdate

func (p ProgressUpdates) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

func (p *ProgressUpdates) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported source type for progress updates")
	}
}

// HasPending сообщает, ждет ли последний отчет решения менеджера
func (p ProgressUpdates) HasPending() bool {
	return len(p) > 0 && p[len(p)-1].ApprovalStatus == ApprovalPending
}

type Task struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskName        string    `gorm:"not null"`
	Description     string
	ProjectID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AssignedTo      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null;index"`
	Status          string    `gorm:"not null;default:'Pending';check:status IN ('Pending', 'InProgress', 'Completed')"`
	Deadline        *time.Time
	DeadlineTime    string
	Priority        string
	PendingApproval bool            `gorm:"not null;default:false"`
	ProgressUpdates ProgressUpdates `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project  Project `gorm:"foreignKey:ProjectID"`
	Assignee User    `gorm:"foreignKey:AssignedTo"`
	Creator  User    `gorm:"foreignKey:CreatedBy"`
}

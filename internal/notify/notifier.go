package notify

import (
	"context"
	"log"

	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/push"
	"taskhub/internal/repository"
)

// Recipient identifies who receives a notification.
type Recipient struct {
	UserID   uuid.UUID
	UserType string
}

// Message is the payload of a single notification event.
type Message struct {
	Title     string
	Body      string
	Type      string
	RelatedID *uuid.UUID
}

// Notifier persists a notification for the recipient and attempts
// best-effort push delivery on top of it.
type Notifier interface {
	Notify(ctx context.Context, recipient Recipient, msg Message) (*model.Notification, error)
}

type Service struct {
	notifications repository.NotificationRepositoryInterface
	users         repository.UserRepositoryInterface
	sender        push.Sender
	logger        *log.Logger
}

var _ Notifier = (*Service)(nil)

func NewService(
	notifications repository.NotificationRepositoryInterface,
	users repository.UserRepositoryInterface,
	sender push.Sender,
	logger *log.Logger,
) *Service {
	return &Service{
		notifications: notifications,
		users:         users,
		sender:        sender,
		logger:        logger,
	}
}

// Notify сначала сохраняет запись - она источник истины; push лишь дублирует
// ее на устройство и при сбое только логируется.
func (s *Service) Notify(ctx context.Context, recipient Recipient, msg Message) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:    recipient.UserID,
		UserType:  recipient.UserType,
		Title:     msg.Title,
		Message:   msg.Body,
		Type:      msg.Type,
		RelatedID: msg.RelatedID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.pushToDevice(ctx, recipient, msg)
	return notification, nil
}

func (s *Service) pushToDevice(ctx context.Context, recipient Recipient, msg Message) {
	user, err := s.users.GetByID(ctx, recipient.UserID)
	if err != nil {
		s.logger.Printf("push skipped: failed to load recipient %s: %v", recipient.UserID, err)
		return
	}
	if user == nil || user.PushToken == "" {
		// нет зарегистрированного устройства
		return
	}

	data := map[string]string{"type": msg.Type}
	if msg.RelatedID != nil {
		data["related_id"] = msg.RelatedID.String()
	}

	delivered, err := s.sender.Send(ctx, []string{user.PushToken}, msg.Title, msg.Body, data)
	if err != nil {
		s.logger.Printf("push delivery failed for user %s: %v", recipient.UserID, err)
		return
	}
	if delivered == 0 {
		s.logger.Printf("push delivery reported 0 sent for user %s", recipient.UserID)
	}
}

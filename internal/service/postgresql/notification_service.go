package service

import (
	entity "book-market/internal/domain"
	mongorepo "book-market/internal/repository/mongodb"

	"github.com/google/uuid"
)

// NotificationService is the read side of the notifications the Notifier
// produces.
type NotificationService struct {
	logRepo mongorepo.LogRepository
}

func NewNotificationService(logRepo mongorepo.LogRepository) *NotificationService {
	return &NotificationService{logRepo: logRepo}
}

func (s *NotificationService) ListNotifications(userID uuid.UUID, limit int64) ([]entity.Notification, error) {
	return s.logRepo.ListNotifications(userID.String(), limit)
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	return s.logRepo.MarkNotificationsRead(userID.String())
}

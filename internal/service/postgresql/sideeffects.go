package service

import (
	"log"
	"sync"
	"time"

	entity "book-market/internal/domain"
	mongorepo "book-market/internal/repository/mongodb"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier performs the fire-and-forget side effects of the marketplace:
// user notifications and audit-log entries. Each call hands the write to a
// goroutine; failures are logged and never reach the caller, so a Mongo
// outage cannot fail the primary operation.
type Notifier struct {
	logRepo mongorepo.LogRepository
	wg      sync.WaitGroup
}

func NewNotifier(logRepo mongorepo.LogRepository) *Notifier {
	return &Notifier{logRepo: logRepo}
}

func (n *Notifier) Notify(userID uuid.UUID, notiType, title, message string, relatedID uuid.UUID) {
	noti := &entity.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID.String(),
		Type:      notiType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID.String(),
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.logRepo.SaveNotification(noti); err != nil {
			log.Printf("Warning: failed to save notification for user %s: %v", noti.UserID, err)
		}
	}()
}

func (n *Notifier) Audit(actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, metadata map[string]string) {
	entry := &entity.ActivityLog{
		ID:           primitive.NewObjectID(),
		ActorID:      actorID.String(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		Metadata:     metadata,
		CreatedAt:    time.Now(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.logRepo.SaveActivity(entry); err != nil {
			log.Printf("Warning: failed to save activity log for actor %s: %v", entry.ActorID, err)
		}
	}()
}

// Flush blocks until every queued side effect has finished. Used on
// shutdown and in tests.
func (n *Notifier) Flush() {
	n.wg.Wait()
}

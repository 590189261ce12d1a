package mongodb

import (
	"context"
	"fmt"
	"time"

	entity "book-market/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DatabaseName = "book_market"

	CollectionActivity      = "activity_log"
	CollectionNotifications = "notifications"
)

// LogRepository stores the side-effect records of the marketplace: immutable
// audit entries and per-user notifications. All writes are best-effort from
// the services' point of view.
type LogRepository interface {
	SaveActivity(log *entity.ActivityLog) error
	ListActivities(limit int64) ([]entity.ActivityLog, error)
	SaveNotification(noti *entity.Notification) error
	ListNotifications(userID string, limit int64) ([]entity.Notification, error)
	MarkNotificationsRead(userID string) error
}

type logRepository struct {
	activity      *mongo.Collection
	notifications *mongo.Collection
}

func NewLogRepository(client *mongo.Client) LogRepository {
	db := client.Database(DatabaseName)
	return &logRepository{
		activity:      db.Collection(CollectionActivity),
		notifications: db.Collection(CollectionNotifications),
	}
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (r *logRepository) SaveActivity(log *entity.ActivityLog) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.activity.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

func (r *logRepository) ListActivities(limit int64) ([]entity.ActivityLog, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.activity.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []entity.ActivityLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *logRepository) SaveNotification(noti *entity.Notification) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.notifications.InsertOne(ctx, noti); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *logRepository) ListNotifications(userID string, limit int64) ([]entity.Notification, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.notifications.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notis []entity.Notification
	if err := cursor.All(ctx, &notis); err != nil {
		return nil, err
	}
	return notis, nil
}

func (r *logRepository) MarkNotificationsRead(userID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := r.notifications.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	return err
}

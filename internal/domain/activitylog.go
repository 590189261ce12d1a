package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is an immutable audit entry per state-changing action. Entries
// are written best-effort; a failed write never fails the action itself.
type ActivityLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID      string             `bson:"actor_id" json:"actor_id"`
	Action       string             `bson:"action" json:"action"`
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   string             `bson:"resource_id" json:"resource_id"`
	Metadata     map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification event kinds produced by the negotiation workflow and loans.
const (
	NotifOfferCreated        = "offer_created"
	NotifOfferResponded      = "offer_responded"
	NotifOfferWithdrawn      = "offer_withdrawn"
	NotifMessageReceived     = "message_received"
	NotifTransactionComplete = "transaction_complete"
	NotifLoanDue             = "loan_due"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	RelatedID string             `bson:"related_id" json:"related_id"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review rates the seller after a completed transaction. One review per
// (reviewer, conversation), enforced by a unique constraint.
type Review struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	ConversationID      uuid.UUID `db:"conversation_id" json:"conversation_id"`
	ReviewerID          uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	SellerID            uuid.UUID `db:"seller_id" json:"seller_id"`
	Rating              int       `db:"rating" json:"rating"`
	CommunicationRating int       `db:"communication_rating" json:"communication_rating"`
	AccuracyRating      int       `db:"accuracy_rating" json:"accuracy_rating"`
	MeetupRating        int       `db:"meetup_rating" json:"meetup_rating"`
	Comment             string    `db:"comment" json:"comment,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type CreateReviewInput struct {
	Rating              int    `json:"rating" binding:"required,min=1,max=5"`
	CommunicationRating int    `json:"communication_rating" binding:"required,min=1,max=5"`
	AccuracyRating      int    `json:"accuracy_rating" binding:"required,min=1,max=5"`
	MeetupRating        int    `json:"meetup_rating" binding:"required,min=1,max=5"`
	Comment             string `json:"comment" binding:"max=2000"`
}

// SellerRating is the lazily computed aggregate. Nothing is denormalized:
// the average is an AVG over the reviews table at read time.
type SellerRating struct {
	SellerID    uuid.UUID `json:"seller_id"`
	ReviewCount int       `json:"review_count"`
	Average     float64   `json:"average"`
}

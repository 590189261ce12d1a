package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferPending   OfferStatus = "PENDING"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferRejected  OfferStatus = "REJECTED"
	OfferCountered OfferStatus = "COUNTERED"
	OfferWithdrawn OfferStatus = "WITHDRAWN"
)

// Active reports whether the offer still occupies the buyer's single active
// slot on a sell post. COUNTERED stays active: a countered offer remains
// open for a further response.
func (s OfferStatus) Active() bool {
	return s == OfferPending || s == OfferCountered || s == OfferAccepted
}

// Respondable reports whether the offer may still be acted on. REJECTED,
// WITHDRAWN and ACCEPTED are terminal.
func (s OfferStatus) Respondable() bool {
	return s == OfferPending || s == OfferCountered
}

type BookOffer struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	SellPostID      uuid.UUID    `db:"sell_post_id" json:"sell_post_id"`
	BuyerID         uuid.UUID    `db:"buyer_id" json:"buyer_id"`
	OfferedPrice    float64      `db:"offered_price" json:"offered_price"`
	Message         string       `db:"message" json:"message,omitempty"`
	Status          OfferStatus  `db:"status" json:"status"`
	ResponseMessage string       `db:"response_message" json:"response_message,omitempty"`
	RespondedAt     sql.NullTime `db:"responded_at" json:"-"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

type CreateOfferInput struct {
	SellPostID   uuid.UUID `json:"sell_post_id" binding:"required"`
	OfferedPrice float64   `json:"offered_price" binding:"required,gt=0"`
	Message      string    `json:"message"`
}

type RespondOfferInput struct {
	Status          OfferStatus `json:"status" binding:"required"`
	ResponseMessage string      `json:"response_message"`
	CounterPrice    float64     `json:"counter_price"`
}

package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation is the single message thread between one buyer and one seller
// for one sell post. Uniqueness of (sell_post_id, buyer_id) is enforced by
// the database.
type Conversation struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	SellPostID          uuid.UUID `db:"sell_post_id" json:"sell_post_id"`
	SellerID            uuid.UUID `db:"seller_id" json:"seller_id"`
	BuyerID             uuid.UUID `db:"buyer_id" json:"buyer_id"`
	Archived            bool      `db:"archived" json:"archived"`
	Blocked             bool      `db:"blocked" json:"blocked"`
	TransactionComplete bool      `db:"transaction_complete" json:"transaction_complete"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.SellerID == userID || c.BuyerID == userID
}

// OtherParticipant returns the counterparty of userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.SellerID == userID {
		return c.BuyerID
	}
	return c.SellerID
}

// ConversationSummary is a Conversation plus the unread count for the
// requesting user, used by inbox listings.
type ConversationSummary struct {
	Conversation
	UnreadCount int `db:"unread_count" json:"unread_count"`
}

// Message is append-only. Seq is a monotonically increasing per-conversation
// sequence assigned at insert time, so readers see a total order even when
// timestamps collide under concurrent writers.
type Message struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	ConversationID uuid.UUID    `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID    `db:"sender_id" json:"sender_id"`
	Seq            int64        `db:"seq" json:"seq"`
	Content        string       `db:"content" json:"content"`
	ReadAt         sql.NullTime `db:"read_at" json:"-"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

type SendMessageInput struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type StartConversationInput struct {
	SellPostID uuid.UUID `json:"sell_post_id" binding:"required"`
}

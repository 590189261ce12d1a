package entity

import (
	"time"

	"github.com/google/uuid"
)

type SellPostStatus string

const (
	SellPostAvailable SellPostStatus = "AVAILABLE"
	SellPostPending   SellPostStatus = "PENDING"
	SellPostSold      SellPostStatus = "SOLD"
	SellPostExpired   SellPostStatus = "EXPIRED"
	SellPostHidden    SellPostStatus = "HIDDEN"
)

// CanTransitionTo encodes the listing state machine: AVAILABLE->PENDING on
// acceptance, PENDING->SOLD on handoff, PENDING->AVAILABLE as fallback.
// SOLD is final. Hiding is allowed from any non-sold state.
func (s SellPostStatus) CanTransitionTo(next SellPostStatus) bool {
	switch s {
	case SellPostAvailable:
		return next == SellPostPending || next == SellPostExpired || next == SellPostHidden
	case SellPostPending:
		return next == SellPostSold || next == SellPostAvailable || next == SellPostHidden
	case SellPostHidden:
		return next == SellPostAvailable
	default:
		return false
	}
}

// Book conditions used by sell posts and offer listings.
const (
	ConditionNew     = "NEW"
	ConditionLikeNew = "LIKE_NEW"
	ConditionGood    = "GOOD"
	ConditionFair    = "FAIR"
	ConditionPoor    = "POOR"
)

func ValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type SellPost struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	SellerID    uuid.UUID      `db:"seller_id" json:"seller_id"`
	Title       string         `db:"title" json:"title"`
	Author      string         `db:"author" json:"author"`
	Description string         `db:"description" json:"description"`
	Price       float64        `db:"price" json:"price"`
	Negotiable  bool           `db:"negotiable" json:"negotiable"`
	Condition   string         `db:"condition" json:"condition"`
	CoverURL    string         `db:"cover_url" json:"cover_url,omitempty"`
	Status      SellPostStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateSellPostInput struct {
	Title       string  `form:"title" binding:"required"`
	Author      string  `form:"author" binding:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price" binding:"required,gt=0"`
	Negotiable  bool    `form:"negotiable"`
	Condition   string  `form:"condition" binding:"required,bookcondition"`
}

// SellPostFilter narrows marketplace browsing; zero values mean "no filter".
type SellPostFilter struct {
	Keyword  string  `form:"keyword"`
	MinPrice float64 `form:"min_price"`
	MaxPrice float64 `form:"max_price"`
	Limit    int     `form:"limit"`
	Offset   int     `form:"offset"`
}

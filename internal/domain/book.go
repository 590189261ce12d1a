package entity

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog title the library lends out, distinct from SellPost
// which is a member's own physical copy listed for sale.
type Book struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	ISBN            string    `db:"isbn" json:"isbn"`
	Category        string    `db:"category" json:"category"`
	Description     string    `db:"description" json:"description"`
	CoverURL        string    `db:"cover_url" json:"cover_url,omitempty"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateBookInput struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	ISBN        string `json:"isbn" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	TotalCopies int    `json:"total_copies" binding:"required,min=1"`
}

type BookFilter struct {
	Keyword  string `form:"keyword"`
	Category string `form:"category"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanReturned LoanStatus = "RETURNED"
	LoanOverdue  LoanStatus = "OVERDUE"
)

type Loan struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	BookID     uuid.UUID    `db:"book_id" json:"book_id"`
	UserID     uuid.UUID    `db:"user_id" json:"user_id"`
	Status     LoanStatus   `db:"status" json:"status"`
	DueDate    time.Time    `db:"due_date" json:"due_date"`
	ReturnedAt sql.NullTime `db:"returned_at" json:"-"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

type BorrowInput struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

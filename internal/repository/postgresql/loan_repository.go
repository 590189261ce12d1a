package repository

import (
	"database/sql"
	"fmt"
	"time"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type LoanRepository interface {
	BorrowBook(loan *entity.Loan) error
	ReturnBook(loanID, userID uuid.UUID) (*entity.Loan, error)
	GetLoanByID(loanID uuid.UUID) (*entity.Loan, error)
	ListLoansByUser(userID uuid.UUID) ([]entity.Loan, error)
}

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, book_id, user_id, status, due_date, returned_at, created_at, updated_at`

func scanLoan(row interface{ Scan(...interface{}) error }) (*entity.Loan, error) {
	var l entity.Loan
	err := row.Scan(
		&l.ID, &l.BookID, &l.UserID, &l.Status, &l.DueDate,
		&l.ReturnedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// BorrowBook decrements available copies and inserts the loan in one
// transaction. The book row lock serializes concurrent borrows of the last
// copy.
func (r *loanRepository) BorrowBook(loan *entity.Loan) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var available int
	err = tx.QueryRow(`SELECT available_copies FROM books WHERE id = $1 FOR UPDATE`, loan.BookID).Scan(&available)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("book %s: %w", loan.BookID, entity.ErrNotFound)
		}
		return err
	}
	if available <= 0 {
		return fmt.Errorf("no copies available: %w", entity.ErrConflict)
	}

	var hasActive bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM loans WHERE book_id = $1 AND user_id = $2 AND status = 'ACTIVE')
	`, loan.BookID, loan.UserID).Scan(&hasActive)
	if err != nil {
		return err
	}
	if hasActive {
		return fmt.Errorf("book already on loan to this member: %w", entity.ErrConflict)
	}

	if _, err := tx.Exec(`UPDATE books SET available_copies = available_copies - 1, updated_at = NOW() WHERE id = $1`, loan.BookID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO loans (id, book_id, user_id, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, loan.ID, loan.BookID, loan.UserID, loan.Status, loan.DueDate); err != nil {
		return err
	}

	return tx.Commit()
}

// ReturnBook closes the loan and restores the copy. Returning an already
// returned loan is a conflict so copies cannot be restored twice.
func (r *loanRepository) ReturnBook(loanID, userID uuid.UUID) (*entity.Loan, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loan, err := scanLoan(tx.QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loan %s: %w", loanID, entity.ErrNotFound)
		}
		return nil, err
	}
	if loan.UserID != userID {
		return nil, fmt.Errorf("loan belongs to another member: %w", entity.ErrForbidden)
	}
	if loan.Status == entity.LoanReturned {
		return nil, fmt.Errorf("loan already returned: %w", entity.ErrConflict)
	}

	now := time.Now()
	if _, err := tx.Exec(`
		UPDATE loans SET status = $1, returned_at = $2, updated_at = NOW() WHERE id = $3
	`, entity.LoanReturned, now, loanID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`UPDATE books SET available_copies = available_copies + 1, updated_at = NOW() WHERE id = $1`, loan.BookID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	loan.Status = entity.LoanReturned
	loan.ReturnedAt = sql.NullTime{Time: now, Valid: true}
	return loan, nil
}

func (r *loanRepository) GetLoanByID(loanID uuid.UUID) (*entity.Loan, error) {
	loan, err := scanLoan(r.db.QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = $1`, loanID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return loan, err
}

func (r *loanRepository) ListLoansByUser(userID uuid.UUID) ([]entity.Loan, error) {
	rows, err := r.db.Query(`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []entity.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

package service

import (
	"fmt"
	"time"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"

	"github.com/google/uuid"
)

var ErrLoanNotFound = fmt.Errorf("loan %w", entity.ErrNotFound)

const loanPeriod = 14 * 24 * time.Hour

type LoanService struct {
	loanRepo repo.LoanRepository
	catalog  *CatalogService
	notifier *Notifier
}

func NewLoanService(loanRepo repo.LoanRepository, catalog *CatalogService, notifier *Notifier) *LoanService {
	return &LoanService{loanRepo: loanRepo, catalog: catalog, notifier: notifier}
}

// Borrow takes one copy of a catalog book for the standard loan period. The
// repository transaction guards the last-copy race and the one-active-loan-
// per-(member, book) rule.
func (s *LoanService) Borrow(userID uuid.UUID, input entity.BorrowInput) (*entity.Loan, error) {
	loan := &entity.Loan{
		ID:      uuid.New(),
		BookID:  input.BookID,
		UserID:  userID,
		Status:  entity.LoanActive,
		DueDate: time.Now().Add(loanPeriod),
	}
	if err := s.loanRepo.BorrowBook(loan); err != nil {
		return nil, err
	}
	s.catalog.InvalidateBook(input.BookID)

	s.notifier.Notify(userID, entity.NotifLoanDue, "Book borrowed",
		fmt.Sprintf("Your loan is due on %s.", loan.DueDate.Format("2006-01-02")), loan.ID)
	s.notifier.Audit(userID, "loan.borrow", "loan", loan.ID, map[string]string{
		"book_id": input.BookID.String(),
	})
	return loan, nil
}

func (s *LoanService) Return(userID, loanID uuid.UUID) (*entity.Loan, error) {
	loan, err := s.loanRepo.ReturnBook(loanID, userID)
	if err != nil {
		return nil, err
	}
	s.catalog.InvalidateBook(loan.BookID)

	s.notifier.Audit(userID, "loan.return", "loan", loan.ID, nil)
	return loan, nil
}

func (s *LoanService) MyLoans(userID uuid.UUID) ([]entity.Loan, error) {
	return s.loanRepo.ListLoansByUser(userID)
}

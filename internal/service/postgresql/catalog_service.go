package service

import (
	"encoding/json"
	"fmt"
	"time"

	"book-market/internal/cache"
	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"

	"github.com/google/uuid"
)

var ErrBookNotFound = fmt.Errorf("book %w", entity.ErrNotFound)

const bookCacheTTL = 5 * time.Minute

type CatalogService struct {
	bookRepo repo.BookRepository
	cache    *cache.Cache
	notifier *Notifier
}

// NewCatalogService wires the catalog. cache may be nil, which disables
// caching entirely.
func NewCatalogService(bookRepo repo.BookRepository, c *cache.Cache, notifier *Notifier) *CatalogService {
	return &CatalogService{bookRepo: bookRepo, cache: c, notifier: notifier}
}

func (s *CatalogService) CreateBook(adminID uuid.UUID, input entity.CreateBookInput) (*entity.Book, error) {
	book := &entity.Book{
		ID:              uuid.New(),
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Category:        input.Category,
		Description:     input.Description,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.bookRepo.CreateBook(book); err != nil {
		return nil, err
	}

	s.notifier.Audit(adminID, "book.create", "book", book.ID, nil)
	return book, nil
}

func (s *CatalogService) ListBooks(filter entity.BookFilter) ([]entity.Book, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.bookRepo.ListBooks(filter)
}

// GetBook serves details through the cache. Loans mutate available copies,
// so the TTL is short rather than the count being invalidated on every
// borrow.
func (s *CatalogService) GetBook(bookID uuid.UUID) (*entity.Book, error) {
	key := bookCacheKey(bookID)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			var book entity.Book
			if err := json.Unmarshal(data, &book); err == nil {
				return &book, nil
			}
		}
	}

	book, err := s.bookRepo.GetBookByID(bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	if s.cache != nil {
		if data, err := json.Marshal(book); err == nil {
			s.cache.Set(key, data, bookCacheTTL)
		}
	}
	return book, nil
}

func (s *CatalogService) ListCategories() ([]string, error) {
	return s.bookRepo.ListCategories()
}

// InvalidateBook drops a book's cache entry, called after loan activity.
func (s *CatalogService) InvalidateBook(bookID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(bookCacheKey(bookID))
	}
}

func bookCacheKey(bookID uuid.UUID) string {
	return "book:" + bookID.String()
}

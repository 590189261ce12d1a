package repository

import (
	"database/sql"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type BookRepository interface {
	CreateBook(book *entity.Book) error
	GetBookByID(bookID uuid.UUID) (*entity.Book, error)
	ListBooks(filter entity.BookFilter) ([]entity.Book, error)
	ListCategories() ([]string, error)
}

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, author, isbn, category, description, cover_url, total_copies, available_copies, created_at, updated_at`

func scanBook(row interface{ Scan(...interface{}) error }) (*entity.Book, error) {
	var b entity.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Description,
		&b.CoverURL, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) CreateBook(book *entity.Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, category, description, cover_url, total_copies, available_copies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(query,
		book.ID, book.Title, book.Author, book.ISBN, book.Category,
		book.Description, book.CoverURL, book.TotalCopies, book.AvailableCopies,
	)
	return err
}

func (r *bookRepository) GetBookByID(bookID uuid.UUID) (*entity.Book, error) {
	book, err := scanBook(r.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE id = $1`, bookID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return book, err
}

func (r *bookRepository) ListBooks(filter entity.BookFilter) ([]entity.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE true`
	args := []interface{}{}
	idx := 1

	if filter.Keyword != "" {
		query += ` AND (title ILIKE $` + itoa(idx) + ` OR author ILIKE $` + itoa(idx) + `)`
		args = append(args, "%"+filter.Keyword+"%")
		idx++
	}
	if filter.Category != "" {
		query += ` AND category = $` + itoa(idx)
		args = append(args, filter.Category)
		idx++
	}

	query += ` ORDER BY title ASC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + itoa(idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += ` OFFSET $` + itoa(idx)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

func (r *bookRepository) ListCategories() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT category FROM books ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

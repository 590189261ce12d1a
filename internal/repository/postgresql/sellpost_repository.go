package repository

import (
	"database/sql"
	"fmt"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type SellPostRepository interface {
	CreateSellPost(post *entity.SellPost) error
	GetSellPostByID(postID uuid.UUID) (*entity.SellPost, error)
	ListSellPosts(filter entity.SellPostFilter) ([]entity.SellPost, error)
	ListSellPostsBySeller(sellerID uuid.UUID) ([]entity.SellPost, error)
	UpdateSellPostStatus(postID uuid.UUID, status entity.SellPostStatus) error
	ReleaseSellPost(postID uuid.UUID) ([]entity.BookOffer, error)
	SetCoverURL(postID uuid.UUID, coverURL string) error
	HasActivity(postID uuid.UUID) (bool, error)
	DeleteSellPost(postID uuid.UUID) error
}

type sellPostRepository struct {
	db *sql.DB
}

func NewSellPostRepository(db *sql.DB) SellPostRepository {
	return &sellPostRepository{db: db}
}

const sellPostColumns = `id, seller_id, title, author, description, price, negotiable, condition, cover_url, status, created_at, updated_at`

func scanSellPost(row interface{ Scan(...interface{}) error }) (*entity.SellPost, error) {
	var p entity.SellPost
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Author, &p.Description, &p.Price,
		&p.Negotiable, &p.Condition, &p.CoverURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sellPostRepository) CreateSellPost(post *entity.SellPost) error {
	query := `
		INSERT INTO sell_posts (id, seller_id, title, author, description, price, negotiable, condition, cover_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(query,
		post.ID, post.SellerID, post.Title, post.Author, post.Description,
		post.Price, post.Negotiable, post.Condition, post.CoverURL, post.Status,
	)
	return err
}

func (r *sellPostRepository) GetSellPostByID(postID uuid.UUID) (*entity.SellPost, error) {
	query := `SELECT ` + sellPostColumns + ` FROM sell_posts WHERE id = $1`
	post, err := scanSellPost(r.db.QueryRow(query, postID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

func (r *sellPostRepository) ListSellPosts(filter entity.SellPostFilter) ([]entity.SellPost, error) {
	query := `SELECT ` + sellPostColumns + ` FROM sell_posts WHERE status = 'AVAILABLE'`
	args := []interface{}{}
	idx := 1

	if filter.Keyword != "" {
		query += ` AND (title ILIKE $` + itoa(idx) + ` OR author ILIKE $` + itoa(idx) + `)`
		args = append(args, "%"+filter.Keyword+"%")
		idx++
	}
	if filter.MinPrice > 0 {
		query += ` AND price >= $` + itoa(idx)
		args = append(args, filter.MinPrice)
		idx++
	}
	if filter.MaxPrice > 0 {
		query += ` AND price <= $` + itoa(idx)
		args = append(args, filter.MaxPrice)
		idx++
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + itoa(idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += ` OFFSET $` + itoa(idx)
		args = append(args, filter.Offset)
	}

	return r.querySellPosts(query, args...)
}

func (r *sellPostRepository) ListSellPostsBySeller(sellerID uuid.UUID) ([]entity.SellPost, error) {
	query := `SELECT ` + sellPostColumns + ` FROM sell_posts WHERE seller_id = $1 ORDER BY created_at DESC`
	return r.querySellPosts(query, sellerID)
}

func (r *sellPostRepository) querySellPosts(query string, args ...interface{}) ([]entity.SellPost, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []entity.SellPost
	for rows.Next() {
		post, err := scanSellPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (r *sellPostRepository) UpdateSellPostStatus(postID uuid.UUID, status entity.SellPostStatus) error {
	query := `UPDATE sell_posts SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(query, status, postID)
	return err
}

// ReleaseSellPost reverts PENDING -> AVAILABLE and rejects the accepted
// offer in the same transaction. The post row is locked first, the same
// order AcceptOffer takes it, so a concurrent acceptance and a release on
// one post serialize and the post can never be AVAILABLE while an offer on
// it is still ACCEPTED. Returns the offers the release rejected.
func (r *sellPostRepository) ReleaseSellPost(postID uuid.UUID) ([]entity.BookOffer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status entity.SellPostStatus
	if err := tx.QueryRow(`SELECT status FROM sell_posts WHERE id = $1 FOR UPDATE`, postID).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sell post %s: %w", postID, entity.ErrNotFound)
		}
		return nil, err
	}
	if !status.CanTransitionTo(entity.SellPostAvailable) {
		return nil, fmt.Errorf("listing status does not allow this transition: %w", entity.ErrConflict)
	}

	if _, err := tx.Exec(`
		UPDATE sell_posts SET status = $1, updated_at = NOW() WHERE id = $2
	`, entity.SellPostAvailable, postID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		UPDATE book_offers
		SET status = $1, responded_at = NOW(), updated_at = NOW()
		WHERE sell_post_id = $2 AND status = $3
		RETURNING `+offerColumns+`
	`, entity.OfferRejected, postID, entity.OfferAccepted)
	if err != nil {
		return nil, err
	}

	var rejected []entity.BookOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rejected = append(rejected, *offer)
	}
	// The result set must be drained and closed before the commit.
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rejected, nil
}

func (r *sellPostRepository) SetCoverURL(postID uuid.UUID, coverURL string) error {
	query := `UPDATE sell_posts SET cover_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(query, coverURL, postID)
	return err
}

// DeleteSellPost physically removes a post. Only valid for posts without
// offers or conversations; posts with activity are hidden instead.
func (r *sellPostRepository) DeleteSellPost(postID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM sell_posts WHERE id = $1`, postID)
	return err
}

// HasActivity reports whether any offer or conversation references the post.
// Posts with activity are hidden on removal instead of deleted.
func (r *sellPostRepository) HasActivity(postID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(SELECT 1 FROM book_offers WHERE sell_post_id = $1)
		    OR EXISTS(SELECT 1 FROM conversations WHERE sell_post_id = $1)
	`
	err := r.db.QueryRow(query, postID).Scan(&exists)
	return exists, err
}

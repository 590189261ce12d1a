package repository

import (
	"database/sql"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	CreateReview(review *entity.Review) error
	HasReview(reviewerID, conversationID uuid.UUID) (bool, error)
	ListReviewsBySeller(sellerID uuid.UUID) ([]entity.Review, error)
	GetSellerRating(sellerID uuid.UUID) (*entity.SellerRating, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// CreateReview relies on the unique (reviewer_id, conversation_id)
// constraint; a violation surfaces through IsUniqueViolation.
func (r *reviewRepository) CreateReview(review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, conversation_id, reviewer_id, seller_id, rating, communication_rating, accuracy_rating, meetup_rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := r.db.Exec(query,
		review.ID, review.ConversationID, review.ReviewerID, review.SellerID,
		review.Rating, review.CommunicationRating, review.AccuracyRating,
		review.MeetupRating, review.Comment,
	)
	return err
}

func (r *reviewRepository) HasReview(reviewerID, conversationID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE reviewer_id = $1 AND conversation_id = $2)`
	err := r.db.QueryRow(query, reviewerID, conversationID).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) ListReviewsBySeller(sellerID uuid.UUID) ([]entity.Review, error) {
	query := `
		SELECT id, conversation_id, reviewer_id, seller_id, rating, communication_rating, accuracy_rating, meetup_rating, comment, created_at
		FROM reviews
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var rev entity.Review
		err := rows.Scan(
			&rev.ID, &rev.ConversationID, &rev.ReviewerID, &rev.SellerID,
			&rev.Rating, &rev.CommunicationRating, &rev.AccuracyRating,
			&rev.MeetupRating, &rev.Comment, &rev.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// GetSellerRating computes the aggregate at read time; nothing is stored.
func (r *reviewRepository) GetSellerRating(sellerID uuid.UUID) (*entity.SellerRating, error) {
	rating := &entity.SellerRating{SellerID: sellerID}
	query := `SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE seller_id = $1`
	err := r.db.QueryRow(query, sellerID).Scan(&rating.ReviewCount, &rating.Average)
	if err == sql.ErrNoRows {
		return rating, nil
	}
	return rating, err
}

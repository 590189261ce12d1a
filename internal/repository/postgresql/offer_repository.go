package repository

import (
	"database/sql"
	"fmt"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type OfferRepository interface {
	CreateOffer(offer *entity.BookOffer) error
	GetOfferByID(offerID uuid.UUID) (*entity.BookOffer, error)
	GetActiveOffer(sellPostID, buyerID uuid.UUID) (*entity.BookOffer, error)
	GetOffersByBuyerID(buyerID uuid.UUID) ([]entity.BookOffer, error)
	GetOffersBySellPostID(sellPostID uuid.UUID) ([]entity.BookOffer, error)
	UpdateOffer(offer *entity.BookOffer) error
	AcceptOffer(offerID, sellPostID uuid.UUID, responseMessage string) (*entity.BookOffer, error)
}

type offerRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) OfferRepository {
	return &offerRepository{db: db}
}

const offerColumns = `id, sell_post_id, buyer_id, offered_price, message, status, response_message, responded_at, created_at, updated_at`

func scanOffer(row interface{ Scan(...interface{}) error }) (*entity.BookOffer, error) {
	var o entity.BookOffer
	err := row.Scan(
		&o.ID, &o.SellPostID, &o.BuyerID, &o.OfferedPrice, &o.Message,
		&o.Status, &o.ResponseMessage, &o.RespondedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) CreateOffer(offer *entity.BookOffer) error {
	query := `
		INSERT INTO book_offers (id, sell_post_id, buyer_id, offered_price, message, status, response_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '', NOW(), NOW())
	`
	_, err := r.db.Exec(query,
		offer.ID, offer.SellPostID, offer.BuyerID, offer.OfferedPrice, offer.Message, offer.Status,
	)
	return err
}

func (r *offerRepository) GetOfferByID(offerID uuid.UUID) (*entity.BookOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM book_offers WHERE id = $1`
	offer, err := scanOffer(r.db.QueryRow(query, offerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return offer, err
}

// GetActiveOffer returns the buyer's offer on the post that is still in a
// non-terminal state, or nil. At most one can exist.
func (r *offerRepository) GetActiveOffer(sellPostID, buyerID uuid.UUID) (*entity.BookOffer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM book_offers
		WHERE sell_post_id = $1 AND buyer_id = $2 AND status IN ('PENDING', 'COUNTERED', 'ACCEPTED')
	`
	offer, err := scanOffer(r.db.QueryRow(query, sellPostID, buyerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return offer, err
}

func (r *offerRepository) GetOffersByBuyerID(buyerID uuid.UUID) ([]entity.BookOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM book_offers WHERE buyer_id = $1 ORDER BY created_at DESC`
	return r.queryOffers(query, buyerID)
}

func (r *offerRepository) GetOffersBySellPostID(sellPostID uuid.UUID) ([]entity.BookOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM book_offers WHERE sell_post_id = $1 ORDER BY created_at DESC`
	return r.queryOffers(query, sellPostID)
}

func (r *offerRepository) queryOffers(query string, args ...interface{}) ([]entity.BookOffer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []entity.BookOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

func (r *offerRepository) UpdateOffer(offer *entity.BookOffer) error {
	query := `
		UPDATE book_offers
		SET status = $1, offered_price = $2, response_message = $3, responded_at = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(query,
		offer.Status, offer.OfferedPrice, offer.ResponseMessage, offer.RespondedAt, offer.ID,
	)
	return err
}

// AcceptOffer applies the acceptance atomically: the offer goes ACCEPTED,
// every other open offer on the post goes REJECTED, and the post goes
// PENDING. The sell post row is locked first so concurrent responses to
// different offers on the same post serialize; the re-check of the offer
// status under the lock is what guarantees at most one ACCEPTED offer ever
// survives per post.
func (r *offerRepository) AcceptOffer(offerID, sellPostID uuid.UUID, responseMessage string) (*entity.BookOffer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var postStatus entity.SellPostStatus
	if err := tx.QueryRow(`SELECT status FROM sell_posts WHERE id = $1 FOR UPDATE`, sellPostID).Scan(&postStatus); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sell post %s: %w", sellPostID, entity.ErrNotFound)
		}
		return nil, err
	}
	if !postStatus.CanTransitionTo(entity.SellPostPending) {
		return nil, fmt.Errorf("listing no longer available: %w", entity.ErrConflict)
	}

	var offerStatus entity.OfferStatus
	if err := tx.QueryRow(`SELECT status FROM book_offers WHERE id = $1 FOR UPDATE`, offerID).Scan(&offerStatus); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("offer %s: %w", offerID, entity.ErrNotFound)
		}
		return nil, err
	}
	if !offerStatus.Respondable() {
		return nil, fmt.Errorf("offer is no longer open for response: %w", entity.ErrConflict)
	}

	if _, err := tx.Exec(`
		UPDATE book_offers
		SET status = $1, response_message = $2, responded_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`, entity.OfferAccepted, responseMessage, offerID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE book_offers
		SET status = $1, responded_at = NOW(), updated_at = NOW()
		WHERE sell_post_id = $2 AND id <> $3 AND status IN ('PENDING', 'COUNTERED')
	`, entity.OfferRejected, sellPostID, offerID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE sell_posts SET status = $1, updated_at = NOW() WHERE id = $2
	`, entity.SellPostPending, sellPostID); err != nil {
		return nil, err
	}

	offer, err := scanOffer(tx.QueryRow(`SELECT `+offerColumns+` FROM book_offers WHERE id = $1`, offerID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return offer, nil
}

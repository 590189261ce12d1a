package repository

import (
	"database/sql"
	"fmt"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	CreateConversation(conv *entity.Conversation) error
	GetConversationByID(convID uuid.UUID) (*entity.Conversation, error)
	GetConversationByPostAndBuyer(sellPostID, buyerID uuid.UUID) (*entity.Conversation, error)
	ListConversationsByUser(userID uuid.UUID) ([]entity.ConversationSummary, error)
	SetArchived(convID uuid.UUID, archived bool) error
	SetBlocked(convID uuid.UUID, blocked bool) error
	SetTransactionComplete(convID uuid.UUID) error
	AppendMessage(msg *entity.Message) error
	ListMessages(convID uuid.UUID) ([]entity.Message, error)
	MarkMessagesRead(convID, readerID uuid.UUID) error
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

const conversationColumns = `id, sell_post_id, seller_id, buyer_id, archived, blocked, transaction_complete, created_at, updated_at`

func scanConversation(row interface{ Scan(...interface{}) error }) (*entity.Conversation, error) {
	var c entity.Conversation
	err := row.Scan(
		&c.ID, &c.SellPostID, &c.SellerID, &c.BuyerID,
		&c.Archived, &c.Blocked, &c.TransactionComplete, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConversation inserts the row and relies on the unique
// (sell_post_id, buyer_id) constraint. Callers treat a unique violation as
// "conversation already exists, re-fetch" (see IsUniqueViolation).
func (r *conversationRepository) CreateConversation(conv *entity.Conversation) error {
	query := `
		INSERT INTO conversations (id, sell_post_id, seller_id, buyer_id, archived, blocked, transaction_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, false, false, NOW(), NOW())
	`
	_, err := r.db.Exec(query, conv.ID, conv.SellPostID, conv.SellerID, conv.BuyerID)
	return err
}

func (r *conversationRepository) GetConversationByID(convID uuid.UUID) (*entity.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	conv, err := scanConversation(r.db.QueryRow(query, convID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return conv, err
}

func (r *conversationRepository) GetConversationByPostAndBuyer(sellPostID, buyerID uuid.UUID) (*entity.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE sell_post_id = $1 AND buyer_id = $2`
	conv, err := scanConversation(r.db.QueryRow(query, sellPostID, buyerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return conv, err
}

func (r *conversationRepository) ListConversationsByUser(userID uuid.UUID) ([]entity.ConversationSummary, error) {
	query := `
		SELECT c.id, c.sell_post_id, c.seller_id, c.buyer_id, c.archived, c.blocked, c.transaction_complete, c.created_at, c.updated_at,
		       COUNT(m.id) FILTER (WHERE m.sender_id <> $1 AND m.read_at IS NULL) AS unread_count
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.seller_id = $1 OR c.buyer_id = $1
		GROUP BY c.id
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []entity.ConversationSummary
	for rows.Next() {
		var c entity.ConversationSummary
		err := rows.Scan(
			&c.ID, &c.SellPostID, &c.SellerID, &c.BuyerID,
			&c.Archived, &c.Blocked, &c.TransactionComplete, &c.CreatedAt, &c.UpdatedAt,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// Flag updates are single-statement so two participants acting at once
// cannot clobber each other's flag.
func (r *conversationRepository) SetArchived(convID uuid.UUID, archived bool) error {
	_, err := r.db.Exec(`UPDATE conversations SET archived = $1, updated_at = NOW() WHERE id = $2`, archived, convID)
	return err
}

func (r *conversationRepository) SetBlocked(convID uuid.UUID, blocked bool) error {
	_, err := r.db.Exec(`UPDATE conversations SET blocked = $1, updated_at = NOW() WHERE id = $2`, blocked, convID)
	return err
}

func (r *conversationRepository) SetTransactionComplete(convID uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE conversations SET transaction_complete = true, updated_at = NOW() WHERE id = $1`, convID)
	return err
}

// AppendMessage assigns the next per-conversation sequence number under a
// lock on the conversation row, so concurrent senders cannot take the same
// seq and readers always see a total order.
func (r *conversationRepository) AppendMessage(msg *entity.Message) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT true FROM conversations WHERE id = $1 FOR UPDATE`, msg.ConversationID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("conversation %s: %w", msg.ConversationID, entity.ErrNotFound)
		}
		return err
	}

	err = tx.QueryRow(`
		INSERT INTO messages (id, conversation_id, sender_id, seq, content, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(seq), 0) + 1, $4, NOW()
		FROM messages WHERE conversation_id = $2
		RETURNING seq, created_at
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Content).Scan(&msg.Seq, &msg.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, msg.ConversationID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *conversationRepository) ListMessages(convID uuid.UUID) ([]entity.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, seq, content, read_at, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(query, convID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []entity.Message
	for rows.Next() {
		var m entity.Message
		err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Seq, &m.Content, &m.ReadAt, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkMessagesRead stamps everything the reader has not sent. Idempotent.
func (r *conversationRepository) MarkMessagesRead(convID, readerID uuid.UUID) error {
	query := `
		UPDATE messages
		SET read_at = NOW()
		WHERE conversation_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`
	_, err := r.db.Exec(query, convID, readerID)
	return err
}

package service

import (
	"fmt"
	"time"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"
	utils "book-market/pkg"

	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = fmt.Errorf("conversation %w", entity.ErrNotFound)
	ErrNotParticipant       = fmt.Errorf("you do not have permission: %w", entity.ErrForbidden)
	ErrConversationBlocked  = fmt.Errorf("conversation is blocked: %w", entity.ErrConflict)
	ErrSelfConversation     = fmt.Errorf("cannot start a conversation on own listing: %w", entity.ErrConflict)
)

// Publisher pushes events to connected clients. The websocket hub implements
// it; a nil publisher disables live push.
type Publisher interface {
	Publish(userID uuid.UUID, eventType string, payload interface{})
}

type ConversationService struct {
	convRepo     repo.ConversationRepository
	sellPostRepo repo.SellPostRepository
	notifier     *Notifier
	publisher    Publisher
}

func NewConversationService(convRepo repo.ConversationRepository, sellPostRepo repo.SellPostRepository, notifier *Notifier, publisher Publisher) *ConversationService {
	return &ConversationService{
		convRepo:     convRepo,
		sellPostRepo: sellPostRepo,
		notifier:     notifier,
		publisher:    publisher,
	}
}

// GetOrCreateConversation returns the unique thread for (sellPost, buyer),
// creating it on first contact. A concurrent create losing the unique-
// constraint race falls back to re-fetching the winner's row, so two
// concurrent calls always converge on one conversation.
func (s *ConversationService) GetOrCreateConversation(buyerID, sellPostID uuid.UUID) (*entity.Conversation, error) {
	conv, err := s.convRepo.GetConversationByPostAndBuyer(sellPostID, buyerID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	post, err := s.sellPostRepo.GetSellPostByID(sellPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrSellPostNotFound
	}
	if post.SellerID == buyerID {
		return nil, ErrSelfConversation
	}

	conv = &entity.Conversation{
		ID:         uuid.New(),
		SellPostID: sellPostID,
		SellerID:   post.SellerID,
		BuyerID:    buyerID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.convRepo.CreateConversation(conv); err != nil {
		if repo.IsUniqueViolation(err) {
			return s.convRepo.GetConversationByPostAndBuyer(sellPostID, buyerID)
		}
		return nil, err
	}

	s.notifier.Audit(buyerID, "conversation.create", "conversation", conv.ID, map[string]string{
		"sell_post_id": sellPostID.String(),
	})
	return conv, nil
}

func (s *ConversationService) SendMessage(senderID, convID uuid.UUID, input entity.SendMessageInput) (*entity.Message, error) {
	conv, err := s.getParticipantConversation(convID, senderID)
	if err != nil {
		return nil, err
	}
	if conv.Blocked {
		return nil, ErrConversationBlocked
	}

	msg := &entity.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        input.Content,
	}
	if err := s.convRepo.AppendMessage(msg); err != nil {
		return nil, err
	}
	utils.MessagesSent.Inc()

	recipient := conv.OtherParticipant(senderID)
	if s.publisher != nil {
		s.publisher.Publish(recipient, "message.new", msg)
	}
	s.notifier.Notify(recipient, entity.NotifMessageReceived, "New message",
		"You have a new message about a listing.", conv.ID)

	return msg, nil
}

func (s *ConversationService) ListMessages(userID, convID uuid.UUID) ([]entity.Message, error) {
	if _, err := s.getParticipantConversation(convID, userID); err != nil {
		return nil, err
	}
	return s.convRepo.ListMessages(convID)
}

// MarkRead stamps every message the reader did not send. Idempotent.
func (s *ConversationService) MarkRead(userID, convID uuid.UUID) error {
	if _, err := s.getParticipantConversation(convID, userID); err != nil {
		return err
	}
	return s.convRepo.MarkMessagesRead(convID, userID)
}

func (s *ConversationService) SetArchived(userID, convID uuid.UUID, archived bool) error {
	if _, err := s.getParticipantConversation(convID, userID); err != nil {
		return err
	}
	return s.convRepo.SetArchived(convID, archived)
}

func (s *ConversationService) SetBlocked(userID, convID uuid.UUID, blocked bool) error {
	if _, err := s.getParticipantConversation(convID, userID); err != nil {
		return err
	}
	return s.convRepo.SetBlocked(convID, blocked)
}

// MarkTransactionComplete flags the real-world handoff, unlocking reviews.
// Either party may call it; a second call is a no-op, not an error.
func (s *ConversationService) MarkTransactionComplete(userID, convID uuid.UUID) (*entity.Conversation, error) {
	conv, err := s.getParticipantConversation(convID, userID)
	if err != nil {
		return nil, err
	}
	if conv.TransactionComplete {
		return conv, nil
	}

	if err := s.convRepo.SetTransactionComplete(convID); err != nil {
		return nil, err
	}
	conv.TransactionComplete = true

	other := conv.OtherParticipant(userID)
	s.notifier.Notify(other, entity.NotifTransactionComplete, "Transaction complete",
		"The other party marked your transaction as complete. You can now leave a review.", conv.ID)
	s.notifier.Audit(userID, "conversation.complete", "conversation", conv.ID, nil)

	return conv, nil
}

func (s *ConversationService) ListConversations(userID uuid.UUID) ([]entity.ConversationSummary, error) {
	return s.convRepo.ListConversationsByUser(userID)
}

func (s *ConversationService) getParticipantConversation(convID, userID uuid.UUID) (*entity.Conversation, error) {
	conv, err := s.convRepo.GetConversationByID(convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

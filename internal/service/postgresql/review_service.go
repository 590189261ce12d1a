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
	ErrTransactionNotComplete = fmt.Errorf("transaction not complete: %w", entity.ErrForbidden)
	ErrNotBuyerReviewer       = fmt.Errorf("only the buyer can review the seller: %w", entity.ErrForbidden)
	ErrAlreadyReviewed        = fmt.Errorf("already reviewed: %w", entity.ErrConflict)
)

type ReviewService struct {
	reviewRepo repo.ReviewRepository
	convRepo   repo.ConversationRepository
	notifier   *Notifier
}

func NewReviewService(reviewRepo repo.ReviewRepository, convRepo repo.ConversationRepository, notifier *Notifier) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		convRepo:   convRepo,
		notifier:   notifier,
	}
}

// CreateReview records the buyer's rating of the seller. The gate is the
// conversation's transaction_complete flag; one review per (reviewer,
// conversation), double-checked against the unique constraint for races.
func (s *ReviewService) CreateReview(reviewerID, convID uuid.UUID, input entity.CreateReviewInput) (*entity.Review, error) {
	conv, err := s.convRepo.GetConversationByID(convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.TransactionComplete {
		return nil, ErrTransactionNotComplete
	}
	if conv.BuyerID != reviewerID {
		return nil, ErrNotBuyerReviewer
	}

	exists, err := s.reviewRepo.HasReview(reviewerID, convID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &entity.Review{
		ID:                  uuid.New(),
		ConversationID:      convID,
		ReviewerID:          reviewerID,
		SellerID:            conv.SellerID,
		Rating:              input.Rating,
		CommunicationRating: input.CommunicationRating,
		AccuracyRating:      input.AccuracyRating,
		MeetupRating:        input.MeetupRating,
		Comment:             input.Comment,
		CreatedAt:           time.Now(),
	}
	if err := s.reviewRepo.CreateReview(review); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	utils.ReviewsCreated.Inc()

	s.notifier.Audit(reviewerID, "review.create", "review", review.ID, map[string]string{
		"conversation_id": convID.String(),
	})

	return review, nil
}

func (s *ReviewService) GetSellerReviews(sellerID uuid.UUID) ([]entity.Review, error) {
	return s.reviewRepo.ListReviewsBySeller(sellerID)
}

// GetSellerRating computes the aggregate lazily at read time.
func (s *ReviewService) GetSellerRating(sellerID uuid.UUID) (*entity.SellerRating, error) {
	return s.reviewRepo.GetSellerRating(sellerID)
}

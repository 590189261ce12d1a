package service

import (
	"fmt"
	"time"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"

	"github.com/google/uuid"
)

var (
	ErrNotPostOwner      = fmt.Errorf("only the seller can manage this listing: %w", entity.ErrForbidden)
	ErrInvalidTransition = fmt.Errorf("listing status does not allow this transition: %w", entity.ErrConflict)
)

type SellPostService struct {
	sellPostRepo repo.SellPostRepository
	notifier     *Notifier
}

func NewSellPostService(sellPostRepo repo.SellPostRepository, notifier *Notifier) *SellPostService {
	return &SellPostService{
		sellPostRepo: sellPostRepo,
		notifier:     notifier,
	}
}

func (s *SellPostService) CreateSellPost(sellerID uuid.UUID, input entity.CreateSellPostInput, coverURL string) (*entity.SellPost, error) {
	post := &entity.SellPost{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Price:       input.Price,
		Negotiable:  input.Negotiable,
		Condition:   input.Condition,
		CoverURL:    coverURL,
		Status:      entity.SellPostAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.sellPostRepo.CreateSellPost(post); err != nil {
		return nil, err
	}

	s.notifier.Audit(sellerID, "sellpost.create", "sell_post", post.ID, nil)
	return post, nil
}

func (s *SellPostService) GetSellPost(postID uuid.UUID) (*entity.SellPost, error) {
	post, err := s.sellPostRepo.GetSellPostByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrSellPostNotFound
	}
	return post, nil
}

func (s *SellPostService) Browse(filter entity.SellPostFilter) ([]entity.SellPost, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.sellPostRepo.ListSellPosts(filter)
}

func (s *SellPostService) MyPosts(sellerID uuid.UUID) ([]entity.SellPost, error) {
	return s.sellPostRepo.ListSellPostsBySeller(sellerID)
}

// MarkSold finalizes a pending sale: PENDING -> SOLD.
func (s *SellPostService) MarkSold(sellerID, postID uuid.UUID) (*entity.SellPost, error) {
	return s.transition(sellerID, postID, entity.SellPostSold, "sellpost.mark_sold")
}

// ReleasePost falls a pending sale back to AVAILABLE when the handoff fell
// through. The status change and the rejection of the accepted offer happen
// in one repository transaction, so the post is never open for new offers
// while an old offer is still ACCEPTED.
func (s *SellPostService) ReleasePost(sellerID, postID uuid.UUID) (*entity.SellPost, error) {
	post, err := s.GetSellPost(postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotPostOwner
	}
	if !post.Status.CanTransitionTo(entity.SellPostAvailable) {
		return nil, ErrInvalidTransition
	}

	rejected, err := s.sellPostRepo.ReleaseSellPost(postID)
	if err != nil {
		return nil, err
	}
	post.Status = entity.SellPostAvailable

	for i := range rejected {
		s.notifier.Notify(rejected[i].BuyerID, entity.NotifOfferResponded, "Sale released",
			fmt.Sprintf("The sale of '%s' fell through; the listing is available again.", post.Title), rejected[i].ID)
	}
	s.notifier.Audit(sellerID, "sellpost.release", "sell_post", postID, nil)
	return post, nil
}

// RemoveSellPost hides a post that has offers or conversations, and deletes
// one that has none.
func (s *SellPostService) RemoveSellPost(sellerID, postID uuid.UUID) error {
	post, err := s.GetSellPost(postID)
	if err != nil {
		return err
	}
	if post.SellerID != sellerID {
		return ErrNotPostOwner
	}

	hasActivity, err := s.sellPostRepo.HasActivity(postID)
	if err != nil {
		return err
	}
	if hasActivity {
		if !post.Status.CanTransitionTo(entity.SellPostHidden) {
			return ErrInvalidTransition
		}
		if err := s.sellPostRepo.UpdateSellPostStatus(postID, entity.SellPostHidden); err != nil {
			return err
		}
	} else {
		if err := s.sellPostRepo.DeleteSellPost(postID); err != nil {
			return err
		}
	}

	s.notifier.Audit(sellerID, "sellpost.remove", "sell_post", postID, nil)
	return nil
}

func (s *SellPostService) transition(sellerID, postID uuid.UUID, to entity.SellPostStatus, action string) (*entity.SellPost, error) {
	post, err := s.GetSellPost(postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotPostOwner
	}
	if !post.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	if err := s.sellPostRepo.UpdateSellPostStatus(postID, to); err != nil {
		return nil, err
	}
	post.Status = to

	s.notifier.Audit(sellerID, action, "sell_post", postID, nil)
	return post, nil
}

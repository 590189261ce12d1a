package service

import (
	"database/sql"
	"fmt"
	"time"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"
	utils "book-market/pkg"

	"github.com/google/uuid"
)

// --- ERROR DEFINITIONS ---
var (
	ErrSellPostNotFound      = fmt.Errorf("sell post %w", entity.ErrNotFound)
	ErrOfferNotFound         = fmt.Errorf("offer %w", entity.ErrNotFound)
	ErrListingUnavailable    = fmt.Errorf("listing no longer available: %w", entity.ErrConflict)
	ErrOwnListing            = fmt.Errorf("cannot offer on own listing: %w", entity.ErrConflict)
	ErrActiveOfferExists     = fmt.Errorf("already has an active offer on this listing: %w", entity.ErrConflict)
	ErrNotSeller             = fmt.Errorf("only the seller can respond: %w", entity.ErrForbidden)
	ErrNotOfferOwner         = fmt.Errorf("only the buyer can act on this offer: %w", entity.ErrForbidden)
	ErrOfferClosed           = fmt.Errorf("offer is no longer open for response: %w", entity.ErrConflict)
	ErrWithdrawAccepted      = fmt.Errorf("cannot withdraw an accepted offer: %w", entity.ErrConflict)
	ErrCounterPriceRequired  = fmt.Errorf("counter price is required: %w", entity.ErrValidation)
	ErrInvalidResponseStatus = fmt.Errorf("status must be ACCEPTED, REJECTED or COUNTERED: %w", entity.ErrValidation)
	ErrNoCounterToAccept     = fmt.Errorf("offer has no counter to accept: %w", entity.ErrConflict)
)

type OfferService struct {
	offerRepo    repo.OfferRepository
	sellPostRepo repo.SellPostRepository
	notifier     *Notifier
}

func NewOfferService(offerRepo repo.OfferRepository, sellPostRepo repo.SellPostRepository, notifier *Notifier) *OfferService {
	return &OfferService{
		offerRepo:    offerRepo,
		sellPostRepo: sellPostRepo,
		notifier:     notifier,
	}
}

// CreateOffer opens a buyer's offer on an available listing. A post that has
// already gone PENDING refuses new offers.
func (s *OfferService) CreateOffer(buyerID uuid.UUID, input entity.CreateOfferInput) (*entity.BookOffer, error) {
	post, err := s.sellPostRepo.GetSellPostByID(input.SellPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrSellPostNotFound
	}
	if post.Status != entity.SellPostAvailable {
		return nil, ErrListingUnavailable
	}
	if post.SellerID == buyerID {
		return nil, ErrOwnListing
	}

	active, err := s.offerRepo.GetActiveOffer(post.ID, buyerID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveOfferExists
	}

	offer := &entity.BookOffer{
		ID:           uuid.New(),
		SellPostID:   post.ID,
		BuyerID:      buyerID,
		OfferedPrice: input.OfferedPrice,
		Message:      input.Message,
		Status:       entity.OfferPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.offerRepo.CreateOffer(offer); err != nil {
		// Two simultaneous offers from one buyer race past the active-offer
		// check; the partial unique index catches the loser.
		if repo.IsUniqueViolation(err) {
			return nil, ErrActiveOfferExists
		}
		return nil, err
	}
	utils.OffersCreated.Inc()

	s.notifier.Notify(post.SellerID, entity.NotifOfferCreated, "New offer received",
		fmt.Sprintf("You received an offer of %.2f on '%s'.", offer.OfferedPrice, post.Title), offer.ID)
	s.notifier.Audit(buyerID, "offer.create", "book_offer", offer.ID, map[string]string{
		"sell_post_id": post.ID.String(),
	})

	return offer, nil
}

// RespondToOffer is the seller side of the negotiation. Acceptance is
// delegated to the repository's atomic accept; rejection and countering are
// plain updates. A COUNTERED offer stays respondable, so a seller may
// counter and later accept the same offer.
func (s *OfferService) RespondToOffer(sellerID, offerID uuid.UUID, input entity.RespondOfferInput) (*entity.BookOffer, error) {
	offer, post, err := s.getOfferWithPost(offerID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotSeller
	}
	if !offer.Status.Respondable() {
		return nil, ErrOfferClosed
	}

	switch input.Status {
	case entity.OfferAccepted:
		accepted, err := s.offerRepo.AcceptOffer(offer.ID, post.ID, input.ResponseMessage)
		if err != nil {
			return nil, err
		}
		utils.OffersAccepted.Inc()
		s.notifier.Notify(offer.BuyerID, entity.NotifOfferResponded, "Offer accepted",
			fmt.Sprintf("Your offer on '%s' was accepted at %.2f.", post.Title, accepted.OfferedPrice), offer.ID)
		s.notifier.Audit(sellerID, "offer.accept", "book_offer", offer.ID, nil)
		return accepted, nil

	case entity.OfferRejected:
		offer.Status = entity.OfferRejected
		offer.ResponseMessage = input.ResponseMessage
		offer.RespondedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := s.offerRepo.UpdateOffer(offer); err != nil {
			return nil, err
		}
		s.notifier.Notify(offer.BuyerID, entity.NotifOfferResponded, "Offer rejected",
			fmt.Sprintf("Your offer on '%s' was rejected.", post.Title), offer.ID)
		s.notifier.Audit(sellerID, "offer.reject", "book_offer", offer.ID, nil)
		return offer, nil

	case entity.OfferCountered:
		if input.CounterPrice <= 0 {
			return nil, ErrCounterPriceRequired
		}
		offer.Status = entity.OfferCountered
		offer.OfferedPrice = input.CounterPrice
		offer.ResponseMessage = input.ResponseMessage
		offer.RespondedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := s.offerRepo.UpdateOffer(offer); err != nil {
			return nil, err
		}
		s.notifier.Notify(offer.BuyerID, entity.NotifOfferResponded, "Counter offer",
			fmt.Sprintf("The seller countered at %.2f on '%s'.", offer.OfferedPrice, post.Title), offer.ID)
		s.notifier.Audit(sellerID, "offer.counter", "book_offer", offer.ID, map[string]string{
			"counter_price": fmt.Sprintf("%.2f", input.CounterPrice),
		})
		return offer, nil

	default:
		return nil, ErrInvalidResponseStatus
	}
}

// AcceptCounter lets the buyer close a COUNTERED offer at the seller's
// price. It runs the same atomic acceptance as a seller-side accept.
func (s *OfferService) AcceptCounter(buyerID, offerID uuid.UUID) (*entity.BookOffer, error) {
	offer, post, err := s.getOfferWithPost(offerID)
	if err != nil {
		return nil, err
	}
	if offer.BuyerID != buyerID {
		return nil, ErrNotOfferOwner
	}
	if offer.Status != entity.OfferCountered {
		return nil, ErrNoCounterToAccept
	}

	accepted, err := s.offerRepo.AcceptOffer(offer.ID, post.ID, "counter accepted by buyer")
	if err != nil {
		return nil, err
	}
	utils.OffersAccepted.Inc()

	s.notifier.Notify(post.SellerID, entity.NotifOfferResponded, "Counter accepted",
		fmt.Sprintf("The buyer accepted your counter of %.2f on '%s'.", accepted.OfferedPrice, post.Title), offer.ID)
	s.notifier.Audit(buyerID, "offer.accept_counter", "book_offer", offer.ID, nil)

	return accepted, nil
}

// WithdrawOffer terminates a buyer's own open offer. Accepted offers are
// final here; releasing an accepted sale goes through the seller's
// release/mark-sold path.
func (s *OfferService) WithdrawOffer(buyerID, offerID uuid.UUID) (*entity.BookOffer, error) {
	offer, post, err := s.getOfferWithPost(offerID)
	if err != nil {
		return nil, err
	}
	if offer.BuyerID != buyerID {
		return nil, ErrNotOfferOwner
	}
	if offer.Status == entity.OfferAccepted {
		return nil, ErrWithdrawAccepted
	}
	if !offer.Status.Respondable() {
		return nil, ErrOfferClosed
	}

	offer.Status = entity.OfferWithdrawn
	offer.RespondedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := s.offerRepo.UpdateOffer(offer); err != nil {
		return nil, err
	}

	s.notifier.Notify(post.SellerID, entity.NotifOfferWithdrawn, "Offer withdrawn",
		fmt.Sprintf("An offer on '%s' was withdrawn.", post.Title), offer.ID)
	s.notifier.Audit(buyerID, "offer.withdraw", "book_offer", offer.ID, nil)

	return offer, nil
}

func (s *OfferService) GetMyOffers(buyerID uuid.UUID) ([]entity.BookOffer, error) {
	return s.offerRepo.GetOffersByBuyerID(buyerID)
}

// GetOffersForPost lists all offers on a post, seller only.
func (s *OfferService) GetOffersForPost(sellerID, sellPostID uuid.UUID) ([]entity.BookOffer, error) {
	post, err := s.sellPostRepo.GetSellPostByID(sellPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrSellPostNotFound
	}
	if post.SellerID != sellerID {
		return nil, ErrNotSeller
	}
	return s.offerRepo.GetOffersBySellPostID(sellPostID)
}

func (s *OfferService) getOfferWithPost(offerID uuid.UUID) (*entity.BookOffer, *entity.SellPost, error) {
	offer, err := s.offerRepo.GetOfferByID(offerID)
	if err != nil {
		return nil, nil, err
	}
	if offer == nil {
		return nil, nil, ErrOfferNotFound
	}
	post, err := s.sellPostRepo.GetSellPostByID(offer.SellPostID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrSellPostNotFound
	}
	return offer, post, nil
}

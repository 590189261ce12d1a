package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDB implements just enough of the offer and sell post repositories for
// exercising the HTTP status mapping. Tests here are about the handler layer;
// the negotiation semantics are covered in the service package.
type stubDB struct {
	posts  map[uuid.UUID]*entity.SellPost
	offers map[uuid.UUID]*entity.BookOffer
}

func newStubDB() *stubDB {
	return &stubDB{
		posts:  make(map[uuid.UUID]*entity.SellPost),
		offers: make(map[uuid.UUID]*entity.BookOffer),
	}
}

func (s *stubDB) CreateSellPost(post *entity.SellPost) error { s.posts[post.ID] = post; return nil }
func (s *stubDB) GetSellPostByID(id uuid.UUID) (*entity.SellPost, error) {
	return s.posts[id], nil
}
func (s *stubDB) ListSellPosts(entity.SellPostFilter) ([]entity.SellPost, error) { return nil, nil }
func (s *stubDB) ListSellPostsBySeller(uuid.UUID) ([]entity.SellPost, error)     { return nil, nil }
func (s *stubDB) UpdateSellPostStatus(id uuid.UUID, status entity.SellPostStatus) error {
	if p, ok := s.posts[id]; ok {
		p.Status = status
	}
	return nil
}
func (s *stubDB) ReleaseSellPost(id uuid.UUID) ([]entity.BookOffer, error) {
	if p, ok := s.posts[id]; ok {
		p.Status = entity.SellPostAvailable
	}
	return nil, nil
}
func (s *stubDB) SetCoverURL(uuid.UUID, string) error { return nil }
func (s *stubDB) HasActivity(uuid.UUID) (bool, error) { return false, nil }
func (s *stubDB) DeleteSellPost(id uuid.UUID) error   { delete(s.posts, id); return nil }

func (s *stubDB) CreateOffer(offer *entity.BookOffer) error { s.offers[offer.ID] = offer; return nil }
func (s *stubDB) GetOfferByID(id uuid.UUID) (*entity.BookOffer, error) {
	return s.offers[id], nil
}
func (s *stubDB) GetActiveOffer(postID, buyerID uuid.UUID) (*entity.BookOffer, error) {
	for _, o := range s.offers {
		if o.SellPostID == postID && o.BuyerID == buyerID && o.Status.Active() {
			return o, nil
		}
	}
	return nil, nil
}
func (s *stubDB) GetOffersByBuyerID(uuid.UUID) ([]entity.BookOffer, error)    { return nil, nil }
func (s *stubDB) GetOffersBySellPostID(uuid.UUID) ([]entity.BookOffer, error) { return nil, nil }
func (s *stubDB) UpdateOffer(offer *entity.BookOffer) error {
	if o, ok := s.offers[offer.ID]; ok {
		*o = *offer
	}
	return nil
}
func (s *stubDB) AcceptOffer(offerID, sellPostID uuid.UUID, responseMessage string) (*entity.BookOffer, error) {
	offer := s.offers[offerID]
	offer.Status = entity.OfferAccepted
	offer.ResponseMessage = responseMessage
	s.posts[sellPostID].Status = entity.SellPostPending
	return offer, nil
}

type noopLog struct{}

func (noopLog) SaveActivity(*entity.ActivityLog) error                         { return nil }
func (noopLog) ListActivities(int64) ([]entity.ActivityLog, error)             { return nil, nil }
func (noopLog) SaveNotification(*entity.Notification) error                    { return nil }
func (noopLog) ListNotifications(string, int64) ([]entity.Notification, error) { return nil, nil }
func (noopLog) MarkNotificationsRead(string) error                             { return nil }

func setupOfferRouter(db *stubDB, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewOfferService(db, db, service.NewNotifier(noopLog{}))
	h := NewOfferHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/api/offers", h.CreateOffer)
	r.POST("/api/offers/:id/respond", h.RespondToOffer)
	r.DELETE("/api/offers/:id", h.WithdrawOffer)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func stubPost(db *stubDB, sellerID uuid.UUID) *entity.SellPost {
	post := &entity.SellPost{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Title:     "Refactoring",
		Status:    entity.SellPostAvailable,
		Price:     25,
		CreatedAt: time.Now(),
	}
	db.posts[post.ID] = post
	return post
}

func TestCreateOfferStatusCodes(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()

	t.Run("created", func(t *testing.T) {
		db := newStubDB()
		post := stubPost(db, seller)
		w := doJSON(t, setupOfferRouter(db, buyer), http.MethodPost, "/api/offers",
			gin.H{"sell_post_id": post.ID, "offered_price": 20})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown post is 404", func(t *testing.T) {
		db := newStubDB()
		w := doJSON(t, setupOfferRouter(db, buyer), http.MethodPost, "/api/offers",
			gin.H{"sell_post_id": uuid.New(), "offered_price": 20})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("own listing is 409", func(t *testing.T) {
		db := newStubDB()
		post := stubPost(db, seller)
		w := doJSON(t, setupOfferRouter(db, seller), http.MethodPost, "/api/offers",
			gin.H{"sell_post_id": post.ID, "offered_price": 20})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing price is 400", func(t *testing.T) {
		db := newStubDB()
		post := stubPost(db, seller)
		w := doJSON(t, setupOfferRouter(db, buyer), http.MethodPost, "/api/offers",
			gin.H{"sell_post_id": post.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRespondToOfferStatusCodes(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()

	seed := func(t *testing.T) (*stubDB, *entity.BookOffer) {
		db := newStubDB()
		post := stubPost(db, seller)
		offer := &entity.BookOffer{
			ID:         uuid.New(),
			SellPostID: post.ID,
			BuyerID:    buyer,
			Status:     entity.OfferPending,
		}
		db.offers[offer.ID] = offer
		return db, offer
	}

	t.Run("accept is 200", func(t *testing.T) {
		db, offer := seed(t)
		w := doJSON(t, setupOfferRouter(db, seller), http.MethodPost, "/api/offers/"+offer.ID.String()+"/respond",
			gin.H{"status": "ACCEPTED"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("buyer responding is 403", func(t *testing.T) {
		db, offer := seed(t)
		w := doJSON(t, setupOfferRouter(db, buyer), http.MethodPost, "/api/offers/"+offer.ID.String()+"/respond",
			gin.H{"status": "ACCEPTED"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("counter without price is 400", func(t *testing.T) {
		db, offer := seed(t)
		w := doJSON(t, setupOfferRouter(db, seller), http.MethodPost, "/api/offers/"+offer.ID.String()+"/respond",
			gin.H{"status": "COUNTERED"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad offer id is 400", func(t *testing.T) {
		db, _ := seed(t)
		w := doJSON(t, setupOfferRouter(db, seller), http.MethodPost, "/api/offers/not-a-uuid/respond",
			gin.H{"status": "ACCEPTED"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWithdrawOfferStatusCodes(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()

	db := newStubDB()
	post := stubPost(db, seller)
	offer := &entity.BookOffer{
		ID:         uuid.New(),
		SellPostID: post.ID,
		BuyerID:    buyer,
		Status:     entity.OfferAccepted,
	}
	db.offers[offer.ID] = offer

	// Withdrawing an accepted offer conflicts.
	w := doJSON(t, setupOfferRouter(db, buyer), http.MethodDelete, "/api/offers/"+offer.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	offer.Status = entity.OfferPending
	w = doJSON(t, setupOfferRouter(db, buyer), http.MethodDelete, "/api/offers/"+offer.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// memDB is an in-memory stand-in for the postgres repositories. It implements
// every repository interface on one struct, sharing state the way the real
// tables share a database, so cross-table operations like AcceptOffer behave
// like the SQL transaction they replace.
type memDB struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	posts    map[uuid.UUID]*entity.SellPost
	offers   map[uuid.UUID]*entity.BookOffer
	offerSeq []uuid.UUID
	convs    map[uuid.UUID]*entity.Conversation
	messages map[uuid.UUID][]entity.Message
	reviews  map[uuid.UUID]*entity.Review
	books    map[uuid.UUID]*entity.Book
	loans    map[uuid.UUID]*entity.Loan
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[uuid.UUID]*entity.User),
		posts:    make(map[uuid.UUID]*entity.SellPost),
		offers:   make(map[uuid.UUID]*entity.BookOffer),
		convs:    make(map[uuid.UUID]*entity.Conversation),
		messages: make(map[uuid.UUID][]entity.Message),
		reviews:  make(map[uuid.UUID]*entity.Review),
		books:    make(map[uuid.UUID]*entity.Book),
		loans:    make(map[uuid.UUID]*entity.Loan),
	}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

// Loan errors mirroring the kinds the SQL repository wraps.
var (
	errNoCopies        = fmt.Errorf("no copies available: %w", entity.ErrConflict)
	errAlreadyOnLoan   = fmt.Errorf("book already on loan to this member: %w", entity.ErrConflict)
	errLoanOtherMember = fmt.Errorf("loan belongs to another member: %w", entity.ErrForbidden)
	errLoanReturned    = fmt.Errorf("loan already returned: %w", entity.ErrConflict)
)

// --- UserRepository ---

func (m *memDB) CreateUser(user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return uniqueViolation()
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memDB) GetUserByID(userID uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memDB) GetUserByUsername(username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListUsers(limit, offset int) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDB) SetUserActive(userID uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Active = active
	}
	return nil
}

// --- SellPostRepository ---

func (m *memDB) CreateSellPost(post *entity.SellPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memDB) GetSellPostByID(postID uuid.UUID) (*entity.SellPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memDB) ListSellPosts(filter entity.SellPostFilter) ([]entity.SellPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.SellPost
	for _, p := range m.posts {
		if p.Status != entity.SellPostAvailable {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Keyword)) &&
			!strings.Contains(strings.ToLower(p.Author), strings.ToLower(filter.Keyword)) {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDB) ListSellPostsBySeller(sellerID uuid.UUID) ([]entity.SellPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.SellPost
	for _, p := range m.posts {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memDB) UpdateSellPostStatus(postID uuid.UUID, status entity.SellPostStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[postID]; ok {
		p.Status = status
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memDB) ReleaseSellPost(postID uuid.UUID) ([]entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return nil, ErrSellPostNotFound
	}
	if !post.Status.CanTransitionTo(entity.SellPostAvailable) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	post.Status = entity.SellPostAvailable
	post.UpdatedAt = now

	var rejected []entity.BookOffer
	for _, id := range m.offerSeq {
		if o := m.offers[id]; o != nil && o.SellPostID == postID && o.Status == entity.OfferAccepted {
			o.Status = entity.OfferRejected
			o.RespondedAt.Time, o.RespondedAt.Valid = now, true
			o.UpdatedAt = now
			rejected = append(rejected, *o)
		}
	}
	return rejected, nil
}

func (m *memDB) SetCoverURL(postID uuid.UUID, coverURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[postID]; ok {
		p.CoverURL = coverURL
	}
	return nil
}

func (m *memDB) HasActivity(postID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.SellPostID == postID {
			return true, nil
		}
	}
	for _, c := range m.convs {
		if c.SellPostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) DeleteSellPost(postID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, postID)
	return nil
}

// --- OfferRepository ---

func (m *memDB) CreateOffer(offer *entity.BookOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.SellPostID == offer.SellPostID && o.BuyerID == offer.BuyerID && o.Status.Active() {
			return uniqueViolation()
		}
	}
	cp := *offer
	m.offers[offer.ID] = &cp
	m.offerSeq = append(m.offerSeq, offer.ID)
	return nil
}

func (m *memDB) GetOfferByID(offerID uuid.UUID) (*entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memDB) GetActiveOffer(sellPostID, buyerID uuid.UUID) (*entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.SellPostID == sellPostID && o.BuyerID == buyerID && o.Status.Active() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) GetOffersByBuyerID(buyerID uuid.UUID) ([]entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.BookOffer
	for _, id := range m.offerSeq {
		if o := m.offers[id]; o != nil && o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memDB) GetOffersBySellPostID(sellPostID uuid.UUID) ([]entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.BookOffer
	for _, id := range m.offerSeq {
		if o := m.offers[id]; o != nil && o.SellPostID == sellPostID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memDB) UpdateOffer(offer *entity.BookOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.offers[offer.ID]; ok {
		o.Status = offer.Status
		o.OfferedPrice = offer.OfferedPrice
		o.ResponseMessage = offer.ResponseMessage
		o.RespondedAt = offer.RespondedAt
		o.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memDB) AcceptOffer(offerID, sellPostID uuid.UUID, responseMessage string) (*entity.BookOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[sellPostID]
	if !ok {
		return nil, ErrSellPostNotFound
	}
	if !post.Status.CanTransitionTo(entity.SellPostPending) {
		return nil, ErrListingUnavailable
	}
	offer, ok := m.offers[offerID]
	if !ok {
		return nil, ErrOfferNotFound
	}
	if !offer.Status.Respondable() {
		return nil, ErrOfferClosed
	}

	now := time.Now()
	offer.Status = entity.OfferAccepted
	offer.ResponseMessage = responseMessage
	offer.RespondedAt.Time, offer.RespondedAt.Valid = now, true
	offer.UpdatedAt = now

	for _, o := range m.offers {
		if o.SellPostID == sellPostID && o.ID != offerID && o.Status.Respondable() {
			o.Status = entity.OfferRejected
			o.RespondedAt.Time, o.RespondedAt.Valid = now, true
			o.UpdatedAt = now
		}
	}
	post.Status = entity.SellPostPending
	post.UpdatedAt = now

	cp := *offer
	return &cp, nil
}

// --- ConversationRepository ---

func (m *memDB) CreateConversation(conv *entity.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.convs {
		if c.SellPostID == conv.SellPostID && c.BuyerID == conv.BuyerID {
			return uniqueViolation()
		}
	}
	cp := *conv
	m.convs[conv.ID] = &cp
	return nil
}

func (m *memDB) GetConversationByID(convID uuid.UUID) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[convID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memDB) GetConversationByPostAndBuyer(sellPostID, buyerID uuid.UUID) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.convs {
		if c.SellPostID == sellPostID && c.BuyerID == buyerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListConversationsByUser(userID uuid.UUID) ([]entity.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ConversationSummary
	for _, c := range m.convs {
		if c.SellerID != userID && c.BuyerID != userID {
			continue
		}
		unread := 0
		for _, msg := range m.messages[c.ID] {
			if msg.SenderID != userID && !msg.ReadAt.Valid {
				unread++
			}
		}
		out = append(out, entity.ConversationSummary{Conversation: *c, UnreadCount: unread})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memDB) SetArchived(convID uuid.UUID, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[convID]; ok {
		c.Archived = archived
	}
	return nil
}

func (m *memDB) SetBlocked(convID uuid.UUID, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[convID]; ok {
		c.Blocked = blocked
	}
	return nil
}

func (m *memDB) SetTransactionComplete(convID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[convID]; ok {
		c.TransactionComplete = true
	}
	return nil
}

func (m *memDB) AppendMessage(msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[msg.ConversationID]; !ok {
		return ErrConversationNotFound
	}
	msg.Seq = int64(len(m.messages[msg.ConversationID]) + 1)
	msg.CreatedAt = time.Now()
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	return nil
}

func (m *memDB) ListMessages(convID uuid.UUID) ([]entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Message, len(m.messages[convID]))
	copy(out, m.messages[convID])
	return out, nil
}

func (m *memDB) MarkMessagesRead(convID, readerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[convID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].ReadAt.Valid {
			msgs[i].ReadAt.Time, msgs[i].ReadAt.Valid = time.Now(), true
		}
	}
	return nil
}

// --- ReviewRepository ---

func (m *memDB) CreateReview(review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ReviewerID == review.ReviewerID && r.ConversationID == review.ConversationID {
			return uniqueViolation()
		}
	}
	cp := *review
	m.reviews[review.ID] = &cp
	return nil
}

func (m *memDB) HasReview(reviewerID, conversationID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ReviewerID == reviewerID && r.ConversationID == conversationID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) ListReviewsBySeller(sellerID uuid.UUID) ([]entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Review
	for _, r := range m.reviews {
		if r.SellerID == sellerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memDB) GetSellerRating(sellerID uuid.UUID) (*entity.SellerRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rating := &entity.SellerRating{SellerID: sellerID}
	sum := 0
	for _, r := range m.reviews {
		if r.SellerID == sellerID {
			rating.ReviewCount++
			sum += r.Rating
		}
	}
	if rating.ReviewCount > 0 {
		rating.Average = float64(sum) / float64(rating.ReviewCount)
	}
	return rating, nil
}

// --- BookRepository ---

func (m *memDB) CreateBook(book *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *book
	m.books[book.ID] = &cp
	return nil
}

func (m *memDB) GetBookByID(bookID uuid.UUID) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[bookID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memDB) ListBooks(filter entity.BookFilter) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Book
	for _, b := range m.books {
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Keyword)) &&
			!strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Keyword)) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memDB) ListCategories() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, b := range m.books {
		if _, ok := seen[b.Category]; !ok {
			seen[b.Category] = struct{}{}
			out = append(out, b.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- LoanRepository ---

func (m *memDB) BorrowBook(loan *entity.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[loan.BookID]
	if !ok {
		return ErrBookNotFound
	}
	if book.AvailableCopies <= 0 {
		return errNoCopies
	}
	for _, l := range m.loans {
		if l.BookID == loan.BookID && l.UserID == loan.UserID && l.Status == entity.LoanActive {
			return errAlreadyOnLoan
		}
	}
	book.AvailableCopies--
	cp := *loan
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.loans[loan.ID] = &cp
	return nil
}

func (m *memDB) ReturnBook(loanID, userID uuid.UUID) (*entity.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[loanID]
	if !ok {
		return nil, ErrLoanNotFound
	}
	if loan.UserID != userID {
		return nil, errLoanOtherMember
	}
	if loan.Status != entity.LoanActive && loan.Status != entity.LoanOverdue {
		return nil, errLoanReturned
	}
	loan.Status = entity.LoanReturned
	loan.ReturnedAt.Time, loan.ReturnedAt.Valid = time.Now(), true
	if book, ok := m.books[loan.BookID]; ok {
		book.AvailableCopies++
	}
	cp := *loan
	return &cp, nil
}

func (m *memDB) GetLoanByID(loanID uuid.UUID) (*entity.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[loanID]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memDB) ListLoansByUser(userID uuid.UUID) ([]entity.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Loan
	for _, l := range m.loans {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// --- LogRepository ---

type memLog struct {
	mu            sync.Mutex
	activities    []entity.ActivityLog
	notifications []entity.Notification
}

func (m *memLog) SaveActivity(log *entity.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, *log)
	return nil
}

func (m *memLog) ListActivities(limit int64) ([]entity.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.ActivityLog, len(m.activities))
	copy(out, m.activities)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLog) SaveNotification(noti *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *noti)
	return nil
}

func (m *memLog) ListNotifications(userID string, limit int64) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLog) MarkNotificationsRead(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *memLog) notificationsFor(userID uuid.UUID) []entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID.String() {
			out = append(out, n)
		}
	}
	return out
}

// --- Publisher ---

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	UserID    uuid.UUID
	EventType string
	Payload   interface{}
}

func (p *memPublisher) Publish(userID uuid.UUID, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, EventType: eventType, Payload: payload})
}

// --- test helpers ---

func newTestNotifier() (*Notifier, *memLog) {
	logs := &memLog{}
	return NewNotifier(logs), logs
}

func seedPost(db *memDB, sellerID uuid.UUID, status entity.SellPostStatus) *entity.SellPost {
	post := &entity.SellPost{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Title:     "The Go Programming Language",
		Author:    "Donovan & Kernighan",
		Price:     30,
		Condition: entity.ConditionGood,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	db.posts[post.ID] = post
	return post
}

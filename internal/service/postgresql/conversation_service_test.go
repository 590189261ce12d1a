package service

import (
	"testing"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationService(db *memDB) (*ConversationService, *memLog, *memPublisher) {
	notifier, logs := newTestNotifier()
	pub := &memPublisher{}
	return NewConversationService(db, db, notifier, pub), logs, pub
}

func TestGetOrCreateConversation(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)

	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)
	assert.Equal(t, seller, conv.SellerID)
	assert.Equal(t, buyer, conv.BuyerID)

	// A second contact lands in the same thread.
	again, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)

	// A different buyer gets their own thread.
	other, err := svc.GetOrCreateConversation(uuid.New(), post.ID)
	require.NoError(t, err)
	assert.NotEqual(t, conv.ID, other.ID)
}

// lostRaceConvRepo misses the initial lookup once, as when another request
// inserts the conversation between the lookup and the insert.
type lostRaceConvRepo struct {
	repo.ConversationRepository
	missed bool
}

func (r *lostRaceConvRepo) GetConversationByPostAndBuyer(sellPostID, buyerID uuid.UUID) (*entity.Conversation, error) {
	if !r.missed {
		r.missed = true
		return nil, nil
	}
	return r.ConversationRepository.GetConversationByPostAndBuyer(sellPostID, buyerID)
}

func TestGetOrCreateConversationConcurrentInsert(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)

	existing, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	// The insert hits the (sell_post_id, buyer_id) unique constraint and the
	// existing thread is returned instead of the error.
	notifier, _ := newTestNotifier()
	racing := NewConversationService(&lostRaceConvRepo{ConversationRepository: db}, db, notifier, &memPublisher{})
	conv, err := racing.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, existing.ID, conv.ID)
}

func TestGetOrCreateConversationRefusals(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)

	_, err := svc.GetOrCreateConversation(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrSellPostNotFound)

	_, err = svc.GetOrCreateConversation(seller, post.ID)
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestSendMessage(t *testing.T) {
	db := newMemDB()
	svc, logs, pub := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)
	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	first, err := svc.SendMessage(buyer, conv.ID, entity.SendMessageInput{Content: "is this still available?"})
	require.NoError(t, err)
	second, err := svc.SendMessage(seller, conv.ID, entity.SendMessageInput{Content: "yes it is"})
	require.NoError(t, err)
	third, err := svc.SendMessage(buyer, conv.ID, entity.SendMessageInput{Content: "great"})
	require.NoError(t, err)

	// Sequence numbers give a total order regardless of timestamps.
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, int64(3), third.Seq)

	msgs, err := svc.ListMessages(seller, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}

	// Each message was pushed live to the counterparty.
	require.Len(t, pub.events, 3)
	assert.Equal(t, seller, pub.events[0].UserID)
	assert.Equal(t, "message.new", pub.events[0].EventType)
	assert.Equal(t, buyer, pub.events[1].UserID)

	svc.notifier.Flush()
	assert.Len(t, logs.notificationsFor(seller), 2)
	assert.Len(t, logs.notificationsFor(buyer), 1)
}

func TestSendMessageRefusals(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)
	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(uuid.New(), conv.ID, entity.SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.SendMessage(buyer, uuid.New(), entity.SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrConversationNotFound)

	require.NoError(t, svc.SetBlocked(seller, conv.ID, true))
	_, err = svc.SendMessage(buyer, conv.ID, entity.SendMessageInput{Content: "hello?"})
	assert.ErrorIs(t, err, ErrConversationBlocked)

	// Unblocking restores the thread.
	require.NoError(t, svc.SetBlocked(seller, conv.ID, false))
	_, err = svc.SendMessage(buyer, conv.ID, entity.SendMessageInput{Content: "hello again"})
	assert.NoError(t, err)
}

func TestMarkReadAndUnreadCounts(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)
	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(buyer, conv.ID, entity.SendMessageInput{Content: "ping"})
		require.NoError(t, err)
	}

	summaries, err := svc.ListConversations(seller)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].UnreadCount)

	// The sender's own messages are never unread for them.
	summaries, err = svc.ListConversations(buyer)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].UnreadCount)

	require.NoError(t, svc.MarkRead(seller, conv.ID))
	summaries, err = svc.ListConversations(seller)
	require.NoError(t, err)
	assert.Equal(t, 0, summaries[0].UnreadCount)

	// MarkRead is idempotent.
	require.NoError(t, svc.MarkRead(seller, conv.ID))

	assert.ErrorIs(t, svc.MarkRead(uuid.New(), conv.ID), ErrNotParticipant)
}

func TestMarkTransactionComplete(t *testing.T) {
	db := newMemDB()
	svc, logs, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)
	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	done, err := svc.MarkTransactionComplete(seller, conv.ID)
	require.NoError(t, err)
	assert.True(t, done.TransactionComplete)

	// Completing twice is a no-op, and the counterparty is told only once.
	done, err = svc.MarkTransactionComplete(buyer, conv.ID)
	require.NoError(t, err)
	assert.True(t, done.TransactionComplete)

	svc.notifier.Flush()
	var completeNotis int
	for _, n := range logs.notificationsFor(buyer) {
		if n.Type == entity.NotifTransactionComplete {
			completeNotis++
		}
	}
	assert.Equal(t, 1, completeNotis)
	assert.Empty(t, logs.notificationsFor(seller))
}

func TestArchiveConversation(t *testing.T) {
	db := newMemDB()
	svc, _, _ := newConversationService(db)

	seller := uuid.New()
	buyer := uuid.New()
	post := seedPost(db, seller, entity.SellPostAvailable)
	conv, err := svc.GetOrCreateConversation(buyer, post.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetArchived(uuid.New(), conv.ID, true), ErrNotParticipant)

	require.NoError(t, svc.SetArchived(buyer, conv.ID, true))
	got, err := db.GetConversationByID(conv.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	// Archiving does not stop messages, unlike blocking.
	_, err = svc.SendMessage(seller, conv.ID, entity.SendMessageInput{Content: "still here"})
	assert.NoError(t, err)
}

package conversation

import (
	"context"
	"sync"
	"testing"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProperties map[uint]string

func (s stubProperties) GetPropertyOwnerID(_ context.Context, id uint) (string, error) {
	owner, ok := s[id]
	if !ok {
		return "", common.ErrNotFound.WithDetails("Property not found.")
	}
	return owner, nil
}

type pushed struct {
	userID string
	event  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []pushed
}

func (n *recordingNotifier) Notify(userID, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, pushed{userID: userID, event: event})
}

func setup(t *testing.T) (*ServiceImplementation, *recordingNotifier) {
	t.Helper()
	db, err := database.OpenInMemory(&Conversation{}, &Message{})
	require.NoError(t, err)
	n := &recordingNotifier{}
	return NewService(NewGORMRepository(db), stubProperties{1: "seller", 2: "seller"}, n, zap.NewNop()), n
}

func TestStart_IsIdempotent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 1})
	require.NoError(t, err)
	second, err := svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 1, Message: "still available?"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "seller", second.SellerID)
	assert.NotNil(t, second.LastMessageAt)
}

func TestStart_Rejections(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "seller", StartConversationRequest{PropertyID: 1})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 99})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSendAndRead(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	conv, err := svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 1, Message: "hi"})
	require.NoError(t, err)
	reply, err := svc.Send(ctx, "seller", conv.ID, "hello back")
	require.NoError(t, err)
	assert.Equal(t, "buyer", reply.ReceiverID)
	_, err = svc.Send(ctx, "seller", conv.ID, "when can you visit?")
	require.NoError(t, err)

	n, err := svc.UnreadCount(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = svc.UnreadCount(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	summaries, err := svc.ListMine(ctx, "buyer", 0, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "when can you visit?", summaries[0].LastMessage.Content)

	marked, err := svc.MarkRead(ctx, "buyer", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	n, err = svc.UnreadCount(ctx, "buyer")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = svc.UnreadCount(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "marking read only touches messages addressed to the caller")

	assert.Equal(t, []pushed{
		{userID: "seller", event: EventMessageNew},
		{userID: "buyer", event: EventMessageNew},
		{userID: "buyer", event: EventMessageNew},
		{userID: "seller", event: EventMessagesRead},
	}, notifier.events)
}

func TestListMessages_PaginatesBefore(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	conv, err := svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 2})
	require.NoError(t, err)
	var ids []uint
	for _, text := range []string{"one", "two", "three", "four"} {
		m, err := svc.Send(ctx, "buyer", conv.ID, text)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	page, err := svc.ListMessages(ctx, "seller", conv.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Content)
	assert.Equal(t, "four", page[1].Content)

	older, err := svc.ListMessages(ctx, "seller", conv.ID, page[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, ids[0], older[0].ID)
	assert.Equal(t, ids[1], older[1].ID)
}

func TestNonParticipantGetsNotFound(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	conv, err := svc.Start(ctx, "buyer", StartConversationRequest{PropertyID: 1})
	require.NoError(t, err)

	_, err = svc.ListMessages(ctx, "intruder", conv.ID, 0, 10)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Send(ctx, "intruder", conv.ID, "hey")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.MarkRead(ctx, "intruder", conv.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSend_EmptyContent(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Send(context.Background(), "buyer", 1, "   ")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

package conversation

import (
	"context"
	"strings"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/shared"

	"go.uber.org/zap"
)

const (
	EventMessageNew   = "message.new"
	EventMessagesRead = "messages.read"
)

// Notifier pushes events to connected users. Delivery is best effort.
type Notifier interface {
	Notify(userID, event string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, interface{}) {}

// Service defines the messaging operations.
type Service interface {
	Start(ctx context.Context, buyerID string, req StartConversationRequest) (*Conversation, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]Summary, error)
	ListMessages(ctx context.Context, userID string, conversationID, beforeID uint, limit int) ([]Message, error)
	Send(ctx context.Context, senderID string, conversationID uint, content string) (*Message, error)
	MarkRead(ctx context.Context, userID string, conversationID uint) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	properties shared.PropertyLookup
	notifier   Notifier
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new conversation service. A nil notifier disables pushes.
func NewService(repo Repository, properties shared.PropertyLookup, notifier Notifier, logger *zap.Logger) *ServiceImplementation {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ServiceImplementation{
		repo:       repo,
		properties: properties,
		notifier:   notifier,
		logger:     logger.Named("ConversationService"),
	}
}

// Start opens, or reopens, the buyer's thread with the owner of a property and
// optionally posts a first message.
func (s *ServiceImplementation) Start(ctx context.Context, buyerID string, req StartConversationRequest) (*Conversation, error) {
	ownerID, err := s.properties.GetPropertyOwnerID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if ownerID == buyerID {
		return nil, common.ErrForbidden.WithDetails("You cannot start a conversation about your own property.")
	}

	conv := &Conversation{PropertyID: req.PropertyID, BuyerID: buyerID, SellerID: ownerID}
	if err := s.repo.FindOrCreate(ctx, conv); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Message) != "" {
		if _, err := s.post(ctx, conv, buyerID, req.Message); err != nil {
			return nil, err
		}
		return s.repo.FindByID(ctx, conv.ID)
	}
	return conv, nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	convs, err := s.repo.ListForUser(ctx, userID, common.ClampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}

	unread, err := s.repo.UnreadCounts(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	last, err := s.repo.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(convs))
	for _, c := range convs {
		sum := Summary{Conversation: c, UnreadCount: unread[c.ID]}
		if m, ok := last[c.ID]; ok {
			m := m
			sum.LastMessage = &m
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *ServiceImplementation) ListMessages(ctx context.Context, userID string, conversationID, beforeID uint, limit int) ([]Message, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID, beforeID, common.ClampLimit(limit))
}

func (s *ServiceImplementation) Send(ctx context.Context, senderID string, conversationID uint, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrBadRequest.WithDetails("Message content cannot be empty.")
	}
	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, conv, senderID, content)
}

// MarkRead marks the messages addressed to userID as read.
func (s *ServiceImplementation) MarkRead(ctx context.Context, userID string, conversationID uint) (int64, error) {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notifier.Notify(conv.Other(userID), EventMessagesRead, map[string]interface{}{
			"conversation_id": conversationID,
			"reader_id":       userID,
		})
	}
	return n, nil
}

func (s *ServiceImplementation) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadTotal(ctx, userID)
}

func (s *ServiceImplementation) post(ctx context.Context, conv *Conversation, senderID, content string) (*Message, error) {
	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     conv.Other(senderID),
		Content:        content,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.Debug("Message sent", zap.Uint("conversationID", conv.ID), zap.Uint("messageID", msg.ID))
	s.notifier.Notify(msg.ReceiverID, EventMessageNew, ToMessageResponse(*msg))
	return msg, nil
}

// participantConversation hides conversations the caller is not part of behind a 404.
func (s *ServiceImplementation) participantConversation(ctx context.Context, userID string, id uint) (*Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.Participant(userID) {
		return nil, common.ErrNotFound.WithDetails("Conversation not found.")
	}
	return conv, nil
}

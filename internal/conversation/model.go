package conversation

import (
	"time"

	"estate_market_backend/internal/common"
)

// Conversation is a thread between a prospective buyer and a property owner.
type Conversation struct {
	common.BaseModel
	PropertyID    uint       `gorm:"not null;uniqueIndex:idx_conversations_property_buyer"`
	BuyerID       string     `gorm:"type:varchar(128);not null;uniqueIndex:idx_conversations_property_buyer;index"`
	SellerID      string     `gorm:"type:varchar(128);not null;index"`
	LastMessageAt *time.Time `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is a single entry in a conversation.
type Message struct {
	ID             uint      `gorm:"primarykey"`
	ConversationID uint      `gorm:"not null;index"`
	SenderID       string    `gorm:"type:varchar(128);not null"`
	ReceiverID     string    `gorm:"type:varchar(128);not null;index"`
	Content        string    `gorm:"type:text;not null"`
	IsRead         bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}

// Summary is a conversation as seen by one participant.
type Summary struct {
	Conversation
	UnreadCount int64
	LastMessage *Message
}

// Participant reports whether userID takes part in the conversation.
func (c Conversation) Participant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

type StartConversationRequest struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	Message    string `json:"message" binding:"max=5000"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type MessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationResponse struct {
	ID            uint             `json:"id"`
	PropertyID    uint             `json:"property_id"`
	BuyerID       string           `json:"buyer_id"`
	SellerID      string           `json:"seller_id"`
	LastMessageAt *time.Time       `json:"last_message_at,omitempty"`
	UnreadCount   int64            `json:"unread_count"`
	LastMessage   *MessageResponse `json:"last_message,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func ToMessageResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func ToMessageResponses(list []Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMessageResponse(m))
	}
	return out
}

func ToConversationResponse(s Summary) ConversationResponse {
	resp := ConversationResponse{
		ID:            s.ID,
		PropertyID:    s.PropertyID,
		BuyerID:       s.BuyerID,
		SellerID:      s.SellerID,
		LastMessageAt: s.LastMessageAt,
		UnreadCount:   s.UnreadCount,
		CreatedAt:     s.CreatedAt,
	}
	if s.LastMessage != nil {
		m := ToMessageResponse(*s.LastMessage)
		resp.LastMessage = &m
	}
	return resp
}

func ToConversationResponses(list []Summary) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToConversationResponse(s))
	}
	return out
}

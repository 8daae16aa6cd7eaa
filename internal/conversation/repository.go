package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_market_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for conversation and message storage.
type Repository interface {
	FindOrCreate(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id uint) (*Conversation, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, error)
	UnreadCounts(ctx context.Context, userID string, conversationIDs []uint) (map[uint]int64, error)
	LastMessages(ctx context.Context, conversationIDs []uint) (map[uint]Message, error)
	ListMessages(ctx context.Context, conversationID, beforeID uint, limit int) ([]Message, error)
	CreateMessage(ctx context.Context, msg *Message) error
	MarkRead(ctx context.Context, conversationID uint, receiverID string) (int64, error)
	UnreadTotal(ctx context.Context, userID string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM conversation repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindOrCreate inserts conv unless a conversation for the same property and buyer
// exists, then loads the stored row into conv.
func (r *gormRepository) FindOrCreate(ctx context.Context, conv *Conversation) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "buyer_id"}},
		DoNothing: true,
	}).Create(conv).Error
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	var stored Conversation
	if err := db.Where("property_id = ? AND buyer_id = ?", conv.PropertyID, conv.BuyerID).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	*conv = stored
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Conversation, error) {
	var conv Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Conversation not found.")
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conv, nil
}

func (r *gormRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, error) {
	convs := []Conversation{}
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

type unreadRow struct {
	ConversationID uint
	Count          int64
}

func (r *gormRepository) UnreadCounts(ctx context.Context, userID string, conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}
	var rows []unreadRow
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ? AND conversation_id IN ?", userID, false, conversationIDs).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}

func (r *gormRepository) LastMessages(ctx context.Context, conversationIDs []uint) (map[uint]Message, error) {
	last := make(map[uint]Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return last, nil
	}
	latest := r.db.Model(&Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []Message
	if err := r.db.WithContext(ctx).Where("id IN (?)", latest).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load last messages: %w", err)
	}
	for _, m := range msgs {
		last[m.ConversationID] = m
	}
	return last, nil
}

// ListMessages returns up to limit messages older than beforeID (all when zero),
// oldest first.
func (r *gormRepository) ListMessages(ctx context.Context, conversationID, beforeID uint, limit int) ([]Message, error) {
	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	msgs := []Message{}
	if err := q.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CreateMessage stores msg and bumps the conversation's last_message_at in one transaction.
func (r *gormRepository) CreateMessage(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		err := tx.Model(&Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error
		if err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) MarkRead(ctx context.Context, conversationID uint, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, receiverID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return total, nil
}

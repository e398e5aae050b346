package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// ConversationRepository chat thread data access
type ConversationRepository interface {
	// Create inserts the conversation together with its Participants
	Create(ctx context.Context, c *model.Conversation) error
	GetByID(ctx context.Context, id string) (*model.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
}

type conversationRepo struct {
	crud[model.Conversation]
}

// NewConversationRepo creates a ConversationRepository
func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{crud[model.Conversation]{db: db}}
}

func (r *conversationRepo) Create(ctx context.Context, c *model.Conversation) error {
	return r.create(ctx, c)
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*model.Conversation, error) {
	return r.first(ctx, preload("Participants.User"), where("conversation_id = ?", id))
}

func (r *conversationRepo) GetByPairKey(ctx context.Context, pairKey string) (*model.Conversation, error) {
	return r.first(ctx, where("pair_key = ?", pairKey))
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	return r.find(ctx,
		preload("Participants.User"),
		where("conversation_id IN (SELECT conversation_id FROM conversation_participants WHERE user_id = ?)", userID),
		orderBy("updated_at DESC"),
	)
}

func (r *conversationRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *conversationRepo) Touch(ctx context.Context, conversationID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("updated_at", at).Error
}

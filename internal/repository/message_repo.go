package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// MessageRepository chat message data access
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Message, error)
	// ListByConversation newest first
	ListByConversation(ctx context.Context, conversationID string, p Page) ([]model.Message, int64, error)
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]model.Message, error)
	CountUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error)
	// AdvanceStatus moves messages not sent by readerID forward to status, never backwards
	AdvanceStatus(ctx context.Context, conversationID, readerID string, status model.MessageStatus, at time.Time) (int64, error)
}

type messageRepo struct {
	crud[model.Message]
}

// NewMessageRepo creates a MessageRepository
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{crud[model.Message]{db: db}}
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error { return r.create(ctx, m) }

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	return r.first(ctx, where("message_id = ?", id))
}

func (r *messageRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, where("message_id IN ?", ids))
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string, p Page) ([]model.Message, int64, error) {
	return r.page(ctx, p, "created_at DESC", nil, where("conversation_id = ?", conversationID))
}

func (r *messageRepo) LastMessages(ctx context.Context, conversationIDs []string) (map[string]model.Message, error) {
	out := make(map[string]model.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var rows []model.Message
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (conversation_id) *
		FROM messages
		WHERE conversation_id IN ?
		ORDER BY conversation_id, created_at DESC`, conversationIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *messageRepo) CountUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error) {
	out := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID string
		N              int64
	}
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ? AND sender_id <> ? AND status <> ?", conversationIDs, userID, model.MessageRead).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.N
	}
	return out, nil
}

func (r *messageRepo) AdvanceStatus(ctx context.Context, conversationID, readerID string, status model.MessageStatus, at time.Time) (int64, error) {
	var lower []model.MessageStatus
	for _, s := range []model.MessageStatus{model.MessageSent, model.MessageDelivered, model.MessageRead} {
		if s.Rank() < status.Rank() {
			lower = append(lower, s)
		}
	}
	if len(lower) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND status IN ?", conversationID, readerID, lower).
		Updates(map[string]any{"status": status, "updated_at": at})
	return res.RowsAffected, res.Error
}

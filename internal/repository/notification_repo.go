package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// NotificationFilter notification list criteria
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page
}

// NotificationRepository in-app notification data access
type NotificationRepository interface {
	CreateBatch(ctx context.Context, rows []model.Notification) error
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

type notificationRepo struct {
	crud[model.Notification]
}

// NewNotificationRepo creates a NotificationRepository
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{crud[model.Notification]{db: db}}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, rows []model.Notification) error {
	return r.createBatch(ctx, rows)
}

func (r *notificationRepo) List(ctx context.Context, f NotificationFilter) ([]model.Notification, int64, error) {
	return r.page(ctx, f.Page, "created_at DESC", nil,
		where("user_id = ?", f.UserID),
		whereIf(f.UnreadOnly, "is_read = ?", false),
	)
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, where("user_id = ? AND is_read = ?", userID, false))
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

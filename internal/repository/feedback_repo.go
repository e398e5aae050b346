package repository

import (
	"context"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// FeedbackRepository feedback thread data access
type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	GetByID(ctx context.Context, id string) (*model.Feedback, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.Feedback, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

type feedbackRepo struct {
	crud[model.Feedback]
}

// NewFeedbackRepo creates a FeedbackRepository
func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{crud[model.Feedback]{db: db}}
}

func (r *feedbackRepo) Create(ctx context.Context, f *model.Feedback) error { return r.create(ctx, f) }

func (r *feedbackRepo) GetByID(ctx context.Context, id string) (*model.Feedback, error) {
	return r.first(ctx, where("feedback_id = ?", id))
}

func (r *feedbackRepo) ListByRequest(ctx context.Context, requestID string) ([]model.Feedback, error) {
	return r.find(ctx, preload("User"), where("repair_request_id = ?", requestID), orderBy("created_at ASC"))
}

func (r *feedbackRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.delete(ctx, where("feedback_id IN ?", ids))
}

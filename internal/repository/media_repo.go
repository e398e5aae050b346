package repository

import (
	"context"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// MediaRepository attachment data access
type MediaRepository interface {
	CreateBatch(ctx context.Context, rows []model.Media) error
	ListByEntity(ctx context.Context, entity model.MediaEntity, entityID string) ([]model.Media, error)
	ListByEntities(ctx context.Context, entity model.MediaEntity, entityIDs []string) ([]model.Media, error)
}

type mediaRepo struct {
	crud[model.Media]
}

// NewMediaRepo creates a MediaRepository
func NewMediaRepo(db *gorm.DB) MediaRepository {
	return &mediaRepo{crud[model.Media]{db: db}}
}

func (r *mediaRepo) CreateBatch(ctx context.Context, rows []model.Media) error {
	return r.createBatch(ctx, rows)
}

func (r *mediaRepo) ListByEntity(ctx context.Context, entity model.MediaEntity, entityID string) ([]model.Media, error) {
	return r.find(ctx,
		where("entity = ? AND entity_id = ? AND status = ?", entity, entityID, model.StatusActive),
		orderBy("created_at ASC"),
	)
}

func (r *mediaRepo) ListByEntities(ctx context.Context, entity model.MediaEntity, entityIDs []string) ([]model.Media, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx,
		where("entity = ? AND entity_id IN ? AND status = ?", entity, entityIDs, model.StatusActive),
		orderBy("created_at ASC"),
	)
}

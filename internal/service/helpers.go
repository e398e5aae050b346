package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
	applogger "aptcare/backend/pkg/logger"
)

const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

var (
	ErrUploadFailed     = apperr.Validation("Tải tệp lên thất bại")
	ErrInvalidDateRange = apperr.Validation("Ngày bắt đầu không được lớn hơn ngày kết thúc")
	ErrPermissionDenied = apperr.Forbidden("Bạn không có quyền thực hiện thao tác này")
)

// get loads one row through fn, translating a missing row into notFound
func get[T any](ctx context.Context, logger *zap.Logger, fn func(context.Context, string) (*T, error), id string, notFound error) (*T, error) {
	v, err := fn(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		applogger.Ctx(ctx, logger).Error("load failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func formatTime(t time.Time) string { return t.Format(timeLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func toPage(p dto.PaginationRequest) repository.Page {
	return repository.Page{Offset: p.GetOffset(), Limit: p.GetPageSize()}
}

// endOfDay makes an inclusive date upper bound cover the whole day
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	e := truncateDay(*t).Add(24*time.Hour - time.Nanosecond)
	return &e
}

func strPtr(s string) *string { return &s }

// ── cache ──

func cacheKey(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// cached serves key from cache or fills it with load
func cached[T any](ctx context.Context, cache Cache, logger *zap.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	hit, err := cache.GetJSON(ctx, key, &v)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := cache.SetJSON(ctx, key, v, ttl); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func invalidate(ctx context.Context, cache Cache, logger *zap.Logger, prefix string) {
	if err := cache.DeleteByPrefix(ctx, prefix); err != nil {
		logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// evict drops single entries, for caches that hold no list pages
func evict(ctx context.Context, cache Cache, logger *zap.Logger, keys ...string) {
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn("cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// ── media ──

// uploadAll stores every file and returns the Media rows to insert for them
func uploadAll(ctx context.Context, storage FileStorage, logger *zap.Logger, folder string, entity model.MediaEntity, files []*dto.FileUpload, callerID string) ([]model.Media, error) {
	rows := make([]model.Media, 0, len(files))
	for _, f := range files {
		if f == nil || len(f.Data) == 0 {
			continue
		}
		var (
			url string
			err error
		)
		if f.IsImage() {
			url, err = storage.UploadImage(ctx, f.FileName, f.ContentType, f.Data)
		} else {
			url, err = storage.UploadFile(ctx, folder, f.FileName, f.ContentType, f.Data)
		}
		if err != nil {
			logger.Error("upload failed", zap.String("file", f.FileName), zap.Error(err))
			return nil, ErrUploadFailed
		}
		if url == "" {
			return nil, ErrUploadFailed
		}
		m := model.Media{
			Entity:      entity,
			FilePath:    url,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Status:      model.StatusActive,
		}
		m.Stamp(callerID)
		rows = append(rows, m)
	}
	return rows, nil
}

// attach points media rows at the entity that now owns them
func attach(rows []model.Media, entityID string) []model.Media {
	for i := range rows {
		rows[i].EntityID = entityID
	}
	return rows
}

func toMediaResponses(rows []model.Media) []dto.MediaResponse {
	out := make([]dto.MediaResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.MediaResponse{
			ID:          m.MediaID,
			FilePath:    m.FilePath,
			FileName:    m.FileName,
			ContentType: m.ContentType,
		})
	}
	return out
}

// notify sends msg best-effort; failures are only logged
func notify(ctx context.Context, n Notifier, logger *zap.Logger, userIDs []string, msg dto.NotificationMessage) {
	if n == nil || len(userIDs) == 0 {
		return
	}
	if err := n.NotifyUsers(ctx, userIDs, msg); err != nil {
		logger.Warn("notification failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

func notifyRole(ctx context.Context, n Notifier, logger *zap.Logger, role model.Role, msg dto.NotificationMessage) {
	if n == nil {
		return
	}
	if err := n.NotifyRole(ctx, role, msg); err != nil {
		logger.Warn("notification failed", zap.String("type", msg.Type), zap.String("role", string(role)), zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

// Cache read-through cache, implemented by pkg/redis.Client
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// FileStorage object storage, implemented by pkg/storage.S3Storage.
// An empty url with a nil error is treated as a failed upload.
type FileStorage interface {
	UploadImage(ctx context.Context, name, contentType string, data []byte) (string, error)
	UploadFile(ctx context.Context, folder, name, contentType string, data []byte) (string, error)
}

// Publisher message broker, implemented by pkg/mqtt.Client.
// topic is relative to the broker's configured prefix.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, payload any) error
}

// Notifier in-app and push notifications, implemented by NotificationService
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []string, msg dto.NotificationMessage) error
	NotifyRole(ctx context.Context, role model.Role, msg dto.NotificationMessage) error
}

// TokenBlacklist revoked token store, implemented by pkg/redis.Client
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// ── fallbacks used when the backing service is not configured ──

// NoopCache never hits
type NoopCache struct{}

func (NoopCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (NoopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error { return nil }
func (NoopCache) DeleteByPrefix(context.Context, string) error { return nil }

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

// NoopBlacklist never revokes; used when Redis is unavailable
type NoopBlacklist struct{}

func (NoopBlacklist) BlacklistToken(context.Context, string, time.Duration) error { return nil }
func (NoopBlacklist) IsBlacklisted(context.Context, string) (bool, error)         { return false, nil }

// NoStorage rejects every upload; used when object storage is not configured
type NoStorage struct{}

func (NoStorage) UploadImage(context.Context, string, string, []byte) (string, error) { return "", nil }
func (NoStorage) UploadFile(context.Context, string, string, string, []byte) (string, error) {
	return "", nil
}

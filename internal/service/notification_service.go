package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
)

const (
	pushTopic         = "push"
	eventNotification = "notification.created"
)

// PushTarget device a push gateway delivers to
type PushTarget struct {
	UserID      string `json:"user_id"`
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform"`
}

// PushMessage envelope payload handed to the push gateway
type PushMessage struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
	Targets []PushTarget      `json:"targets"`
}

// NotificationService stores in-app notifications and hands pushes to the broker
type NotificationService interface {
	Notifier
	ListMine(ctx context.Context, caller dto.Caller, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, caller dto.Caller) (int64, error)
	MarkRead(ctx context.Context, caller dto.Caller, id string) error
	MarkAllRead(ctx context.Context, caller dto.Caller) (int64, error)
}

type notificationService struct {
	repo      *repository.Repository
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService creates a NotificationService
func NewNotificationService(repo *repository.Repository, publisher Publisher, logger *zap.Logger) NotificationService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &notificationService{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// ────────────────────── Notifier ──────────────────────

func (s *notificationService) NotifyUsers(ctx context.Context, userIDs []string, msg dto.NotificationMessage) error {
	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil
	}

	var data datatypes.JSON
	if len(msg.Data) > 0 {
		raw, err := json.Marshal(msg.Data)
		if err != nil {
			return err
		}
		data = datatypes.JSON(raw)
	}

	now := s.now()
	rows := make([]model.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, model.Notification{
			UserID:    id,
			Type:      msg.Type,
			Title:     msg.Title,
			Content:   msg.Content,
			Data:      data,
			CreatedAt: now,
		})
	}
	if err := s.repo.Notification.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("store notifications failed", zap.String("type", msg.Type), zap.Error(err))
		return err
	}

	for i := range rows {
		topic := "users/" + rows[i].UserID + "/notifications"
		if err := s.publisher.Publish(ctx, topic, eventNotification, toNotificationResponse(&rows[i])); err != nil {
			s.logger.Warn("publish notification failed", zap.String("user_id", rows[i].UserID), zap.Error(err))
		}
	}

	return s.push(ctx, userIDs, msg)
}

func (s *notificationService) NotifyRole(ctx context.Context, role model.Role, msg dto.NotificationMessage) error {
	users, err := s.repo.User.ListActiveByRole(ctx, role)
	if err != nil {
		s.logger.Error("list users by role failed", zap.String("role", string(role)), zap.Error(err))
		return err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	return s.NotifyUsers(ctx, ids, msg)
}

// push forwards msg with the recipients' device tokens; users without a device are skipped
func (s *notificationService) push(ctx context.Context, userIDs []string, msg dto.NotificationMessage) error {
	tokens, err := s.repo.AccountToken.ListByUserIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("list device tokens failed", zap.Error(err))
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	pm := PushMessage{
		Type:    msg.Type,
		Title:   msg.Title,
		Body:    msg.Content,
		Data:    msg.Data,
		Targets: make([]PushTarget, 0, len(tokens)),
	}
	for _, t := range tokens {
		pm.Targets = append(pm.Targets, PushTarget{UserID: t.UserID, DeviceToken: t.DeviceToken, Platform: t.Platform})
	}
	if err := s.publisher.Publish(ctx, pushTopic, msg.Type, pm); err != nil {
		s.logger.Warn("publish push failed", zap.String("type", msg.Type), zap.Int("targets", len(pm.Targets)), zap.Error(err))
		return err
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ────────────────────── Inbox ──────────────────────

func (s *notificationService) ListMine(ctx context.Context, caller dto.Caller, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	rows, total, err := s.repo.Notification.List(ctx, repository.NotificationFilter{
		UserID:     caller.UserID,
		UnreadOnly: req.UnreadOnly,
		Page:       toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		result = append(result, *toNotificationResponse(&rows[i]))
	}
	return result, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, caller dto.Caller) (int64, error) {
	n, err := s.repo.Notification.CountUnread(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("count unread notifications failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller dto.Caller, id string) error {
	n, err := s.repo.Notification.MarkRead(ctx, caller.UserID, id, s.now())
	if err != nil {
		s.logger.Error("mark notification read failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Debug("notification read", zap.String("id", id), zap.Int64("rows", n))
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller dto.Caller) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, caller.UserID, s.now())
	if err != nil {
		s.logger.Error("mark all notifications read failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func toNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
	}
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &resp.Data)
	}
	return resp
}

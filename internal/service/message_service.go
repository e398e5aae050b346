package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const (
	chatTopic         = "conversations"
	eventMessageNew   = "message.created"
	eventMessageState = "message.status"
)

var (
	ErrMessageContentRequired = apperr.Validation("Nội dung tin nhắn không được để trống")
	ErrMessageImageRequired   = apperr.Validation("Vui lòng chọn ảnh để gửi")
	ErrMessageTypeInvalid     = apperr.Validation("Loại tin nhắn không hợp lệ")
	ErrReplyTargetNotFound    = apperr.Validation("Tin nhắn được trả lời không thuộc cuộc trò chuyện này")
)

// MessageService chat messages with realtime fan-out
type MessageService interface {
	Send(ctx context.Context, caller dto.Caller, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkDelivered(ctx context.Context, caller dto.Caller, conversationID string) (*dto.MarkMessagesResponse, error)
	MarkRead(ctx context.Context, caller dto.Caller, conversationID string) (*dto.MarkMessagesResponse, error)
	// List newest first, with a preview of each answered message
	List(ctx context.Context, caller dto.Caller, conversationID string, page dto.PaginationRequest) ([]dto.MessageResponse, int64, error)
}

type messageService struct {
	repo      *repository.Repository
	storage   FileStorage
	publisher Publisher
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewMessageService creates a MessageService
func NewMessageService(repo *repository.Repository, storage FileStorage, publisher Publisher, notifier Notifier, logger *zap.Logger) MessageService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &messageService{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func conversationTopic(id string) string { return chatTopic + "/" + id }

// ────────────────────── Send ──────────────────────

func (s *messageService) Send(ctx context.Context, caller dto.Caller, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	conv, err := get(ctx, s.logger, s.repo.Conversation.GetByID, conversationID, ErrConversationNotFound)
	if err != nil {
		return nil, err
	}
	if !hasParticipant(conv, caller.UserID) {
		return nil, ErrNotConversationMember
	}

	msg := &model.Message{
		ConversationID:   conversationID,
		SenderID:         caller.UserID,
		Type:             model.MessageType(req.Type),
		ReplyToMessageID: req.ReplyToMessageID,
		Status:           model.MessageSent,
	}

	var reply *model.Message
	if req.ReplyToMessageID != nil {
		reply, err = s.repo.Message.GetByID(ctx, *req.ReplyToMessageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReplyTargetNotFound
			}
			s.logger.Error("load reply target failed", zap.String("id", *req.ReplyToMessageID), zap.Error(err))
			return nil, err
		}
		if reply.ConversationID != conversationID {
			return nil, ErrReplyTargetNotFound
		}
	}

	var media []model.Media
	switch msg.Type {
	case model.MessageText:
		msg.Content = strings.TrimSpace(req.Content)
		if msg.Content == "" {
			return nil, ErrMessageContentRequired
		}
	case model.MessageImage:
		if req.File == nil || len(req.File.Data) == 0 {
			return nil, ErrMessageImageRequired
		}
		media, err = uploadAll(ctx, s.storage, s.logger, chatTopic, model.MediaMessage, []*dto.FileUpload{req.File}, caller.UserID)
		if err != nil {
			return nil, err
		}
		msg.Content = media[0].FilePath
	default:
		return nil, ErrMessageTypeInvalid
	}

	now := s.now()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	err = withTx(ctx, s.repo, s.logger, "send message", func(tx *repository.Repository) error {
		if err := tx.Message.Create(ctx, msg); err != nil {
			return err
		}
		if len(media) > 0 {
			if err := tx.Media.CreateBatch(ctx, attach(media, msg.MessageID)); err != nil {
				return err
			}
		}
		return tx.Conversation.Touch(ctx, conversationID, now)
	})
	if err != nil {
		return nil, err
	}

	resp := toMessageResponse(msg, reply)
	if err := s.publisher.Publish(ctx, conversationTopic(conversationID), eventMessageNew, resp); err != nil {
		s.logger.Warn("publish message failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	var recipients []string
	for _, p := range conv.Participants {
		if p.UserID != caller.UserID && !p.IsMuted {
			recipients = append(recipients, p.UserID)
		}
	}
	preview := msg.Content
	if msg.Type == model.MessageImage {
		preview = "[Hình ảnh]"
	}
	notify(ctx, s.notifier, s.logger, recipients, dto.NotificationMessage{
		Type:    "chat.message",
		Title:   "Tin nhắn mới",
		Content: preview,
		Data:    map[string]string{"conversation_id": conversationID, "message_id": msg.MessageID},
	})

	s.logger.Debug("message sent", zap.String("conversation_id", conversationID), zap.String("id", msg.MessageID))
	return resp, nil
}

// ────────────────────── Status ──────────────────────

func (s *messageService) MarkDelivered(ctx context.Context, caller dto.Caller, conversationID string) (*dto.MarkMessagesResponse, error) {
	return s.advance(ctx, caller, conversationID, model.MessageDelivered)
}

func (s *messageService) MarkRead(ctx context.Context, caller dto.Caller, conversationID string) (*dto.MarkMessagesResponse, error) {
	return s.advance(ctx, caller, conversationID, model.MessageRead)
}

func (s *messageService) advance(ctx context.Context, caller dto.Caller, conversationID string, status model.MessageStatus) (*dto.MarkMessagesResponse, error) {
	if err := s.checkMember(ctx, caller, conversationID); err != nil {
		return nil, err
	}
	n, err := s.repo.Message.AdvanceStatus(ctx, conversationID, caller.UserID, status, s.now())
	if err != nil {
		s.logger.Error("advance message status failed",
			zap.String("conversation_id", conversationID), zap.String("status", string(status)), zap.Error(err))
		return nil, err
	}

	if n > 0 {
		payload := map[string]string{"reader_id": caller.UserID, "status": string(status)}
		if err := s.publisher.Publish(ctx, conversationTopic(conversationID), eventMessageState, payload); err != nil {
			s.logger.Warn("publish status failed", zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}
	return &dto.MarkMessagesResponse{Updated: n}, nil
}

func (s *messageService) checkMember(ctx context.Context, caller dto.Caller, conversationID string) error {
	ok, err := s.repo.Conversation.IsParticipant(ctx, conversationID, caller.UserID)
	if err != nil {
		s.logger.Error("check participant failed", zap.String("conversation_id", conversationID), zap.Error(err))
		return err
	}
	if !ok {
		return ErrNotConversationMember
	}
	return nil
}

// ────────────────────── Query ──────────────────────

func (s *messageService) List(ctx context.Context, caller dto.Caller, conversationID string, page dto.PaginationRequest) ([]dto.MessageResponse, int64, error) {
	if err := s.checkMember(ctx, caller, conversationID); err != nil {
		return nil, 0, err
	}
	msgs, total, err := s.repo.Message.ListByConversation(ctx, conversationID, toPage(page))
	if err != nil {
		s.logger.Error("list messages failed", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, 0, err
	}

	var replyIDs []string
	for _, m := range msgs {
		if m.ReplyToMessageID != nil {
			replyIDs = append(replyIDs, *m.ReplyToMessageID)
		}
	}
	replies, err := s.repo.Message.ListByIDs(ctx, replyIDs)
	if err != nil {
		s.logger.Error("load reply previews failed", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, 0, err
	}
	byID := make(map[string]*model.Message, len(replies))
	for i := range replies {
		byID[replies[i].MessageID] = &replies[i]
	}

	result := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		var reply *model.Message
		if msgs[i].ReplyToMessageID != nil {
			reply = byID[*msgs[i].ReplyToMessageID]
		}
		result = append(result, *toMessageResponse(&msgs[i], reply))
	}
	return result, total, nil
}

const replyPreviewLen = 100

func toMessageResponse(m *model.Message, reply *model.Message) *dto.MessageResponse {
	resp := &dto.MessageResponse{
		ID:             m.MessageID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Type:           string(m.Type),
		Content:        m.Content,
		Status:         string(m.Status),
		CreatedAt:      formatTime(m.CreatedAt),
	}
	if reply != nil {
		content := reply.Content
		if r := []rune(content); len(r) > replyPreviewLen {
			content = string(r[:replyPreviewLen]) + "…"
		}
		resp.ReplyTo = &dto.ReplyPreview{
			ID:       reply.MessageID,
			SenderID: reply.SenderID,
			Type:     string(reply.Type),
			Content:  content,
		}
	}
	return resp
}

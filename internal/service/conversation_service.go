package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrConversationNotFound  = apperr.NotFound("Cuộc trò chuyện không tồn tại")
	ErrConversationExists    = apperr.Conflict("Cuộc trò chuyện giữa hai người dùng đã tồn tại")
	ErrParticipantNotFound   = apperr.Validation("Có người tham gia không tồn tại")
	ErrConversationTooFew    = apperr.Validation("Cuộc trò chuyện cần ít nhất hai người tham gia")
	ErrNotConversationMember = apperr.Forbidden("Bạn không thuộc cuộc trò chuyện này")
)

// ConversationService chat threads between users
type ConversationService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	GetByID(ctx context.Context, caller dto.Caller, id string) (*dto.ConversationResponse, error)
	// ListMine conversations of the caller, most recently active first
	ListMine(ctx context.Context, caller dto.Caller) ([]dto.ConversationResponse, error)
}

type conversationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewConversationService creates a ConversationService
func NewConversationService(repo *repository.Repository, logger *zap.Logger) ConversationService {
	return &conversationService{repo: repo, logger: logger}
}

// pairKey identifies a two-party conversation independent of member order
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// memberIDs distinct participant ids with the caller included, sorted
func memberIDs(callerID string, ids []string) []string {
	seen := map[string]bool{callerID: true}
	out := []string{callerID}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *conversationService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	ids := memberIDs(caller.UserID, req.ParticipantIDs)
	if len(ids) < 2 {
		return nil, ErrConversationTooFew
	}

	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("load participants failed", zap.Error(err))
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, ErrParticipantNotFound
	}

	conv := &model.Conversation{Title: req.Title}
	if len(ids) == 2 {
		key := pairKey(ids[0], ids[1])
		_, err := s.repo.Conversation.GetByPairKey(ctx, key)
		switch {
		case err == nil:
			return nil, ErrConversationExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("check pair conversation failed", zap.Error(err))
			return nil, err
		}
		conv.PairKey = &key
	}
	for _, id := range ids {
		conv.Participants = append(conv.Participants, model.ConversationParticipant{UserID: id})
	}
	conv.Stamp(caller.UserID)

	if err := s.repo.Conversation.Create(ctx, conv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConversationExists
		}
		s.logger.Error("create conversation failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("conversation created", zap.String("id", conv.ConversationID), zap.Int("participants", len(ids)))

	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
	}
	for i := range conv.Participants {
		conv.Participants[i].User = byID[conv.Participants[i].UserID]
	}
	return toConversationResponse(conv, nil, 0), nil
}

func (s *conversationService) GetByID(ctx context.Context, caller dto.Caller, id string) (*dto.ConversationResponse, error) {
	conv, err := get(ctx, s.logger, s.repo.Conversation.GetByID, id, ErrConversationNotFound)
	if err != nil {
		return nil, err
	}
	if !hasParticipant(conv, caller.UserID) {
		return nil, ErrNotConversationMember
	}

	last, err := s.repo.Message.LastMessages(ctx, []string{id})
	if err != nil {
		s.logger.Error("load last message failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.Message.CountUnread(ctx, []string{id}, caller.UserID)
	if err != nil {
		s.logger.Error("count unread failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var lastMsg *model.Message
	if m, ok := last[id]; ok {
		lastMsg = &m
	}
	return toConversationResponse(conv, lastMsg, unread[id]), nil
}

func (s *conversationService) ListMine(ctx context.Context, caller dto.Caller) ([]dto.ConversationResponse, error) {
	convs, err := s.repo.Conversation.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("list conversations failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ConversationID)
	}

	last, err := s.repo.Message.LastMessages(ctx, ids)
	if err != nil {
		s.logger.Error("load last messages failed", zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.Message.CountUnread(ctx, ids, caller.UserID)
	if err != nil {
		s.logger.Error("count unread failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		var lastMsg *model.Message
		if m, ok := last[convs[i].ConversationID]; ok {
			lastMsg = &m
		}
		result = append(result, *toConversationResponse(&convs[i], lastMsg, unread[convs[i].ConversationID]))
	}
	return result, nil
}

func hasParticipant(c *model.Conversation, userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func toConversationResponse(c *model.Conversation, last *model.Message, unread int64) *dto.ConversationResponse {
	resp := &dto.ConversationResponse{
		ID:           c.ConversationID,
		Title:        c.Title,
		Participants: make([]dto.ParticipantResponse, 0, len(c.Participants)),
		UnreadCount:  unread,
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
	for _, p := range c.Participants {
		pr := dto.ParticipantResponse{UserID: p.UserID, IsMuted: p.IsMuted}
		if p.User != nil {
			pr.FullName = p.User.FullName()
			pr.Role = string(p.User.Role)
		}
		resp.Participants = append(resp.Participants, pr)
	}
	if last != nil {
		resp.LastMessage = toMessageResponse(last, nil)
	}
	return resp
}

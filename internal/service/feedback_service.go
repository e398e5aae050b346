package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrFeedbackNotFound       = apperr.NotFound("Phản hồi không tồn tại")
	ErrFeedbackRating         = apperr.Validation("Đánh giá phải từ 1 đến 5")
	ErrFeedbackParentMismatch = apperr.Validation("Phản hồi gốc không thuộc yêu cầu sửa chữa này")
	ErrFeedbackNotAuthor      = apperr.Forbidden("Bạn không có quyền xóa phản hồi này")
)

// FeedbackService threaded ratings on repair requests
type FeedbackService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error)
	// Delete removes the feedback together with every reply below it
	Delete(ctx context.Context, caller dto.Caller, id string) error
	ListByRequest(ctx context.Context, requestID string) ([]dto.FeedbackResponse, error)
}

type feedbackService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewFeedbackService creates a FeedbackService
func NewFeedbackService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) FeedbackService {
	return &feedbackService{repo: repo, notifier: notifier, logger: logger}
}

func (s *feedbackService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error) {
	request, err := get(ctx, s.logger, s.repo.RepairRequest.GetByID, req.RepairRequestID, ErrRepairRequestNotFound)
	if err != nil {
		return nil, err
	}

	fb := &model.Feedback{
		RepairRequestID:  req.RepairRequestID,
		UserID:           caller.UserID,
		ParentFeedbackID: req.ParentFeedbackID,
		Comment:          req.Comment,
	}

	var parent *model.Feedback
	if req.ParentFeedbackID == nil {
		if err := s.checkRoot(ctx, caller, request, req.Rating); err != nil {
			return nil, err
		}
		fb.Rating = req.Rating
	} else {
		parent, err = get(ctx, s.logger, s.repo.Feedback.GetByID, *req.ParentFeedbackID, ErrFeedbackNotFound)
		if err != nil {
			return nil, err
		}
		if parent.RepairRequestID != req.RepairRequestID {
			return nil, ErrFeedbackParentMismatch
		}
		// replies never carry a rating
		fb.Rating = 0
	}

	fb.Stamp(caller.UserID)
	if err := s.repo.Feedback.Create(ctx, fb); err != nil {
		s.logger.Error("create feedback failed", zap.String("repair_request_id", req.RepairRequestID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("feedback created",
		zap.String("id", fb.FeedbackID),
		zap.String("repair_request_id", req.RepairRequestID),
		zap.Int("rating", fb.Rating))

	if parent != nil && parent.UserID != caller.UserID {
		notify(ctx, s.notifier, s.logger, []string{parent.UserID}, dto.NotificationMessage{
			Type:    "feedback.reply",
			Title:   "Có phản hồi mới",
			Content: fb.Comment,
			Data:    map[string]string{"repair_request_id": req.RepairRequestID, "feedback_id": fb.FeedbackID},
		})
	}
	return toFeedbackResponse(fb), nil
}

// checkRoot a root feedback is a 1..5 rating by a resident of the request's apartment
func (s *feedbackService) checkRoot(ctx context.Context, caller dto.Caller, request *model.RepairRequest, rating int) error {
	if !caller.IsResident() || request.ApartmentID == nil {
		return ErrNotApartmentResident
	}
	_, err := s.repo.UserApartment.GetActive(ctx, caller.UserID, *request.ApartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotApartmentResident
		}
		s.logger.Error("check residency failed", zap.String("apartment_id", *request.ApartmentID), zap.Error(err))
		return err
	}
	if rating < 1 || rating > 5 {
		return ErrFeedbackRating
	}
	return nil
}

func (s *feedbackService) Delete(ctx context.Context, caller dto.Caller, id string) error {
	fb, err := get(ctx, s.logger, s.repo.Feedback.GetByID, id, ErrFeedbackNotFound)
	if err != nil {
		return err
	}
	if fb.UserID != caller.UserID && !caller.HasRole(model.RoleManager, model.RoleAdmin) {
		return ErrFeedbackNotAuthor
	}

	var ids []string
	err = withTx(ctx, s.repo, s.logger, "delete feedback", func(tx *repository.Repository) error {
		thread, err := tx.Feedback.ListByRequest(ctx, fb.RepairRequestID)
		if err != nil {
			return err
		}
		ids = subtree(thread, id)
		return tx.Feedback.DeleteByIDs(ctx, ids)
	})
	if err != nil {
		return err
	}

	s.logger.Info("feedback deleted", zap.String("id", id), zap.Int("rows", len(ids)), zap.String("by", caller.UserID))
	return nil
}

// subtree ids of rootID and all of its descendants in thread
func subtree(thread []model.Feedback, rootID string) []string {
	children := make(map[string][]string, len(thread))
	for _, f := range thread {
		if f.ParentFeedbackID != nil {
			children[*f.ParentFeedbackID] = append(children[*f.ParentFeedbackID], f.FeedbackID)
		}
	}

	ids := []string{rootID}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}

func (s *feedbackService) ListByRequest(ctx context.Context, requestID string) ([]dto.FeedbackResponse, error) {
	if _, err := get(ctx, s.logger, s.repo.RepairRequest.GetByID, requestID, ErrRepairRequestNotFound); err != nil {
		return nil, err
	}
	thread, err := s.repo.Feedback.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("list feedback failed", zap.String("repair_request_id", requestID), zap.Error(err))
		return nil, err
	}
	return buildFeedbackTree(thread), nil
}

// buildFeedbackTree nests replies under their parents, keeping thread order.
// A reply whose parent is missing is shown at the top level.
func buildFeedbackTree(thread []model.Feedback) []dto.FeedbackResponse {
	known := make(map[string]bool, len(thread))
	for _, f := range thread {
		known[f.FeedbackID] = true
	}
	children := make(map[string][]*model.Feedback, len(thread))
	var roots []*model.Feedback
	for i := range thread {
		f := &thread[i]
		if f.ParentFeedbackID != nil && known[*f.ParentFeedbackID] {
			children[*f.ParentFeedbackID] = append(children[*f.ParentFeedbackID], f)
			continue
		}
		roots = append(roots, f)
	}

	var build func(f *model.Feedback) dto.FeedbackResponse
	build = func(f *model.Feedback) dto.FeedbackResponse {
		node := *toFeedbackResponse(f)
		for _, c := range children[f.FeedbackID] {
			node.Replies = append(node.Replies, build(c))
		}
		return node
	}

	out := make([]dto.FeedbackResponse, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

func toFeedbackResponse(f *model.Feedback) *dto.FeedbackResponse {
	resp := &dto.FeedbackResponse{
		ID:               f.FeedbackID,
		RepairRequestID:  f.RepairRequestID,
		UserID:           f.UserID,
		ParentFeedbackID: f.ParentFeedbackID,
		Rating:           f.Rating,
		Comment:          f.Comment,
		CreatedAt:        formatTime(f.CreatedAt),
	}
	if f.User != nil {
		resp.UserName = f.User.FullName()
	}
	return resp
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

func setupFeedbackService(t *testing.T) (FeedbackService, *fixture, *fakeNotifier) {
	t.Helper()
	f := newFixture()
	aptID := "apt-1"
	f.requests.add(&model.RepairRequest{RepairRequestID: "req-1", ApartmentID: &aptID, UserID: residentCaller.UserID})
	f.requests.add(&model.RepairRequest{RepairRequestID: "req-2", ApartmentID: &aptID, UserID: residentCaller.UserID})
	f.residents.active[residentCaller.UserID+":"+aptID] = true
	notifier := &fakeNotifier{}
	return NewFeedbackService(f.repo, notifier, zap.NewNop()), f, notifier
}

func TestFeedbackService_Create_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		svc, f, _ := setupFeedbackService(t)
		_, err := svc.Create(context.Background(), residentCaller, &dto.CreateFeedbackRequest{
			RepairRequestID: "req-1", Rating: rating, Comment: "x",
		})
		require.ErrorIs(t, err, ErrFeedbackRating, "rating %d", rating)
		assert.Equal(t, "Đánh giá phải từ 1 đến 5", err.Error())
		assert.Empty(t, f.feedback.rows)
	}

	for _, rating := range []int{1, 5} {
		svc, _, _ := setupFeedbackService(t)
		resp, err := svc.Create(context.Background(), residentCaller, &dto.CreateFeedbackRequest{
			RepairRequestID: "req-1", Rating: rating,
		})
		require.NoError(t, err, "rating %d", rating)
		assert.Equal(t, rating, resp.Rating)
	}
}

func TestFeedbackService_Create_RootNeedsResident(t *testing.T) {
	svc, _, _ := setupFeedbackService(t)
	outsider := dto.Caller{UserID: "resident-9", Role: model.RoleResident}

	_, err := svc.Create(context.Background(), outsider, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", Rating: 4})
	assert.ErrorIs(t, err, ErrNotApartmentResident)

	_, err = svc.Create(context.Background(), managerCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", Rating: 4})
	assert.ErrorIs(t, err, ErrNotApartmentResident)
}

func TestFeedbackService_Create_Reply(t *testing.T) {
	svc, f, notifier := setupFeedbackService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, residentCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", Rating: 2, Comment: "Sửa chưa xong"})
	require.NoError(t, err)

	reply, err := svc.Create(ctx, managerCaller, &dto.CreateFeedbackRequest{
		RepairRequestID:  "req-1",
		ParentFeedbackID: &root.ID,
		Rating:           5, // ignored on replies
		Comment:          "Chúng tôi sẽ kiểm tra lại",
	})
	require.NoError(t, err)
	assert.Zero(t, reply.Rating)
	assert.Len(t, f.feedback.rows, 2)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, []string{residentCaller.UserID}, notifier.sent[0].users)

	_, err = svc.Create(ctx, managerCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-2", ParentFeedbackID: &root.ID})
	assert.ErrorIs(t, err, ErrFeedbackParentMismatch)
}

func TestFeedbackService_Delete_RemovesSubtree(t *testing.T) {
	svc, f, _ := setupFeedbackService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, residentCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", Rating: 3})
	require.NoError(t, err)
	child, err := svc.Create(ctx, managerCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", ParentFeedbackID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, residentCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", ParentFeedbackID: &child.ID})
	require.NoError(t, err)
	other, err := svc.Create(ctx, residentCaller, &dto.CreateFeedbackRequest{RepairRequestID: "req-1", Rating: 5})
	require.NoError(t, err)

	other2 := dto.Caller{UserID: "resident-2", Role: model.RoleResident}
	assert.ErrorIs(t, svc.Delete(ctx, other2, root.ID), ErrFeedbackNotAuthor)

	require.NoError(t, svc.Delete(ctx, residentCaller, root.ID))
	assert.ElementsMatch(t, []string{root.ID, child.ID, grandchild.ID}, f.feedback.deleted)
	assert.NotContains(t, f.feedback.deleted, other.ID)
	assert.Equal(t, 1, f.tx.commits)
}

func TestBuildFeedbackTree(t *testing.T) {
	p := func(s string) *string { return &s }
	thread := []model.Feedback{
		{FeedbackID: "a", Rating: 4},
		{FeedbackID: "b", ParentFeedbackID: p("a")},
		{FeedbackID: "c", Rating: 2},
		{FeedbackID: "d", ParentFeedbackID: p("b")},
		{FeedbackID: "e", ParentFeedbackID: p("gone")},
	}

	tree := buildFeedbackTree(thread)
	require.Len(t, tree, 3)
	assert.Equal(t, "a", tree[0].ID)
	assert.Equal(t, "c", tree[1].ID)
	assert.Equal(t, "e", tree[2].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "b", tree[0].Replies[0].ID)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "d", tree[0].Replies[0].Replies[0].ID)
}

func TestSubtree(t *testing.T) {
	p := func(s string) *string { return &s }
	thread := []model.Feedback{
		{FeedbackID: "a"},
		{FeedbackID: "b", ParentFeedbackID: p("a")},
		{FeedbackID: "c", ParentFeedbackID: p("b")},
		{FeedbackID: "d"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, subtree(thread, "a"))
	assert.Equal(t, []string{"c"}, subtree(thread, "c"))
}

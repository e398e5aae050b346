package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
)

type fakeConversationRepo struct {
	repository.ConversationRepository
	rows        map[string]*model.Conversation
	touched     map[string]time.Time
	dupOnCreate bool // insert loses a race against a concurrent pair conversation
}

func (r *fakeConversationRepo) Create(_ context.Context, c *model.Conversation) error {
	if r.dupOnCreate {
		return gorm.ErrDuplicatedKey
	}
	c.ConversationID = nextID("conv")
	r.rows[c.ConversationID] = c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (*model.Conversation, error) {
	if c, ok := r.rows[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) GetByPairKey(_ context.Context, key string) (*model.Conversation, error) {
	for _, c := range r.rows {
		if c.PairKey != nil && *c.PairKey == key {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	c, ok := r.rows[conversationID]
	return ok && hasParticipant(c, userID), nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, conversationID string, at time.Time) error {
	r.touched[conversationID] = at
	return nil
}

type fakeMessageRepo struct {
	repository.MessageRepository
	rows []*model.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, m *model.Message) error {
	m.MessageID = nextID("msg")
	r.rows = append(r.rows, m)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	for _, m := range r.rows {
		if m.MessageID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) AdvanceStatus(_ context.Context, conversationID, readerID string, status model.MessageStatus, at time.Time) (int64, error) {
	var n int64
	for _, m := range r.rows {
		if m.ConversationID == conversationID && m.SenderID != readerID && m.Status.Rank() < status.Rank() {
			m.Status = status
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

type chatFixture struct {
	*fixture
	convs    *fakeConversationRepo
	messages *fakeMessageRepo
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := newFixture()
	f.users.users = []model.User{
		{UserID: "u-1", FirstName: "Lan", Role: model.RoleResident, Status: model.StatusActive},
		{UserID: "u-2", FirstName: "Hùng", Role: model.RoleReceptionist, Status: model.StatusActive},
		{UserID: "u-3", FirstName: "Tâm", Role: model.RoleTechnician, Status: model.StatusActive},
	}
	c := &chatFixture{
		fixture:  f,
		convs:    &fakeConversationRepo{rows: map[string]*model.Conversation{}, touched: map[string]time.Time{}},
		messages: &fakeMessageRepo{},
	}
	f.repo.Conversation = c.convs
	f.repo.Message = c.messages
	return c
}

func TestConversationService_Create_PairIsUnique(t *testing.T) {
	c := newChatFixture(t)
	svc := NewConversationService(c.repo, zap.NewNop())
	ctx := context.Background()
	u1 := dto.Caller{UserID: "u-1", Role: model.RoleResident}
	u2 := dto.Caller{UserID: "u-2", Role: model.RoleReceptionist}

	resp, err := svc.Create(ctx, u1, &dto.CreateConversationRequest{ParticipantIDs: []string{"u-2"}})
	require.NoError(t, err)
	require.Len(t, resp.Participants, 2)
	assert.Equal(t, "Lan", resp.Participants[0].FullName)

	stored := c.convs.rows[resp.ID]
	require.NotNil(t, stored.PairKey)
	assert.Equal(t, "u-1:u-2", *stored.PairKey)

	_, err = svc.Create(ctx, u2, &dto.CreateConversationRequest{ParticipantIDs: []string{"u-1"}})
	require.ErrorIs(t, err, ErrConversationExists)
	assert.Len(t, c.convs.rows, 1)
}

func TestConversationService_Create_GroupsRepeatFreely(t *testing.T) {
	c := newChatFixture(t)
	svc := NewConversationService(c.repo, zap.NewNop())
	u1 := dto.Caller{UserID: "u-1", Role: model.RoleResident}
	req := &dto.CreateConversationRequest{Title: "Sửa bồn nước", ParticipantIDs: []string{"u-2", "u-3"}}

	for i := 0; i < 2; i++ {
		resp, err := svc.Create(context.Background(), u1, req)
		require.NoError(t, err)
		assert.Nil(t, c.convs.rows[resp.ID].PairKey)
	}
	assert.Len(t, c.convs.rows, 2)
}

func TestConversationService_Create_Rejections(t *testing.T) {
	u1 := dto.Caller{UserID: "u-1", Role: model.RoleResident}
	tests := []struct {
		name    string
		ids     []string
		prepare func(c *chatFixture)
		wantErr error
	}{
		{"only the caller", []string{"u-1"}, nil, ErrConversationTooFew},
		{"unknown participant", []string{"u-9"}, nil, ErrParticipantNotFound},
		{"pair created concurrently", []string{"u-2"}, func(c *chatFixture) { c.convs.dupOnCreate = true }, ErrConversationExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChatFixture(t)
			if tt.prepare != nil {
				tt.prepare(c)
			}
			svc := NewConversationService(c.repo, zap.NewNop())

			_, err := svc.Create(context.Background(), u1, &dto.CreateConversationRequest{ParticipantIDs: tt.ids})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, c.convs.rows)
		})
	}
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, pairKey("a", "b"), pairKey("b", "a"))
	assert.Equal(t, "a:b", pairKey("b", "a"))
}

func TestMemberIDs(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		ids    []string
		want   []string
	}{
		{"caller only", "u-2", nil, []string{"u-2"}},
		{"caller added and sorted", "u-2", []string{"u-3", "u-1"}, []string{"u-1", "u-2", "u-3"}},
		{"duplicates and blanks dropped", "u-1", []string{"u-1", " u-2 ", "", "u-2"}, []string{"u-1", "u-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, memberIDs(tt.caller, tt.ids))
		})
	}
}

func TestToMessageResponse_ReplyPreviewTruncated(t *testing.T) {
	long := make([]rune, replyPreviewLen+20)
	for i := range long {
		long[i] = 'ă'
	}
	reply := &model.Message{MessageID: "m-1", SenderID: "u-1", Type: model.MessageText, Content: string(long)}
	msg := &model.Message{MessageID: "m-2", ConversationID: "c-1", Type: model.MessageText, Content: "ok", ReplyToMessageID: strPtr("m-1")}

	resp := toMessageResponse(msg, reply)
	if assert.NotNil(t, resp.ReplyTo) {
		assert.Equal(t, replyPreviewLen+1, len([]rune(resp.ReplyTo.Content)))
		assert.Equal(t, "m-1", resp.ReplyTo.ID)
	}
}

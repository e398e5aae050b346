package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
)

type fakeAccessoryRepo struct {
	repository.AccessoryRepository
	rows    map[string]*model.Accessory
	deleted []string
}

func (r *fakeAccessoryRepo) Create(_ context.Context, a *model.Accessory) error {
	a.AccessoryID = nextID("acc")
	r.rows[a.AccessoryID] = a
	return nil
}

func (r *fakeAccessoryRepo) Update(_ context.Context, a *model.Accessory) error {
	r.rows[a.AccessoryID] = a
	return nil
}

func (r *fakeAccessoryRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.rows, id)
	return nil
}

func (r *fakeAccessoryRepo) GetByID(_ context.Context, id string) (*model.Accessory, error) {
	if a, ok := r.rows[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccessoryRepo) ExistsName(_ context.Context, name, excludeID string) (bool, error) {
	for id, a := range r.rows {
		if id != excludeID && strings.EqualFold(a.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func setupAccessory() (AccessoryService, *fakeAccessoryRepo) {
	store := &fakeAccessoryRepo{rows: map[string]*model.Accessory{}}
	repo := &repository.Repository{Accessory: store}
	return NewAccessoryService(repo, zap.NewNop()), store
}

func TestAccessory_Create(t *testing.T) {
	svc, store := setupAccessory()
	ctx := context.Background()

	resp, err := svc.Create(ctx, managerCaller, &dto.AccessoryRequest{Name: "  Van khóa  ", Price: 120000, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Van khóa", resp.Name)
	assert.Equal(t, string(model.StatusActive), resp.Status)
	assert.Len(t, store.rows, 1)

	_, err = svc.Create(ctx, managerCaller, &dto.AccessoryRequest{Name: "van KHÓA"})
	require.ErrorIs(t, err, ErrAccessoryNameExists)
}

func TestAccessory_StockValidation(t *testing.T) {
	svc, store := setupAccessory()

	_, err := svc.Create(context.Background(), managerCaller, &dto.AccessoryRequest{Name: "Ống nước", Price: -1})
	require.ErrorIs(t, err, ErrAccessoryPrice)

	_, err = svc.Create(context.Background(), managerCaller, &dto.AccessoryRequest{Name: "Ống nước", Quantity: -3})
	require.ErrorIs(t, err, ErrAccessoryQuantity)

	assert.Empty(t, store.rows)
}

func TestAccessory_UpdateKeepsOwnName(t *testing.T) {
	svc, _ := setupAccessory()
	ctx := context.Background()
	created, err := svc.Create(ctx, managerCaller, &dto.AccessoryRequest{Name: "Bóng đèn", Price: 30000, Quantity: 10})
	require.NoError(t, err)
	_, err = svc.Create(ctx, managerCaller, &dto.AccessoryRequest{Name: "Công tắc"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, managerCaller, created.ID, &dto.AccessoryRequest{Name: "bóng đèn", Price: 35000, Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, float64(35000), updated.Price)

	_, err = svc.Update(ctx, managerCaller, created.ID, &dto.AccessoryRequest{Name: "Công tắc"})
	require.ErrorIs(t, err, ErrAccessoryNameExists)

	_, err = svc.Update(ctx, managerCaller, "missing", &dto.AccessoryRequest{Name: "X"})
	require.ErrorIs(t, err, ErrAccessoryNotFound)
}

func TestAccessory_GetMissingIsEmpty(t *testing.T) {
	svc, _ := setupAccessory()

	resp, err := svc.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, dto.AccessoryResponse{}, *resp)
}

func TestAccessory_Delete(t *testing.T) {
	svc, store := setupAccessory()
	ctx := context.Background()
	created, err := svc.Create(ctx, managerCaller, &dto.AccessoryRequest{Name: "Gioăng cao su"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, managerCaller, created.ID))
	assert.Equal(t, []string{created.ID}, store.deleted)
	require.ErrorIs(t, svc.Delete(ctx, managerCaller, created.ID), ErrAccessoryNotFound)
}

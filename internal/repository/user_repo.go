package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// UserFilter user list criteria
type UserFilter struct {
	Keyword string
	Role    model.Role
	Status  model.ActiveStatus
	Page
}

// UserRepository user data access
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsPhone(ctx context.Context, phone, excludeID string) (bool, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error)
	List(ctx context.Context, f UserFilter) ([]model.User, int64, error)
}

type userRepo struct {
	crud[model.User]
}

// NewUserRepo creates a UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{crud[model.User]{db: db}}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error { return r.create(ctx, user) }
func (r *userRepo) Update(ctx context.Context, user *model.User) error { return r.save(ctx, user) }

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, where("user_id = ?", id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, where("LOWER(email) = LOWER(?)", email))
}

func (r *userRepo) ExistsEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, where("LOWER(email) = LOWER(?)", email), excluding("user_id", excludeID))
}

func (r *userRepo) ExistsPhone(ctx context.Context, phone, excludeID string) (bool, error) {
	return r.exists(ctx, where("phone_number = ?", phone), excluding("user_id", excludeID))
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return r.find(ctx, where("user_id IN ?", ids))
}

func (r *userRepo) ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return r.find(ctx, where("role = ? AND status = ?", role, model.StatusActive), orderBy("last_name, first_name"))
}

func (r *userRepo) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	kw := likePattern(f.Keyword)
	return r.page(ctx, f.Page, "created_at DESC", nil,
		whereIf(f.Keyword != "", "(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?)", kw, kw, kw, kw),
		whereIf(f.Role != "", "role = ?", f.Role),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── accounts ──

// AccountRepository login credential data access
type AccountRepository interface {
	Create(ctx context.Context, acc *model.Account) error
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByUserID(ctx context.Context, userID string) (*model.Account, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	TouchLogin(ctx context.Context, accountID string, at time.Time) error
}

type accountRepo struct {
	crud[model.Account]
}

// NewAccountRepo creates an AccountRepository
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{crud[model.Account]{db: db}}
}

func (r *accountRepo) Create(ctx context.Context, acc *model.Account) error { return r.create(ctx, acc) }

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.first(ctx, preload("User"), where("LOWER(username) = LOWER(?)", username))
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID string) (*model.Account, error) {
	return r.first(ctx, preload("User"), where("user_id = ?", userID))
}

func (r *accountRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"password_hash": hash, "updated_at": gorm.Expr("NOW()")}).Error
}

func (r *accountRepo) TouchLogin(ctx context.Context, accountID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_id = ?", accountID).
		Update("last_login_at", at).Error
}

// ── device tokens ──

// AccountTokenRepository push device token data access
type AccountTokenRepository interface {
	Create(ctx context.Context, t *model.AccountToken) error
	Update(ctx context.Context, t *model.AccountToken) error
	GetByToken(ctx context.Context, token string) (*model.AccountToken, error)
	DeleteByToken(ctx context.Context, userID, token string) (int64, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]model.AccountToken, error)
}

type accountTokenRepo struct {
	crud[model.AccountToken]
}

// NewAccountTokenRepo creates an AccountTokenRepository
func NewAccountTokenRepo(db *gorm.DB) AccountTokenRepository {
	return &accountTokenRepo{crud[model.AccountToken]{db: db}}
}

func (r *accountTokenRepo) Create(ctx context.Context, t *model.AccountToken) error {
	return r.create(ctx, t)
}

func (r *accountTokenRepo) Update(ctx context.Context, t *model.AccountToken) error {
	return r.save(ctx, t)
}

func (r *accountTokenRepo) GetByToken(ctx context.Context, token string) (*model.AccountToken, error) {
	return r.first(ctx, where("device_token = ?", token))
}

func (r *accountTokenRepo) DeleteByToken(ctx context.Context, userID, token string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND device_token = ?", userID, token).
		Delete(&model.AccountToken{})
	return res.RowsAffected, res.Error
}

func (r *accountTokenRepo) ListByUserIDs(ctx context.Context, userIDs []string) ([]model.AccountToken, error) {
	if len(userIDs) == 0 {
		return []model.AccountToken{}, nil
	}
	return r.find(ctx, where("user_id IN ?", userIDs))
}

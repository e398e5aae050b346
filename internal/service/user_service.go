package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

// only profiles are cached under this prefix, one entry per user
const userCachePrefix = "user"

// ── user errors ──

var (
	ErrUserNotFound        = apperr.NotFound("Người dùng không tồn tại")
	ErrUserInactive        = apperr.Forbidden("Tài khoản đã bị vô hiệu hóa")
	ErrUserEmailExists     = apperr.Conflict("Email đã được sử dụng")
	ErrUserPhoneExists     = apperr.Conflict("Số điện thoại đã được sử dụng")
	ErrUserAlreadyActive   = apperr.Validation("Người dùng đã ở trạng thái hoạt động")
	ErrUserAlreadyInactive = apperr.Validation("Người dùng đã ở trạng thái ngừng hoạt động")
	ErrUserSelfDeactivate  = apperr.Validation("Không thể tự vô hiệu hóa tài khoản của mình")
)

// UserService user administration
type UserService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, caller dto.Caller, id string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	repo            *repository.Repository
	cache           Cache
	ttl             time.Duration
	defaultPassword string
	logger          *zap.Logger
}

// NewUserService creates a UserService. Accounts created with an empty
// defaultPassword get a random one.
func NewUserService(repo *repository.Repository, cache Cache, ttl time.Duration, defaultPassword string, logger *zap.Logger) UserService {
	return &userService{repo: repo, cache: cache, ttl: ttl, defaultPassword: defaultPassword, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.checkUnique(ctx, email, req.PhoneNumber, ""); err != nil {
		return nil, err
	}

	password := s.defaultPassword
	if password == "" {
		var err error
		if password, err = generateTempPassword(10); err != nil {
			s.logger.Error("generate password failed", zap.Error(err))
			return nil, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       email,
		PhoneNumber: req.PhoneNumber,
		Role:        model.Role(req.Role),
		Status:      model.StatusActive,
	}
	user.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "create user", func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		acc := &model.Account{
			UserID:       user.UserID,
			Username:     email,
			PasswordHash: string(hash),
		}
		acc.Stamp(caller.UserID)
		return tx.Account.Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID), zap.String("role", req.Role))

	return &dto.CreateUserResponse{
		User:            *toUserResponse(user),
		Username:        email,
		InitialPassword: password,
	}, nil
}

func (s *userService) checkUnique(ctx context.Context, email, phone, excludeID string) error {
	if email != "" {
		exists, err := s.repo.User.ExistsEmail(ctx, email, excludeID)
		if err != nil {
			s.logger.Error("check email failed", zap.Error(err))
			return err
		}
		if exists {
			return ErrUserEmailExists
		}
	}
	if phone != "" {
		exists, err := s.repo.User.ExistsPhone(ctx, phone, excludeID)
		if err != nil {
			s.logger.Error("check phone failed", zap.Error(err))
			return err
		}
		if exists {
			return ErrUserPhoneExists
		}
	}
	return nil
}

// ────────────────────── Update ──────────────────────

// Update changes a profile. Users edit themselves; administrators edit anyone.
func (s *userService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if caller.UserID != id && !caller.HasRole(model.RoleAdmin) {
		return nil, ErrPermissionDenied
	}

	user, err := get(ctx, s.logger, s.repo.User.GetByID, id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	var email, phone string
	if req.Email != nil {
		if e := strings.ToLower(strings.TrimSpace(*req.Email)); e != user.Email {
			email = e
		}
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != user.PhoneNumber {
		phone = *req.PhoneNumber
	}
	if err := s.checkUnique(ctx, email, phone, id); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if email != "" {
		user.Email = email
	}
	if phone != "" {
		user.PhoneNumber = phone
	}
	user.Stamp(caller.UserID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	evict(ctx, s.cache, s.logger, cacheKey(userCachePrefix, id))
	return toUserResponse(user), nil
}

// ────────────────────── Query ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	return cached(ctx, s.cache, s.logger, cacheKey(userCachePrefix, id), s.ttl, func() (*dto.UserResponse, error) {
		user, err := get(ctx, s.logger, s.repo.User.GetByID, id, ErrUserNotFound)
		if err != nil {
			return nil, err
		}
		return toUserResponse(user), nil
	})
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Keyword: req.Keyword,
		Role:    model.Role(req.Role),
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Status ──────────────────────

func (s *userService) Activate(ctx context.Context, caller dto.Caller, id string) (*dto.UserResponse, error) {
	return s.setStatus(ctx, caller, id, model.StatusActive)
}

func (s *userService) Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.UserResponse, error) {
	if caller.UserID == id {
		return nil, ErrUserSelfDeactivate
	}
	return s.setStatus(ctx, caller, id, model.StatusInactive)
}

func (s *userService) setStatus(ctx context.Context, caller dto.Caller, id string, status model.ActiveStatus) (*dto.UserResponse, error) {
	user, err := get(ctx, s.logger, s.repo.User.GetByID, id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		if status == model.StatusActive {
			return nil, ErrUserAlreadyActive
		}
		return nil, ErrUserAlreadyInactive
	}

	user.Status = status
	user.Stamp(caller.UserID)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	evict(ctx, s.cache, s.logger, cacheKey(userCachePrefix, id))
	return toUserResponse(user), nil
}

// ────────────────────── Reset password ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, caller dto.Caller, id string) (*dto.ResetPasswordResponse, error) {
	if _, err := get(ctx, s.logger, s.repo.User.GetByID, id, ErrUserNotFound); err != nil {
		return nil, err
	}

	temp, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("generate password failed", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Account.UpdatePassword(ctx, id, string(hash)); err != nil {
		s.logger.Error("reset password failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("password reset", zap.String("user_id", id), zap.String("by", caller.UserID))
	return &dto.ResetPasswordResponse{UserID: id, TempPassword: temp}, nil
}

// generateTempPassword random password holding at least one letter and one digit
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	return string(result), nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.UserID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Status:      string(u.Status),
		AvatarURL:   u.AvatarURL,
		CreatedAt:   formatTime(u.CreatedAt),
	}
}

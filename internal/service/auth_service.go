package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
	"aptcare/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials  = apperr.Validation("Tên đăng nhập hoặc mật khẩu không đúng")
	ErrInvalidRefreshToken = apperr.Validation("Refresh token không hợp lệ hoặc đã hết hạn")
	ErrWrongPassword       = apperr.Validation("Mật khẩu hiện tại không đúng")
	ErrSamePassword        = apperr.Validation("Mật khẩu mới phải khác mật khẩu hiện tại")
	ErrDeviceTokenNotFound = apperr.NotFound("Thiết bị chưa được đăng ký")
)

// AuthService authentication, session and device registration
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	// Logout revokes the presented access token and, when given, the refresh token
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, caller dto.Caller) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, caller dto.Caller, req *dto.ChangePasswordRequest) (string, error)

	RegisterDeviceToken(ctx context.Context, caller dto.Caller, req *dto.DeviceTokenRequest) (string, error)
	RemoveDeviceToken(ctx context.Context, caller dto.Caller, token string) (string, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	acc, err := s.repo.Account.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load account failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if acc.User == nil {
		return nil, ErrInvalidCredentials
	}
	if acc.User.Status != model.StatusActive {
		return nil, ErrUserInactive
	}

	resp, err := s.issue(acc.User)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Account.TouchLogin(ctx, acc.AccountID, time.Now()); err != nil {
		s.logger.Warn("record last login failed", zap.String("user_id", acc.UserID), zap.Error(err))
	}
	return resp, nil
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("check token blacklist failed", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidRefreshToken
	}

	user, err := get(ctx, s.logger, s.repo.User.GetByID, claims.UserID, ErrInvalidRefreshToken)
	if err != nil {
		return nil, err
	}
	if user.Status != model.StatusActive {
		return nil, ErrUserInactive
	}

	// refresh tokens are single use
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("revoke refresh token failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access != nil {
		if err := s.blacklist.BlacklistToken(ctx, access.ID, access.RemainingTTL()); err != nil {
			s.logger.Error("revoke access token failed", zap.String("user_id", access.UserID), zap.Error(err))
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		// already unusable
		return nil
	}
	if access != nil && claims.UserID != access.UserID {
		return ErrInvalidRefreshToken
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("revoke refresh token failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Profile ──────────────────────

func (s *authService) Me(ctx context.Context, caller dto.Caller) (*dto.UserResponse, error) {
	user, err := get(ctx, s.logger, s.repo.User.GetByID, caller.UserID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, caller dto.Caller, req *dto.ChangePasswordRequest) (string, error) {
	acc, err := get(ctx, s.logger, s.repo.Account.GetByUserID, caller.UserID, ErrUserNotFound)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.OldPassword)); err != nil {
		return "", ErrWrongPassword
	}
	if req.OldPassword == req.NewPassword {
		return "", ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return "", err
	}
	if err := s.repo.Account.UpdatePassword(ctx, caller.UserID, string(hash)); err != nil {
		s.logger.Error("update password failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return "", err
	}
	return "Đổi mật khẩu thành công", nil
}

// ────────────────────── Device tokens ──────────────────────

// RegisterDeviceToken binds a push token to the caller. A token already known for
// another account moves to the caller, since one device signs in as one user at a time.
func (s *authService) RegisterDeviceToken(ctx context.Context, caller dto.Caller, req *dto.DeviceTokenRequest) (string, error) {
	existing, err := s.repo.AccountToken.GetByToken(ctx, req.DeviceToken)
	switch {
	case err == nil:
		if existing.UserID == caller.UserID && existing.Platform == req.Platform {
			return "Đăng ký thiết bị thành công", nil
		}
		existing.UserID = caller.UserID
		existing.Platform = req.Platform
		existing.Stamp(caller.UserID)
		if err := s.repo.AccountToken.Update(ctx, existing); err != nil {
			s.logger.Error("rebind device token failed", zap.String("user_id", caller.UserID), zap.Error(err))
			return "", err
		}
		return "Đăng ký thiết bị thành công", nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("load device token failed", zap.Error(err))
		return "", err
	}

	t := &model.AccountToken{
		UserID:      caller.UserID,
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
	}
	t.Stamp(caller.UserID)
	if err := s.repo.AccountToken.Create(ctx, t); err != nil {
		s.logger.Error("register device token failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return "", err
	}
	return "Đăng ký thiết bị thành công", nil
}

func (s *authService) RemoveDeviceToken(ctx context.Context, caller dto.Caller, token string) (string, error) {
	n, err := s.repo.AccountToken.DeleteByToken(ctx, caller.UserID, token)
	if err != nil {
		s.logger.Error("remove device token failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return "", err
	}
	if n == 0 {
		return "", ErrDeviceTokenNotFound
	}
	return "Hủy đăng ký thiết bị thành công", nil
}

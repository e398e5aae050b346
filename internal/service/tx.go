package service

import (
	"context"

	"go.uber.org/zap"

	"aptcare/backend/internal/repository"
	applogger "aptcare/backend/pkg/logger"
)

// withTx runs fn against a transactional view of repo. Any error or panic from fn
// rolls the transaction back; otherwise it is committed. Failures are logged
// with the request id carried by ctx.
func withTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, op string, fn func(tx *repository.Repository) error) error {
	logger = applogger.Ctx(ctx, logger)
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("begin transaction failed", zap.String("op", op), zap.Error(err))
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			logger.Error("transaction rolled back after panic", zap.String("op", op), zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", zap.String("op", op), zap.Error(rbErr))
		}
		logger.Warn("transaction rolled back", zap.String("op", op), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("commit failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

package services

import (
	"context"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/repositories"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

// CleanupService drops rows the flow abandoned: pending sessions whose
// challenge expired long ago, and invites nobody ever answered.
type CleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type cleanupService struct {
	allowlistRepo repositories.AllowlistRepository
	pendingRepo   repositories.PendingSessionRepository
}

func NewCleanupService(
	allowlistRepo repositories.AllowlistRepository,
	pendingRepo repositories.PendingSessionRepository,
) CleanupService {
	return &cleanupService{
		allowlistRepo: allowlistRepo,
		pendingRepo:   pendingRepo,
	}
}

func (s *cleanupService) CleanupDaily(ctx context.Context) error {
	if err := s.pendingRepo.CleanupOlderThan(ctx, config.StalePendingSessionHours); err != nil {
		utils.Logger.WithError(err).Error("Failed to clean up stale pending sessions")
		return err
	}
	if err := s.allowlistRepo.CleanupOlderThan(ctx, config.StaleAllowlistDays); err != nil {
		utils.Logger.WithError(err).Error("Failed to clean up stale allowlist entries")
		return err
	}
	utils.Logger.Info("Daily enrollment cleanup completed")
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
)

type dashboardOutings interface {
	ListPending(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error)
	Stats(ctx context.Context, scope models.ViewerScope) (*models.OutingStats, error)
}

type noticeReader interface {
	ListNotices(ctx context.Context, role models.UserRole, limit int) ([]models.Notice, error)
}

// DashboardService assembles the role-scoped landing view and caches it in
// Redis keyed per viewer. Writers invalidate with the dashboard:* pattern.
type DashboardService struct {
	outings  dashboardOutings
	notices  noticeReader
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(outings dashboardOutings, notices noticeReader, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		outings:  outings,
		notices:  notices,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the dashboard payload for the viewer, served from cache
// when a fresh copy exists.
func (s *DashboardService) Summary(ctx context.Context, scope models.ViewerScope) (*dto.DashboardPayload, bool, error) {
	key := fmt.Sprintf("dashboard:%s:%s", scope.Role, scope.UserID)

	if s.cache != nil {
		var cached dto.DashboardPayload
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.outings.Stats(ctx, scope)
	if err != nil {
		return nil, false, err
	}

	pending, _, err := s.outings.ListPending(ctx, scope, dto.OutingQuery{Limit: 5})
	if err != nil {
		return nil, false, err
	}

	notices, err := s.notices.ListNotices(ctx, scope.Role, 5)
	if err != nil {
		s.logger.Warn("failed to load notices for dashboard", zap.Error(err))
		notices = nil
	}

	payload := &dto.DashboardPayload{
		Stats:        *stats,
		PendingQueue: pending,
		Notices:      notices,
		GeneratedAt:  s.now().Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard payload", zap.String("key", key), zap.Error(err))
		}
	}
	return payload, false, nil
}

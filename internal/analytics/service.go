package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taplist/internal/shared/constants"
	"taplist/pkg/cache"
)

type Service interface {
	GetOverview() (*OverviewAnalytics, error)
	GetBatchAnalytics() ([]BatchAnalytics, error)
	GetTagAnalytics(batchID *uuid.UUID) ([]TagAnalytics, error)
	GetDeviceBreakdown() ([]DeviceBreakdown, error)
	GetDailyStats(days int) ([]DailyTapStats, error)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetOverview() (*OverviewAnalytics, error) {
	ctx := context.Background()
	cacheKey := constants.CACHE_KEY_ANALYTICS_OVERVIEW

	if s.cacheService != nil {
		var cached OverviewAnalytics
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview()
	if err != nil {
		return nil, fmt.Errorf("failed to get overview analytics: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, overview, constants.TTL_DYNAMIC_MEDIUM)
	}

	return overview, nil
}

func (s *service) GetBatchAnalytics() ([]BatchAnalytics, error) {
	ctx := context.Background()
	cacheKey := constants.CACHE_KEY_ANALYTICS_BATCHES

	if s.cacheService != nil {
		var cached []BatchAnalytics
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	results, err := s.repo.GetBatchAnalytics()
	if err != nil {
		return nil, fmt.Errorf("failed to get batch analytics: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, results, constants.TTL_DYNAMIC_MEDIUM)
	}

	return results, nil
}

func (s *service) GetTagAnalytics(batchID *uuid.UUID) ([]TagAnalytics, error) {
	ctx := context.Background()
	cacheKey := constants.CACHE_KEY_ANALYTICS_TAGS
	if batchID != nil {
		cacheKey = fmt.Sprintf("%s:batch:%s", cacheKey, batchID.String())
	}

	if s.cacheService != nil {
		var cached []TagAnalytics
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	results, err := s.repo.GetTagAnalytics(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag analytics: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, results, constants.TTL_DYNAMIC_SHORT)
	}

	return results, nil
}

func (s *service) GetDeviceBreakdown() ([]DeviceBreakdown, error) {
	ctx := context.Background()
	cacheKey := constants.CACHE_KEY_ANALYTICS_DEVICES

	if s.cacheService != nil {
		var cached []DeviceBreakdown
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	results, err := s.repo.GetDeviceBreakdown()
	if err != nil {
		return nil, fmt.Errorf("failed to get device breakdown: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, results, constants.TTL_DYNAMIC_MEDIUM)
	}

	return results, nil
}

func (s *service) GetDailyStats(days int) ([]DailyTapStats, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("%s:days:%d", constants.CACHE_KEY_ANALYTICS_DAILY, days)

	if s.cacheService != nil {
		var cached []DailyTapStats
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	results, err := s.repo.GetDailyStats(days)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, results, constants.TTL_DYNAMIC_QUICK)
	}

	return results, nil
}

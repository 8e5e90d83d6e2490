// Package catalog содержит чтение каталога планов с кешированием.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

const (
	cacheKeyPlans = "plans:catalog"
	cacheTTL      = time.Hour
)

// PlanRepository определяет методы для работы с каталогом в хранилище.
type PlanRepository interface {
	// ListPlans возвращает весь каталог планов.
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	// GetPlanByPriceRef возвращает план по внешнему идентификатору цены.
	GetPlanByPriceRef(ctx context.Context, priceRef string) (*models.Plan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CatalogService реализует чтение каталога планов, включая кеширование.
type CatalogService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo PlanRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает каталог планов, используя кеш или репозиторий.
// Планы неизменяемы после привязки к покупке, поэтому кеш с TTL безопасен.
func (s *CatalogService) List(ctx context.Context) ([]*models.Plan, error) {
	var result []*models.Plan
	found, err := s.cache.Get(cacheKeyPlans, &result)
	if err != nil {
		s.log.Warn("failed to read plan catalog from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKeyPlans, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache plan catalog", slog.Any("err", err))
	}
	return result, nil
}

// GetByPriceRef возвращает план по внешнему идентификатору цены.
func (s *CatalogService) GetByPriceRef(ctx context.Context, priceRef string) (*models.Plan, error) {
	return s.repo.GetPlanByPriceRef(ctx, priceRef)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
)

// ErrParameterNotFound signals a flag absent from both cache and store.
var ErrParameterNotFound = errors.New("parameter not found")

const (
	paramKeyPrefix = "param:"
	paramCacheTTL  = time.Hour
)

// ParamsService is a read-through cache of configuration flags. Cached values
// may be stale by up to the TTL; the store stays authoritative.
type ParamsService struct {
	params repository.ParameterRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewParamsService builds the service.
func NewParamsService(params repository.ParameterRepository, cache *redis.Client, logger *zap.Logger) *ParamsService {
	return &ParamsService{params: params, cache: cache, logger: logger}
}

// Get returns a flag value, reading through to the store on a cache miss.
// A store miss is returned as ErrParameterNotFound without populating the
// cache, so an absent flag is re-checked on every call.
func (s *ParamsService) Get(ctx context.Context, key string) (string, error) {
	cacheKey := paramKeyPrefix + key

	value, err := s.cache.Get(ctx, cacheKey).Result()
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", err
	}

	s.logger.Warn("parameter missing from cache, reading store", zap.String("key", key))

	param, err := s.params.GetByKey(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrParameterNotFound
	}
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, cacheKey, param.Value, paramCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to repopulate parameter cache", zap.String("key", key), zap.Error(err))
	}
	return param.Value, nil
}

// IsEmailSendingEnabled reports whether welcome emails should be dispatched.
// Fail-closed: any error or absent flag disables sending.
func (s *ParamsService) IsEmailSendingEnabled(ctx context.Context) bool {
	value, err := s.Get(ctx, domain.ParamEmailSendingEnabled)
	if err != nil {
		s.logger.Warn("could not resolve email sending flag, defaulting to disabled", zap.Error(err))
		return false
	}
	return value == "true"
}

// Preload loads every known flag into the cache. Called at process start; the
// coordinator assumes a warm cache, so a failure here aborts startup.
func (s *ParamsService) Preload(ctx context.Context) (int, error) {
	params, err := s.params.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load parameters: %w", err)
	}

	loaded := 0
	for _, param := range params {
		if err := s.cache.Set(ctx, paramKeyPrefix+param.Key, param.Value, paramCacheTTL).Err(); err != nil {
			return loaded, fmt.Errorf("cache parameter %s: %w", param.Key, err)
		}
		loaded++
	}

	s.logger.Info("parameters preloaded", zap.Int("count", loaded))
	return loaded, nil
}

// Update writes the new value to the store and refreshes the cache entry.
func (s *ParamsService) Update(ctx context.Context, key, value string) (*domain.Parameter, error) {
	param, err := s.params.Update(ctx, key, value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrParameterNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, paramKeyPrefix+key, value, paramCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to refresh parameter cache", zap.String("key", key), zap.Error(err))
	}
	return param, nil
}

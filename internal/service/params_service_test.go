package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

type fakeParameterRepo struct {
	params    map[string]string
	getCalls  int
	getAllErr error
}

func newFakeParameterRepo(params map[string]string) *fakeParameterRepo {
	if params == nil {
		params = make(map[string]string)
	}
	return &fakeParameterRepo{params: params}
}

func (f *fakeParameterRepo) GetByKey(_ context.Context, key string) (*domain.Parameter, error) {
	f.getCalls++
	value, ok := f.params[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Parameter{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

func (f *fakeParameterRepo) GetAll(_ context.Context) ([]domain.Parameter, error) {
	if f.getAllErr != nil {
		return nil, f.getAllErr
	}
	params := make([]domain.Parameter, 0, len(f.params))
	for key, value := range f.params {
		params = append(params, domain.Parameter{Key: key, Value: value, UpdatedAt: time.Now()})
	}
	return params, nil
}

func (f *fakeParameterRepo) Update(_ context.Context, key, value string) (*domain.Parameter, error) {
	if _, ok := f.params[key]; !ok {
		return nil, pgx.ErrNoRows
	}
	f.params[key] = value
	return &domain.Parameter{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

func newParamsFixture(t *testing.T, params map[string]string) (*ParamsService, *fakeParameterRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	repo := newFakeParameterRepo(params)
	return NewParamsService(repo, cache, zap.NewNop()), repo, mr
}

func TestGetServesFromCache(t *testing.T) {
	svc, repo, mr := newParamsFixture(t, map[string]string{"EMAIL_SENDING_ENABLED": "true"})
	require.NoError(t, mr.Set("param:EMAIL_SENDING_ENABLED", "cached-value"))

	value, err := svc.Get(context.Background(), "EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, "cached-value", value)
	assert.Equal(t, 0, repo.getCalls)
}

func TestGetReadsThroughOnMiss(t *testing.T) {
	svc, repo, mr := newParamsFixture(t, map[string]string{"EMAIL_SENDING_ENABLED": "true"})

	value, err := svc.Get(context.Background(), "EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, "true", value)
	assert.Equal(t, 1, repo.getCalls)

	// The read-through populated the cache with a TTL.
	cached, err := mr.Get("param:EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, "true", cached)
	assert.Greater(t, mr.TTL("param:EMAIL_SENDING_ENABLED"), time.Duration(0))

	// Second call comes from the cache.
	_, err = svc.Get(context.Background(), "EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetUnknownKeyIsNotCached(t *testing.T) {
	svc, repo, mr := newParamsFixture(t, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Get(context.Background(), "NO_SUCH_FLAG")
		assert.ErrorIs(t, err, ErrParameterNotFound)
	}

	// No negative caching: every call re-checks the store.
	assert.Equal(t, 2, repo.getCalls)
	assert.False(t, mr.Exists("param:NO_SUCH_FLAG"))
}

func TestGetReloadsAfterTTLLapse(t *testing.T) {
	svc, repo, mr := newParamsFixture(t, map[string]string{"EMAIL_SENDING_ENABLED": "true"})

	_, err := svc.Get(context.Background(), "EMAIL_SENDING_ENABLED")
	require.NoError(t, err)

	repo.params["EMAIL_SENDING_ENABLED"] = "false"
	mr.FastForward(2 * time.Hour)

	value, err := svc.Get(context.Background(), "EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, "false", value)
	assert.Equal(t, 2, repo.getCalls)
}

func TestIsEmailSendingEnabled(t *testing.T) {
	svc, _, mr := newParamsFixture(t, nil)

	// Absent flag fails closed.
	assert.False(t, svc.IsEmailSendingEnabled(context.Background()))

	require.NoError(t, mr.Set("param:"+domain.ParamEmailSendingEnabled, "true"))
	assert.True(t, svc.IsEmailSendingEnabled(context.Background()))

	require.NoError(t, mr.Set("param:"+domain.ParamEmailSendingEnabled, "false"))
	assert.False(t, svc.IsEmailSendingEnabled(context.Background()))

	// Any value other than "true" disables sending.
	require.NoError(t, mr.Set("param:"+domain.ParamEmailSendingEnabled, "TRUE"))
	assert.False(t, svc.IsEmailSendingEnabled(context.Background()))
}

func TestIsEmailSendingEnabledFailsClosedWhenCacheDown(t *testing.T) {
	svc, _, mr := newParamsFixture(t, map[string]string{domain.ParamEmailSendingEnabled: "true"})
	mr.Close()

	assert.False(t, svc.IsEmailSendingEnabled(context.Background()))
}

func TestPreloadWarmsCache(t *testing.T) {
	svc, _, mr := newParamsFixture(t, map[string]string{
		"EMAIL_SENDING_ENABLED": "true",
		"MAINTENANCE_MODE":      "false",
	})

	loaded, err := svc.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	value, err := mr.Get("param:MAINTENANCE_MODE")
	require.NoError(t, err)
	assert.Equal(t, "false", value)
}

func TestPreloadFailsWhenStoreUnavailable(t *testing.T) {
	svc, repo, _ := newParamsFixture(t, nil)
	repo.getAllErr = errors.New("connection refused")

	_, err := svc.Preload(context.Background())
	require.Error(t, err)
}

func TestUpdateWritesThrough(t *testing.T) {
	svc, _, mr := newParamsFixture(t, map[string]string{"EMAIL_SENDING_ENABLED": "true"})

	param, err := svc.Update(context.Background(), "EMAIL_SENDING_ENABLED", "false")
	require.NoError(t, err)
	assert.Equal(t, "false", param.Value)

	cached, err := mr.Get("param:EMAIL_SENDING_ENABLED")
	require.NoError(t, err)
	assert.Equal(t, "false", cached)
}

func TestUpdateUnknownKey(t *testing.T) {
	svc, _, _ := newParamsFixture(t, nil)

	_, err := svc.Update(context.Background(), "NO_SUCH_FLAG", "on")
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

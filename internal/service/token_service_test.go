package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// fakeTokenRepo implements repository.TokenRepository in memory with the same
// conditional-consume contract as the Postgres implementation.
type fakeTokenRepo struct {
	mu         sync.Mutex
	tokens     map[string]*domain.Token
	nextID     int64
	duplicates int
	createErr  error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.Token)}
}

func (f *fakeTokenRepo) Create(_ context.Context, value string, ttl time.Duration) (*domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.duplicates > 0 {
		f.duplicates--
		return nil, repository.ErrDuplicateToken
	}
	if _, exists := f.tokens[value]; exists {
		return nil, repository.ErrDuplicateToken
	}

	f.nextID++
	now := time.Now()
	token := &domain.Token{
		ID:        f.nextID,
		Token:     value,
		IsValid:   true,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	f.tokens[value] = token
	clone := *token
	return &clone, nil
}

func (f *fakeTokenRepo) GetByValue(_ context.Context, value string) (*domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[value]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (f *fakeTokenRepo) Consume(_ context.Context, value string) (*domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[value]
	if !ok || !token.IsValid {
		return nil, repository.ErrTokenNotConsumable
	}
	now := time.Now()
	token.IsValid = false
	token.UsedAt = &now
	clone := *token
	return &clone, nil
}

func (f *fakeTokenRepo) Stats(_ context.Context) (*domain.TokenStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	stats := &domain.TokenStats{}
	for _, token := range f.tokens {
		stats.Total++
		if token.IsValid && now.Before(token.ExpiresAt) {
			stats.Valid++
		}
		if !token.IsValid {
			stats.Used++
		}
		if !now.Before(token.ExpiresAt) {
			stats.Expired++
		}
	}
	return stats, nil
}

func (f *fakeTokenRepo) seed(token *domain.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Token] = token
}

func newTokenService(repo repository.TokenRepository) *TokenService {
	return NewTokenService(config.TokenConfig{TTLMinutes: 60, MaxMintTries: 5}, repo, zap.NewNop())
}

func TestMintReturnsEightDigitToken(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := newTokenService(repo)

	token, err := svc.Mint(context.Background())
	require.NoError(t, err)

	assert.Len(t, token.Token, domain.TokenLength)
	assert.True(t, token.IsValid)
	assert.Equal(t, time.Hour, token.ExpiresAt.Sub(token.CreatedAt))
}

func TestMintRetriesOnDuplicate(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.duplicates = 3
	svc := newTokenService(repo)

	token, err := svc.Mint(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestMintExhaustsAfterMaxAttempts(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.duplicates = 5
	svc := newTokenService(repo)

	_, err := svc.Mint(context.Background())
	require.Error(t, err)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.ErrorIs(t, err, ErrMintExhausted)
}

func TestValidateRejectsMalformedToken(t *testing.T) {
	svc := newTokenService(newFakeTokenRepo())

	for _, value := range []string{"", "1234", "123456789"} {
		_, err := svc.Validate(context.Background(), value)
		var domainErr *util.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	}
}

func TestValidateTriState(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := newTokenService(repo)
	now := time.Now()

	usedAt := now.Add(-time.Minute)
	repo.seed(&domain.Token{ID: 1, Token: "11111111", IsValid: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	repo.seed(&domain.Token{ID: 2, Token: "22222222", IsValid: false, CreatedAt: now, ExpiresAt: now.Add(time.Hour), UsedAt: &usedAt})
	repo.seed(&domain.Token{ID: 3, Token: "33333333", IsValid: true, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)})

	result, err := svc.Validate(context.Background(), "11111111")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, domain.TokenStateValid, result.State)
	require.NotNil(t, result.Token)

	result, err = svc.Validate(context.Background(), "22222222")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, domain.TokenStateConsumed, result.State)

	result, err = svc.Validate(context.Background(), "33333333")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, domain.TokenStateExpired, result.State)

	result, err = svc.Validate(context.Background(), "99999999")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, domain.TokenStateNotFound, result.State)
}

func TestValidateDoesNotConsume(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := newTokenService(repo)
	now := time.Now()
	repo.seed(&domain.Token{ID: 1, Token: "11111111", IsValid: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})

	// Two validations in a row both observe Valid; the read is advisory.
	for i := 0; i < 2; i++ {
		result, err := svc.Validate(context.Background(), "11111111")
		require.NoError(t, err)
		assert.True(t, result.Valid)
	}
}

func TestMarkUsedConsumesExactlyOnceUnderRace(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := newTokenService(repo)
	now := time.Now()
	repo.seed(&domain.Token{ID: 1, Token: "55555555", IsValid: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.MarkUsed(context.Background(), "55555555")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var domainErr *util.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestMarkUsedIsIrreversible(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := newTokenService(repo)
	now := time.Now()
	repo.seed(&domain.Token{ID: 1, Token: "44444444", IsValid: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})

	token, err := svc.MarkUsed(context.Background(), "44444444")
	require.NoError(t, err)
	assert.False(t, token.IsValid)
	require.NotNil(t, token.UsedAt)

	_, err = svc.MarkUsed(context.Background(), "44444444")
	require.Error(t, err)
}

func TestMintPropagatesStoreErrors(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.createErr = errors.New("connection refused")
	svc := newTokenService(repo)

	_, err := svc.Mint(context.Background())
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
}

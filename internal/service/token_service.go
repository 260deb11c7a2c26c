package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// ErrMintExhausted signals that minting gave up after hitting the uniqueness
// conflict ceiling.
var ErrMintExhausted = errors.New("could not generate a unique token after maximum attempts")

// ValidationResult carries the tri-state outcome of a token check. The check
// is advisory only; Consume is the single point of mutual exclusion.
type ValidationResult struct {
	Valid   bool
	State   domain.TokenState
	Message string
	Token   *domain.Token
}

// TokenService owns the registration token lifecycle.
type TokenService struct {
	tokens   repository.TokenRepository
	logger   *zap.Logger
	ttl      time.Duration
	maxTries int
	now      func() time.Time
}

// NewTokenService builds the service.
func NewTokenService(cfg config.TokenConfig, tokens repository.TokenRepository, logger *zap.Logger) *TokenService {
	maxTries := cfg.MaxMintTries
	if maxTries <= 0 {
		maxTries = 5
	}
	return &TokenService{
		tokens:   tokens,
		logger:   logger,
		ttl:      cfg.TTL(),
		maxTries: maxTries,
		now:      time.Now,
	}
}

// Mint creates a new 8-digit token, retrying with fresh values on uniqueness
// conflicts up to the configured ceiling.
func (s *TokenService) Mint(ctx context.Context) (*domain.Token, error) {
	for attempt := 1; attempt <= s.maxTries; attempt++ {
		value := randomTokenValue()

		token, err := s.tokens.Create(ctx, value, s.ttl)
		if errors.Is(err, repository.ErrDuplicateToken) {
			s.logger.Warn("duplicate token value, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.maxTries))
			continue
		}
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		return token, nil
	}
	return nil, util.NewInternalError(ErrMintExhausted)
}

// Validate classifies a token without mutating it. Two concurrent callers may
// both observe Valid for the same token; only Consume decides the winner.
func (s *TokenService) Validate(ctx context.Context, value string) (*ValidationResult, error) {
	if len(value) != domain.TokenLength {
		return nil, util.NewValidationError(
			fmt.Sprintf("token must be exactly %d digits", domain.TokenLength), nil)
	}

	token, err := s.tokens.GetByValue(ctx, value)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ValidationResult{State: domain.TokenStateNotFound, Message: "token does not exist"}, nil
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	switch state := token.State(s.now()); state {
	case domain.TokenStateConsumed:
		return &ValidationResult{State: state, Message: "token already used"}, nil
	case domain.TokenStateExpired:
		return &ValidationResult{State: state, Message: "token expired"}, nil
	default:
		return &ValidationResult{Valid: true, State: state, Message: "token valid", Token: token}, nil
	}
}

// MarkUsed consumes the token via the repository's conditional update.
func (s *TokenService) MarkUsed(ctx context.Context, value string) (*domain.Token, error) {
	if len(value) != domain.TokenLength {
		return nil, util.NewValidationError(
			fmt.Sprintf("token must be exactly %d digits", domain.TokenLength), nil)
	}

	token, err := s.tokens.Consume(ctx, value)
	if errors.Is(err, repository.ErrTokenNotConsumable) {
		return nil, util.NewValidationError("token not valid or already used", nil)
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return token, nil
}

// Stats returns aggregate token counts.
func (s *TokenService) Stats(ctx context.Context) (*domain.TokenStats, error) {
	stats, err := s.tokens.Stats(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return stats, nil
}

// randomTokenValue returns a random numeric string in [10000000, 99999999].
func randomTokenValue() string {
	return fmt.Sprintf("%d", 10000000+rand.Intn(90000000))
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/client"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/queue"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// TokenAuthority is the coordinator's view of the token service.
type TokenAuthority interface {
	ValidateToken(ctx context.Context, token string) (*client.TokenValidation, error)
	MarkTokenUsed(ctx context.Context, token string) (*client.TokenConsumption, error)
}

// ConfigFlags gates notification dispatch.
type ConfigFlags interface {
	IsEmailSendingEnabled(ctx context.Context) bool
}

// RegistrationInput is the validated registration payload.
type RegistrationInput struct {
	DocumentType   domain.DocumentType
	DocumentNumber string
	GivenNames     string
	Surname        string
	BirthDate      time.Time
	Email          *string
	Phone          *string
	WelcomeBonus   float64
}

// RegistrationService orchestrates the cross-service registration protocol:
// token validation, business invariants, durable customer insert, best-effort
// token consumption, best-effort notification dispatch.
type RegistrationService struct {
	customers repository.CustomerRepository
	authority TokenAuthority
	flags     ConfigFlags
	publisher queue.Publisher
	subject   string
	logger    *zap.Logger
	now       func() time.Time
}

// RegistrationDependencies bundles collaborator requirements.
type RegistrationDependencies struct {
	CustomerRepo repository.CustomerRepository
	Authority    TokenAuthority
	Flags        ConfigFlags
	Publisher    queue.Publisher
}

// NewRegistrationService builds the service.
func NewRegistrationService(deps RegistrationDependencies, welcomeSubject string, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		customers: deps.CustomerRepo,
		authority: deps.Authority,
		flags:     deps.Flags,
		publisher: deps.Publisher,
		subject:   welcomeSubject,
		logger:    logger,
		now:       time.Now,
	}
}

// Register runs the sequenced registration protocol. The customer insert is
// durable before the token is consumed; the insert failing consumes nothing,
// and a consume failure after a successful insert leaves a bounded
// inconsistency that a retry resolves at the duplicate-document check.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput, token string) (*domain.Customer, error) {
	if len(token) != domain.TokenLength {
		return nil, util.NewValidationError(
			fmt.Sprintf("token must be exactly %d digits", domain.TokenLength), nil)
	}

	validation, err := s.authority.ValidateToken(ctx, token)
	if err != nil {
		s.logger.Error("token validation call failed", zap.Error(err))
		return nil, util.NewUpstreamUnavailable("token authority", err)
	}
	if !validation.Success || !validation.Valid {
		message := validation.Message
		if message == "" {
			message = "invalid token"
		}
		return nil, util.NewUnauthorized(message)
	}

	if age := domain.Age(input.BirthDate, s.now()); age < domain.MinimumAge {
		return nil, util.NewValidationError(
			fmt.Sprintf("customer must be at least %d years old", domain.MinimumAge), nil)
	}

	exists, err := s.customers.ExistsByDocument(ctx, input.DocumentType, input.DocumentNumber)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if exists {
		return nil, util.NewConflict("document number already registered", map[string]any{
			"numero_documento": input.DocumentNumber,
		})
	}

	customer := &domain.Customer{
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		GivenNames:     input.GivenNames,
		Surname:        input.Surname,
		BirthDate:      input.BirthDate,
		Email:          input.Email,
		Phone:          input.Phone,
		WelcomeBonus:   input.WelcomeBonus,
		TokenUsed:      token,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", customer.ID))

	// The customer record already exists; the registration outcome is fixed.
	// A token left consumable here is resolved by the duplicate-document
	// check on any retry, so the failure is logged and absorbed.
	if _, err := s.authority.MarkTokenUsed(ctx, token); err != nil {
		s.logger.Warn("could not mark token as used", zap.String("token", token), zap.Error(err))
	}

	s.dispatchWelcomeEmail(ctx, customer)

	return customer, nil
}

// GetCustomer fetches a customer by id.
func (s *RegistrationService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return customer, nil
}

// ListCustomers returns a page of customers, newest first.
func (s *RegistrationService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	customers, err := s.customers.List(ctx, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return customers, nil
}

// dispatchWelcomeEmail hands the notification job to the queue when the flag
// allows it and the customer supplied an email. Failures never reach the
// registration caller.
func (s *RegistrationService) dispatchWelcomeEmail(ctx context.Context, customer *domain.Customer) {
	if customer.Email == nil || *customer.Email == "" {
		s.logger.Info("customer has no email, skipping welcome notification",
			zap.Int64("customer_id", customer.ID))
		return
	}
	if !s.flags.IsEmailSendingEnabled(ctx) {
		s.logger.Info("email sending disabled, skipping welcome notification",
			zap.Int64("customer_id", customer.ID))
		return
	}

	customerID := customer.ID
	job := &domain.EmailJob{
		JobID:          uuid.NewString(),
		RecipientEmail: *customer.Email,
		RecipientName:  customer.GivenNames + " " + customer.Surname,
		Subject:        s.subject,
		Message: fmt.Sprintf(
			"Hello %s,\n\nThanks for signing up. Your welcome bonus is: %.2f.\n\nEnjoy our services!",
			customer.GivenNames, customer.WelcomeBonus),
		CustomerID: &customerID,
		Metadata: map[string]string{
			"tipo_documento":   string(customer.DocumentType),
			"numero_documento": customer.DocumentNumber,
		},
	}

	if err := s.publisher.Publish(ctx, job); err != nil {
		s.logger.Warn("could not publish welcome email job",
			zap.Int64("customer_id", customer.ID), zap.Error(err))
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mangoesafterplay/customer-onboarding/internal/api/dto"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// CustomersHandler exposes the registration coordinator endpoints.
type CustomersHandler struct {
	registration *service.RegistrationService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(registrationService *service.RegistrationService) *CustomersHandler {
	return &CustomersHandler{registration: registrationService}
}

// Register handles POST /customers/register.
func (h *CustomersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	input, err := parseRegistration(&req)
	if err != nil {
		return err
	}

	customer, err := h.registration.Register(c.UserContext(), *input, req.Token)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "customer registered",
		"data":    dto.FromCustomer(customer),
	})
}

// Get handles GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return util.NewValidationError("invalid customer id", nil)
	}

	customer, err := h.registration.GetCustomer(c.UserContext(), int64(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.FromCustomer(customer),
	})
}

// List handles GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	customers, err := h.registration.ListCustomers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.FromCustomers(customers),
		"pagination": fiber.Map{
			"limit":  limit,
			"offset": offset,
			"total":  len(customers),
		},
	})
}

func parseRegistration(req *dto.RegisterCustomerRequest) (*service.RegistrationInput, error) {
	details := map[string]any{}
	if req.DocumentNumber == "" {
		details["numero_documento"] = "required"
	}
	if req.GivenNames == "" {
		details["nombres"] = "required"
	}
	if req.Surname == "" {
		details["apellidos"] = "required"
	}
	docType := domain.DocumentType(req.DocumentType)
	if !domain.ValidDocumentType(docType) {
		details["tipo_documento"] = "must be NATIONAL_ID or FOREIGN_RESIDENT_CARD"
	}
	birthDate, err := time.Parse(dto.BirthDateLayout, req.BirthDate)
	if err != nil {
		details["fecha_nacimiento"] = "must be a date in YYYY-MM-DD format"
	}
	if req.WelcomeBonus < 0 {
		details["bono_bienvenida"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, util.NewValidationError("invalid registration payload", details)
	}

	return &service.RegistrationInput{
		DocumentType:   docType,
		DocumentNumber: req.DocumentNumber,
		GivenNames:     req.GivenNames,
		Surname:        req.Surname,
		BirthDate:      birthDate,
		Email:          req.Email,
		Phone:          req.Phone,
		WelcomeBonus:   req.WelcomeBonus,
	}, nil
}

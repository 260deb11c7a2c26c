package dto

import (
	"time"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// BirthDateLayout is the accepted wire format for fecha_nacimiento.
const BirthDateLayout = "2006-01-02"

// RegisterCustomerRequest is the registration payload. Field names follow the
// established wire contract.
type RegisterCustomerRequest struct {
	Token          string  `json:"token"`
	DocumentType   string  `json:"tipo_documento"`
	DocumentNumber string  `json:"numero_documento"`
	GivenNames     string  `json:"nombres"`
	Surname        string  `json:"apellidos"`
	BirthDate      string  `json:"fecha_nacimiento"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"telefono,omitempty"`
	WelcomeBonus   float64 `json:"bono_bienvenida,omitempty"`
}

// CustomerResponse is the wire shape of a registered customer.
type CustomerResponse struct {
	ID             int64     `json:"id"`
	DocumentType   string    `json:"tipo_documento"`
	DocumentNumber string    `json:"numero_documento"`
	GivenNames     string    `json:"nombres"`
	Surname        string    `json:"apellidos"`
	BirthDate      string    `json:"fecha_nacimiento"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"telefono,omitempty"`
	WelcomeBonus   float64   `json:"bono_bienvenida"`
	TokenUsed      string    `json:"token_usado"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromCustomer maps the domain model onto the response shape.
func FromCustomer(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		DocumentType:   string(c.DocumentType),
		DocumentNumber: c.DocumentNumber,
		GivenNames:     c.GivenNames,
		Surname:        c.Surname,
		BirthDate:      c.BirthDate.Format(BirthDateLayout),
		Email:          c.Email,
		Phone:          c.Phone,
		WelcomeBonus:   c.WelcomeBonus,
		TokenUsed:      c.TokenUsed,
		CreatedAt:      c.CreatedAt,
	}
}

// FromCustomers maps a list of customers.
func FromCustomers(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, FromCustomer(&customers[i]))
	}
	return out
}

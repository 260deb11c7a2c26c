package domain

import "time"

// DocumentType enumerates accepted identity documents.
type DocumentType string

const (
	DocumentTypeNationalID          DocumentType = "NATIONAL_ID"
	DocumentTypeForeignResidentCard DocumentType = "FOREIGN_RESIDENT_CARD"
)

// ValidDocumentType reports whether the value is an accepted document type.
func ValidDocumentType(t DocumentType) bool {
	return t == DocumentTypeNationalID || t == DocumentTypeForeignResidentCard
}

// MinimumAge is the youngest a customer may be at registration time.
const MinimumAge = 18

// Customer is the domain model for a registered customer. The natural key is
// (DocumentType, DocumentNumber); records are never mutated after creation.
type Customer struct {
	ID             int64
	DocumentType   DocumentType
	DocumentNumber string
	GivenNames     string
	Surname        string
	BirthDate      time.Time
	Email          *string
	Phone          *string
	WelcomeBonus   float64
	TokenUsed      string
	CreatedAt      time.Time
}

// Age computes full years elapsed since the birth date, decrementing one year
// when the month/day has not yet been reached. A fixed-divisor approximation
// would misclassify applicants near the boundary.
func Age(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}

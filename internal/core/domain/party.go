package domain

import (
	"fmt"
	"strings"
	"time"
)

// CustomerType classifies a party as a private person or a company.
type CustomerType string

// Customer classifications.
const (
	// CustomerPrivate is a person identified by a personal number.
	CustomerPrivate CustomerType = "Private"

	// CustomerCompany is everything that does not decode as a personal number.
	CustomerCompany CustomerType = "Company"
)

// IsValid returns true if the customer type is recognised.
func (t CustomerType) IsValid() bool {
	return t == CustomerPrivate || t == CustomerCompany
}

// String returns the string representation.
func (t CustomerType) String() string {
	return string(t)
}

// ParseCustomerType parses a customer type case-insensitively.
// An empty string parses to the empty type, meaning "no filter".
func ParseCustomerType(s string) (CustomerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "private":
		return CustomerPrivate, nil
	case "company":
		return CustomerCompany, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCustomerType, s)
	}
}

// Party is a customer register entry. The same shape is used for the
// customer, the payer and the driver of an order.
//
// Raw fields come straight from the register. Derived fields are computed
// once at load time by the normalisers and are pure functions of the raw
// fields.
type Party struct {
	// Number is the register key (KUN_KUNR).
	Number int `json:"number"`

	Name          string `json:"name,omitempty"`
	Address1      string `json:"address1,omitempty"`
	Address2      string `json:"address2,omitempty"`
	PostalAddress string `json:"postalAddress,omitempty"`
	OrgNumber     string `json:"orgNumber,omitempty"`
	Phone1        string `json:"phone1,omitempty"`
	Phone2        string `json:"phone2,omitempty"`
	Phone3        string `json:"phone3,omitempty"`
	Email         string `json:"email,omitempty"`

	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	CompanyName string       `json:"companyName,omitempty"`
	ZipCode     string       `json:"zipCode,omitempty"`
	City        string       `json:"city,omitempty"`
	MobilePhone string       `json:"mobilePhone,omitempty"`
	Type        CustomerType `json:"customerType,omitempty"`
	BirthDate   *time.Time   `json:"birthDate,omitempty"`
}

// Phones returns the raw phone fields in register order.
func (p *Party) Phones() []string {
	return []string{p.Phone1, p.Phone2, p.Phone3}
}

// Contactable reports whether the party can receive marketing mail or SMS.
func (p *Party) Contactable() bool {
	return p != nil && (strings.TrimSpace(p.Email) != "" || p.MobilePhone != "")
}

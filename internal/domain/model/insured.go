package model

import (
	"strings"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// Insured describes the applicant. It is an immutable value owned by the
// submission; the With* methods return modified copies.
type Insured struct {
	name            string
	dbaName         string
	address         valueobject.Address
	industry        valueobject.IndustryClassification
	annualRevenue   *money.Money
	yearsInBusiness *int
	employeeCount   *int
}

// NewInsured creates an Insured. The name is required.
func NewInsured(name string) (Insured, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Insured{}, ErrInsuredNameRequired
	}
	return Insured{name: name}, nil
}

func (i Insured) Name() string { return i.name }
func (i Insured) DBAName() string { return i.dbaName }
func (i Insured) Address() valueobject.Address { return i.address }
func (i Insured) Industry() valueobject.IndustryClassification { return i.industry }

// AnnualRevenue returns the revenue and whether it was provided.
func (i Insured) AnnualRevenue() (money.Money, bool) {
	if i.annualRevenue == nil {
		return money.Money{}, false
	}
	return *i.annualRevenue, true
}

// YearsInBusiness returns the value and whether it was provided.
func (i Insured) YearsInBusiness() (int, bool) {
	if i.yearsInBusiness == nil {
		return 0, false
	}
	return *i.yearsInBusiness, true
}

// EmployeeCount returns the value and whether it was provided.
func (i Insured) EmployeeCount() (int, bool) {
	if i.employeeCount == nil {
		return 0, false
	}
	return *i.employeeCount, true
}

// IsProfileComplete reports whether revenue, industry, address and years in
// business are all present.
func (i Insured) IsProfileComplete() bool {
	return i.annualRevenue != nil &&
		!i.industry.IsZero() &&
		!i.address.IsZero() &&
		i.yearsInBusiness != nil
}

func (i Insured) WithDBAName(dba string) Insured {
	i.dbaName = strings.TrimSpace(dba)
	return i
}

func (i Insured) WithAddress(a valueobject.Address) Insured {
	i.address = a
	return i
}

func (i Insured) WithIndustry(ic valueobject.IndustryClassification) Insured {
	i.industry = ic
	return i
}

// WithAnnualRevenue rejects negative revenue.
func (i Insured) WithAnnualRevenue(m money.Money) (Insured, error) {
	if m.IsNegative() {
		return i, ErrInvalidSubmission.WithDescription("annual revenue cannot be negative")
	}
	i.annualRevenue = &m
	return i, nil
}

// WithYearsInBusiness rejects negative values.
func (i Insured) WithYearsInBusiness(years int) (Insured, error) {
	if years < 0 {
		return i, ErrInvalidSubmission.WithDescription("years in business cannot be negative")
	}
	i.yearsInBusiness = &years
	return i, nil
}

// WithEmployeeCount rejects negative values.
func (i Insured) WithEmployeeCount(n int) (Insured, error) {
	if n < 0 {
		return i, ErrInvalidSubmission.WithDescription("employee count cannot be negative")
	}
	i.employeeCount = &n
	return i, nil
}

package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	stateCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)
	usZipRe     = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Address is an immutable postal address.
type Address struct {
	street1    string
	street2    string
	city       string
	state      string
	postalCode string
	country    string
}

// NewAddress validates and normalises an address. State is a 2-letter code;
// for US addresses the postal code, when given, must be a ZIP or ZIP+4.
func NewAddress(street1, street2, city, state, postalCode, country string) (Address, error) {
	a := Address{
		street1:    strings.TrimSpace(street1),
		street2:    strings.TrimSpace(street2),
		city:       strings.TrimSpace(city),
		state:      strings.ToUpper(strings.TrimSpace(state)),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if a.country == "" {
		a.country = "US"
	}

	if a.street1 == "" {
		return Address{}, fmt.Errorf("address street: %w", ErrEmptyValue)
	}
	if a.city == "" {
		return Address{}, fmt.Errorf("address city: %w", ErrEmptyValue)
	}
	if !stateCodeRe.MatchString(a.state) {
		return Address{}, fmt.Errorf("invalid address state %q: must be a 2-letter code", state)
	}
	if a.country == "US" && a.postalCode != "" && !usZipRe.MatchString(a.postalCode) {
		return Address{}, fmt.Errorf("invalid US postal code %q", postalCode)
	}
	return a, nil
}

func (a Address) Street1() string { return a.street1 }
func (a Address) Street2() string { return a.street2 }
func (a Address) City() string { return a.city }
func (a Address) State() string { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string { return a.country }

// IsZero returns true if the address was never set.
func (a Address) IsZero() bool { return a == Address{} }

// IsComplete reports whether street, city, state and postal code are all present.
func (a Address) IsComplete() bool {
	return a.street1 != "" && a.city != "" && a.state != "" && a.postalCode != ""
}

// String renders a single-line address.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	parts := []string{a.street1}
	if a.street2 != "" {
		parts = append(parts, a.street2)
	}
	parts = append(parts, a.city, strings.TrimSpace(a.state+" "+a.postalCode))
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// IndustryClassification
// ---------------------------------------------------------------------------

var (
	naicsRe = regexp.MustCompile(`^\d{2,6}$`)
	sicRe   = regexp.MustCompile(`^\d{4}$`)
)

// IndustryClassification places the insured in the NAICS/SIC taxonomies.
type IndustryClassification struct {
	naicsCode   string
	sicCode     string
	description string
}

// NewIndustryClassification validates the codes. NAICS codes are 2 to 6
// digits; SIC codes are exactly 4. Either may be empty but not both.
func NewIndustryClassification(naicsCode, sicCode, description string) (IndustryClassification, error) {
	ic := IndustryClassification{
		naicsCode:   strings.TrimSpace(naicsCode),
		sicCode:     strings.TrimSpace(sicCode),
		description: strings.TrimSpace(description),
	}
	if ic.naicsCode == "" && ic.sicCode == "" {
		return IndustryClassification{}, fmt.Errorf("industry classification code: %w", ErrEmptyValue)
	}
	if ic.naicsCode != "" && !naicsRe.MatchString(ic.naicsCode) {
		return IndustryClassification{}, fmt.Errorf("invalid NAICS code %q", naicsCode)
	}
	if ic.sicCode != "" && !sicRe.MatchString(ic.sicCode) {
		return IndustryClassification{}, fmt.Errorf("invalid SIC code %q", sicCode)
	}
	return ic, nil
}

func (ic IndustryClassification) NaicsCode() string { return ic.naicsCode }
func (ic IndustryClassification) SicCode() string { return ic.sicCode }
func (ic IndustryClassification) Description() string { return ic.description }

// IsZero returns true if no classification was set.
func (ic IndustryClassification) IsZero() bool { return ic == IndustryClassification{} }

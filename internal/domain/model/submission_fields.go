package model

import (
	"strconv"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// FieldSource exposes the values a rule condition can be tested against.
// Multi-valued fields (one value per coverage or location) return several
// values; absent data returns none.
type FieldSource interface {
	FieldValues(field valueobject.RuleField) []string
}

var _ FieldSource = (*Submission)(nil)

// FieldValues implements FieldSource.
func (s *Submission) FieldValues(field valueobject.RuleField) []string {
	ins := s.insured
	switch field {
	case valueobject.FieldInsuredName:
		return nonEmpty(ins.Name())
	case valueobject.FieldInsuredState:
		return nonEmpty(ins.Address().State())
	case valueobject.FieldInsuredCity:
		return nonEmpty(ins.Address().City())
	case valueobject.FieldInsuredPostalCode:
		return nonEmpty(ins.Address().PostalCode())
	case valueobject.FieldNaicsCode:
		return nonEmpty(ins.Industry().NaicsCode())
	case valueobject.FieldSicCode:
		return nonEmpty(ins.Industry().SicCode())
	case valueobject.FieldAnnualRevenue:
		if rev, ok := ins.AnnualRevenue(); ok {
			return []string{rev.Amount().String()}
		}
	case valueobject.FieldYearsInBusiness:
		if y, ok := ins.YearsInBusiness(); ok {
			return []string{strconv.Itoa(y)}
		}
	case valueobject.FieldEmployeeCount:
		if n, ok := ins.EmployeeCount(); ok {
			return []string{strconv.Itoa(n)}
		}
	case valueobject.FieldCoverageType:
		var out []string
		for _, c := range s.coverages.values() {
			out = append(out, c.coverageType.String())
		}
		return out
	case valueobject.FieldRequestedLimit:
		var out []string
		for _, c := range s.coverages.values() {
			if limit, ok := c.RequestedLimit(); ok {
				out = append(out, limit.Amount().String())
			}
		}
		return out
	case valueobject.FieldTotalInsuredValue:
		if s.locations.len() == 0 {
			return nil
		}
		if tiv, err := s.TotalInsuredValue(); err == nil {
			return []string{tiv.Amount().String()}
		}
	case valueobject.FieldLocationCount:
		return []string{strconv.Itoa(s.locations.len())}
	case valueobject.FieldLocationState:
		var out []string
		for _, l := range s.locations.values() {
			out = append(out, l.address.State())
		}
		return out
	case valueobject.FieldConstructionType:
		var out []string
		for _, l := range s.locations.values() {
			if !l.constructionType.IsZero() {
				out = append(out, l.constructionType.String())
			}
		}
		return out
	case valueobject.FieldYearBuilt:
		var out []string
		for _, l := range s.locations.values() {
			if l.yearBuilt > 0 {
				out = append(out, strconv.Itoa(l.yearBuilt))
			}
		}
		return out
	case valueobject.FieldLossCount:
		return []string{strconv.Itoa(s.losses.len())}
	case valueobject.FieldTotalIncurredLosses:
		if total, err := s.TotalIncurredLosses(); err == nil {
			return []string{total.Amount().String()}
		}
	case valueobject.FieldHasOpenClaims:
		return []string{strconv.FormatBool(s.HasOpenClaims())}
	case valueobject.FieldProducerName:
		return nonEmpty(s.producerName)
	}
	return nil
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

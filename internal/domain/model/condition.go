package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// RuleCondition tests one submission field. It is an immutable value.
type RuleCondition struct {
	field          valueobject.RuleField
	operator       valueobject.ConditionOperator
	value          string
	secondaryValue string
}

// NewRuleCondition validates a condition. Comparison operators need numeric
// operands; Between needs both bounds in ascending order. Values for
// enumerated fields are canonicalised so "GeneralLiability" and
// "GENERAL_LIABILITY" match alike.
func NewRuleCondition(field valueobject.RuleField, op valueobject.ConditionOperator, value, secondaryValue string) (RuleCondition, error) {
	if field.IsZero() || op.IsZero() {
		return RuleCondition{}, ErrConditionInvalid.WithDescription("field and operator are required")
	}
	c := RuleCondition{field: field, operator: op}
	if !op.TakesOperand() {
		return c, nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return RuleCondition{}, ErrConditionValueRequired
	}
	canonical, err := canonicalOperand(field, op, value)
	if err != nil {
		return RuleCondition{}, err
	}
	c.value = canonical

	switch op {
	case valueobject.OperatorGreaterThan, valueobject.OperatorLessThan:
		if _, ok := parseNumber(value); !ok {
			return RuleCondition{}, ErrConditionInvalid.WithDescription("%s needs a numeric value, got %q", op, value)
		}
	case valueobject.OperatorBetween:
		secondaryValue = strings.TrimSpace(secondaryValue)
		if secondaryValue == "" {
			return RuleCondition{}, ErrConditionSecondaryValueRequired
		}
		lo, okLo := parseNumber(value)
		hi, okHi := parseNumber(secondaryValue)
		if !okLo || !okHi {
			return RuleCondition{}, ErrConditionInvalid.WithDescription("between bounds must be numeric")
		}
		if lo.GreaterThan(hi) {
			return RuleCondition{}, ErrConditionInvalid.WithDescription("between lower bound %s exceeds upper bound %s", value, secondaryValue)
		}
		c.secondaryValue = secondaryValue
	}
	return c, nil
}

func (c RuleCondition) Field() valueobject.RuleField { return c.field }
func (c RuleCondition) Operator() valueobject.ConditionOperator { return c.operator }
func (c RuleCondition) Value() string { return c.value }
func (c RuleCondition) SecondaryValue() string { return c.secondaryValue }

// Evaluate applies the operator to a single field value. Numeric operators
// fail closed: an unparseable value never matches.
func (c RuleCondition) Evaluate(fieldValue string) bool {
	fieldValue = strings.TrimSpace(fieldValue)
	switch c.operator {
	case valueobject.OperatorEquals:
		return strings.EqualFold(fieldValue, c.value)
	case valueobject.OperatorIn:
		for _, candidate := range splitList(c.value) {
			if strings.EqualFold(fieldValue, candidate) {
				return true
			}
		}
		return false
	case valueobject.OperatorGreaterThan:
		v, ok1 := parseNumber(fieldValue)
		operand, ok2 := parseNumber(c.value)
		return ok1 && ok2 && v.GreaterThan(operand)
	case valueobject.OperatorLessThan:
		v, ok1 := parseNumber(fieldValue)
		operand, ok2 := parseNumber(c.value)
		return ok1 && ok2 && v.LessThan(operand)
	case valueobject.OperatorBetween:
		v, ok1 := parseNumber(fieldValue)
		lo, ok2 := parseNumber(c.value)
		hi, ok3 := parseNumber(c.secondaryValue)
		return ok1 && ok2 && ok3 && v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
	case valueobject.OperatorIsEmpty:
		return fieldValue == ""
	case valueobject.OperatorIsNotEmpty:
		return fieldValue != ""
	}
	return false
}

// Matches tests the condition against a source. A multi-valued field
// matches when any of its values does; a field with no values is tested as
// the empty string.
func (c RuleCondition) Matches(src FieldSource) bool {
	values := src.FieldValues(c.field)
	if len(values) == 0 {
		return c.Evaluate("")
	}
	for _, v := range values {
		if c.Evaluate(v) {
			return true
		}
	}
	return false
}

func parseNumber(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// splitList splits a comma-delimited set, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func canonicalOperand(field valueobject.RuleField, op valueobject.ConditionOperator, value string) (string, error) {
	var parse func(string) (string, error)
	switch field {
	case valueobject.FieldCoverageType:
		parse = func(v string) (string, error) {
			ct, err := valueobject.NewCoverageType(v)
			return ct.String(), err
		}
	case valueobject.FieldConstructionType:
		parse = func(v string) (string, error) {
			ct, err := valueobject.NewConstructionType(v)
			return ct.String(), err
		}
	default:
		return value, nil
	}
	if op != valueobject.OperatorEquals && op != valueobject.OperatorIn {
		return value, nil
	}

	parts := splitList(value)
	for i, p := range parts {
		canonical, err := parse(p)
		if err != nil {
			return "", ErrConditionInvalid.WithDescription("%v", err)
		}
		parts[i] = canonical
	}
	return strings.Join(parts, ","), nil
}

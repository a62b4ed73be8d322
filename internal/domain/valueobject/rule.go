package valueobject

// ---------------------------------------------------------------------------
// RuleType
// ---------------------------------------------------------------------------

// RuleType classifies what an underwriting rule decides.
type RuleType struct {
	value string
}

var (
	RuleTypeEligibility = RuleType{value: "ELIGIBILITY"}
	RuleTypeAppetite    = RuleType{value: "APPETITE"}
	RuleTypePricing     = RuleType{value: "PRICING"}
)

var ruleTypes = newLookup("rule type", RuleTypeEligibility, RuleTypeAppetite, RuleTypePricing)

// NewRuleType resolves a RuleType by value or name.
func NewRuleType(s string) (RuleType, error) { return ruleTypes.parse(s) }

func (t RuleType) String() string { return t.value }

// IsZero returns true if the rule type has not been initialised.
func (t RuleType) IsZero() bool { return t.value == "" }

// ---------------------------------------------------------------------------
// RuleAction
// ---------------------------------------------------------------------------

// RuleAction is the effect a matching rule has on a scoring pass.
type RuleAction struct {
	value string
}

var (
	RuleActionAccept        = RuleAction{value: "ACCEPT"}
	RuleActionDecline       = RuleAction{value: "DECLINE"}
	RuleActionRefer         = RuleAction{value: "REFER"}
	RuleActionAdjustScore   = RuleAction{value: "ADJUST_SCORE"}
	RuleActionApplyModifier = RuleAction{value: "APPLY_MODIFIER"}
)

var ruleActions = newLookup("rule action",
	RuleActionAccept,
	RuleActionDecline,
	RuleActionRefer,
	RuleActionAdjustScore,
	RuleActionApplyModifier,
)

// NewRuleAction resolves a RuleAction by value or name.
func NewRuleAction(s string) (RuleAction, error) { return ruleActions.parse(s) }

func (a RuleAction) String() string { return a.value }

// IsZero returns true if the action has not been initialised.
func (a RuleAction) IsZero() bool { return a.value == "" }

// ---------------------------------------------------------------------------
// ConditionOperator
// ---------------------------------------------------------------------------

// ConditionOperator compares a submission field value against a condition operand.
type ConditionOperator struct {
	value string
}

var (
	OperatorEquals      = ConditionOperator{value: "EQUALS"}
	OperatorGreaterThan = ConditionOperator{value: "GREATER_THAN"}
	OperatorLessThan    = ConditionOperator{value: "LESS_THAN"}
	OperatorIn          = ConditionOperator{value: "IN"}
	OperatorBetween     = ConditionOperator{value: "BETWEEN"}
	OperatorIsEmpty     = ConditionOperator{value: "IS_EMPTY"}
	OperatorIsNotEmpty  = ConditionOperator{value: "IS_NOT_EMPTY"}
)

var conditionOperators = newLookup("condition operator",
	OperatorEquals,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorIn,
	OperatorBetween,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
)

// NewConditionOperator resolves a ConditionOperator by value or name.
func NewConditionOperator(s string) (ConditionOperator, error) { return conditionOperators.parse(s) }

func (o ConditionOperator) String() string { return o.value }

// IsZero returns true if the operator has not been initialised.
func (o ConditionOperator) IsZero() bool { return o.value == "" }

// TakesOperand reports whether the operator reads the condition Value.
func (o ConditionOperator) TakesOperand() bool {
	return o != OperatorIsEmpty && o != OperatorIsNotEmpty
}

// ---------------------------------------------------------------------------
// RuleField
// ---------------------------------------------------------------------------

// RuleField names a submission attribute a condition can test.
type RuleField struct {
	value string
}

var (
	FieldInsuredName         = RuleField{value: "INSURED_NAME"}
	FieldInsuredState        = RuleField{value: "INSURED_STATE"}
	FieldInsuredCity         = RuleField{value: "INSURED_CITY"}
	FieldInsuredPostalCode   = RuleField{value: "INSURED_POSTAL_CODE"}
	FieldNaicsCode           = RuleField{value: "NAICS_CODE"}
	FieldSicCode             = RuleField{value: "SIC_CODE"}
	FieldAnnualRevenue       = RuleField{value: "ANNUAL_REVENUE"}
	FieldYearsInBusiness     = RuleField{value: "YEARS_IN_BUSINESS"}
	FieldEmployeeCount       = RuleField{value: "EMPLOYEE_COUNT"}
	FieldCoverageType        = RuleField{value: "COVERAGE_TYPE"}
	FieldRequestedLimit      = RuleField{value: "REQUESTED_LIMIT"}
	FieldTotalInsuredValue   = RuleField{value: "TOTAL_INSURED_VALUE"}
	FieldLocationCount       = RuleField{value: "LOCATION_COUNT"}
	FieldLocationState       = RuleField{value: "LOCATION_STATE"}
	FieldConstructionType    = RuleField{value: "CONSTRUCTION_TYPE"}
	FieldYearBuilt           = RuleField{value: "YEAR_BUILT"}
	FieldLossCount           = RuleField{value: "LOSS_COUNT"}
	FieldTotalIncurredLosses = RuleField{value: "TOTAL_INCURRED_LOSSES"}
	FieldHasOpenClaims       = RuleField{value: "HAS_OPEN_CLAIMS"}
	FieldProducerName        = RuleField{value: "PRODUCER_NAME"}
)

var ruleFields = newLookup("rule field",
	FieldInsuredName,
	FieldInsuredState,
	FieldInsuredCity,
	FieldInsuredPostalCode,
	FieldNaicsCode,
	FieldSicCode,
	FieldAnnualRevenue,
	FieldYearsInBusiness,
	FieldEmployeeCount,
	FieldCoverageType,
	FieldRequestedLimit,
	FieldTotalInsuredValue,
	FieldLocationCount,
	FieldLocationState,
	FieldConstructionType,
	FieldYearBuilt,
	FieldLossCount,
	FieldTotalIncurredLosses,
	FieldHasOpenClaims,
	FieldProducerName,
)

// NewRuleField resolves a RuleField by value or name.
func NewRuleField(s string) (RuleField, error) { return ruleFields.parse(s) }

// RuleFields returns every testable field.
func RuleFields() []RuleField { return ruleFields.all() }

func (f RuleField) String() string { return f.value }

// IsZero returns true if the field has not been initialised.
func (f RuleField) IsZero() bool { return f.value == "" }

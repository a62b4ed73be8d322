package model

import "fmt"

// ErrorKind groups domain errors by how a caller should react to them.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// DomainError is an expected business-rule failure with a stable code.
// Two DomainErrors match under errors.Is when their codes are equal, so a
// sentinel can be compared against an error carrying a more specific
// description.
type DomainError struct {
	Code        string
	Description string
	Kind        ErrorKind
}

func (e *DomainError) Error() string {
	return e.Code + ": " + e.Description
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDescription returns a copy of e carrying a formatted description.
func (e *DomainError) WithDescription(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Description: fmt.Sprintf(format, args...), Kind: e.Kind}
}

func validation(code, description string) *DomainError {
	return &DomainError{Code: code, Description: description, Kind: KindValidation}
}

func notFound(code, description string) *DomainError {
	return &DomainError{Code: code, Description: description, Kind: KindNotFound}
}

func conflict(code, description string) *DomainError {
	return &DomainError{Code: code, Description: description, Kind: KindConflict}
}

func forbidden(code, description string) *DomainError {
	return &DomainError{Code: code, Description: description, Kind: KindForbidden}
}

// ErrInvalidRequest is returned when a command fails input validation.
var ErrInvalidRequest = validation("Request.Invalid", "request is invalid")

// ---------------------------------------------------------------------------
// Submission errors
// ---------------------------------------------------------------------------

var (
	ErrSubmissionNotFound      = notFound("Submission.NotFound", "submission not found")
	ErrTenantRequired          = validation("Submission.TenantRequired", "tenant is required")
	ErrInvalidSubmission       = validation("Submission.Invalid", "submission data is invalid")
	ErrInsuredNameRequired     = validation("Submission.InsuredNameRequired", "insured name is required")
	ErrUnderwriterRequired     = validation("Submission.UnderwriterRequired", "underwriter id is required")
	ErrReasonRequired          = validation("Submission.ReasonRequired", "a reason is required")
	ErrInvalidPremium          = validation("Submission.InvalidPremium", "quoted premium must be positive")
	ErrInvalidScore            = validation("Submission.InvalidScore", "scores must be between 0 and 100")
	ErrInvalidStatusTransition = conflict("Submission.InvalidStatusTransition", "transition not allowed from the current status")
	ErrMustBeQuotedToBind      = conflict("Submission.MustBeQuotedToBind", "submission must be quoted before it can be bound")
	ErrCannotAssignClosed      = conflict("Submission.CannotAssignClosedSubmission", "cannot assign a closed submission")
	ErrClearanceFailed         = forbidden("Submission.ClearanceFailed", "clearance failed and has not been overridden")
	ErrClearanceNotFailed      = conflict("Submission.ClearanceNotFailed", "only a failed clearance can be overridden")
	ErrSubmissionClosed        = forbidden("Submission.Closed", "submission is closed")
	ErrDuplicateCoverage       = conflict("Submission.DuplicateCoverage", "coverage type already requested")
	ErrConcurrencyConflict     = conflict("Submission.ConcurrencyConflict", "submission was modified concurrently")
)

// ---------------------------------------------------------------------------
// Guideline errors
// ---------------------------------------------------------------------------

var (
	ErrGuidelineNotFound            = notFound("Guideline.NotFound", "guideline not found")
	ErrGuidelineNameRequired        = validation("Guideline.NameRequired", "guideline name is required")
	ErrGuidelineInvalidFilter       = validation("Guideline.InvalidFilter", "applicability filter is invalid")
	ErrGuidelineNoRules             = conflict("Guideline.NoRules", "a guideline needs at least one rule to be activated")
	ErrGuidelineArchived            = forbidden("Guideline.Archived", "archived guidelines cannot be changed")
	ErrGuidelineInvalidTransition   = conflict("Guideline.InvalidStatusTransition", "transition not allowed from the current status")
	ErrGuidelineDuplicateName       = conflict("Guideline.DuplicateName", "a guideline with this name already exists")
	ErrGuidelineConcurrencyConflict = conflict("Guideline.ConcurrencyConflict", "guideline was modified concurrently")

	ErrRuleNameRequired           = validation("Rule.NameRequired", "rule name is required")
	ErrRuleInvalid                = validation("Rule.Invalid", "rule definition is invalid")
	ErrRuleInvalidScoreAdjustment = validation("Rule.InvalidScoreAdjustment", "score adjustment must be between -100 and 100")
	ErrRuleInvalidPricingModifier = validation("Rule.InvalidPricingModifier", "pricing modifier must be greater than zero")
	ErrRuleActionMismatch         = validation("Rule.ActionMismatch", "setting does not apply to the rule action")

	ErrConditionInvalid                = validation("RuleCondition.Invalid", "condition is invalid")
	ErrConditionValueRequired          = validation("RuleCondition.ValueRequired", "condition value is required")
	ErrConditionSecondaryValueRequired = validation("RuleCondition.SecondaryValueRequired", "between conditions need a secondary value")
)

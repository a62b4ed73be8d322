package valueobject

import "errors"

// ---------------------------------------------------------------------------
// SubmissionStatus – immutable value object
// ---------------------------------------------------------------------------

// SubmissionStatus is the lifecycle stage of a submission.
type SubmissionStatus struct {
	value string
}

var (
	SubmissionStatusDraft              = SubmissionStatus{value: "DRAFT"}
	SubmissionStatusReceived           = SubmissionStatus{value: "RECEIVED"}
	SubmissionStatusInReview           = SubmissionStatus{value: "IN_REVIEW"}
	SubmissionStatusPendingInformation = SubmissionStatus{value: "PENDING_INFORMATION"}
	SubmissionStatusQuoted             = SubmissionStatus{value: "QUOTED"}
	SubmissionStatusBound              = SubmissionStatus{value: "BOUND"}
	SubmissionStatusDeclined           = SubmissionStatus{value: "DECLINED"}
	SubmissionStatusWithdrawn          = SubmissionStatus{value: "WITHDRAWN"}
	SubmissionStatusExpired            = SubmissionStatus{value: "EXPIRED"}
)

var submissionStatuses = newLookup("submission status",
	SubmissionStatusDraft,
	SubmissionStatusReceived,
	SubmissionStatusInReview,
	SubmissionStatusPendingInformation,
	SubmissionStatusQuoted,
	SubmissionStatusBound,
	SubmissionStatusDeclined,
	SubmissionStatusWithdrawn,
	SubmissionStatusExpired,
)

// NewSubmissionStatus creates a SubmissionStatus from a raw string.
func NewSubmissionStatus(s string) (SubmissionStatus, error) {
	return submissionStatuses.parse(s)
}

// SubmissionStatuses returns every status in lifecycle order.
func SubmissionStatuses() []SubmissionStatus { return submissionStatuses.all() }

// String returns the string representation of the status.
func (s SubmissionStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s SubmissionStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s SubmissionStatus) Equal(other SubmissionStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transition is possible.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case SubmissionStatusBound, SubmissionStatusDeclined, SubmissionStatusWithdrawn, SubmissionStatusExpired:
		return true
	}
	return false
}

// In reports whether s is one of candidates.
func (s SubmissionStatus) In(candidates ...SubmissionStatus) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// GuidelineStatus – immutable value object
// ---------------------------------------------------------------------------

// GuidelineStatus is the lifecycle stage of an underwriting guideline.
type GuidelineStatus struct {
	value string
}

var (
	GuidelineStatusDraft    = GuidelineStatus{value: "DRAFT"}
	GuidelineStatusActive   = GuidelineStatus{value: "ACTIVE"}
	GuidelineStatusInactive = GuidelineStatus{value: "INACTIVE"}
	GuidelineStatusArchived = GuidelineStatus{value: "ARCHIVED"}
)

var guidelineStatuses = newLookup("guideline status",
	GuidelineStatusDraft,
	GuidelineStatusActive,
	GuidelineStatusInactive,
	GuidelineStatusArchived,
)

// NewGuidelineStatus creates a GuidelineStatus from a raw string.
func NewGuidelineStatus(s string) (GuidelineStatus, error) {
	return guidelineStatuses.parse(s)
}

// String returns the string representation of the status.
func (s GuidelineStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s GuidelineStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s GuidelineStatus) Equal(other GuidelineStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// ClearanceStatus – immutable value object
// ---------------------------------------------------------------------------

// ClearanceStatus records the outcome of the duplicate/conflict check.
type ClearanceStatus struct {
	value string
}

var (
	ClearanceStatusNotStarted = ClearanceStatus{value: "NOT_STARTED"}
	ClearanceStatusPassed     = ClearanceStatus{value: "PASSED"}
	ClearanceStatusFailed     = ClearanceStatus{value: "FAILED"}
	ClearanceStatusOverridden = ClearanceStatus{value: "OVERRIDDEN"}
)

var clearanceStatuses = newLookup("clearance status",
	ClearanceStatusNotStarted,
	ClearanceStatusPassed,
	ClearanceStatusFailed,
	ClearanceStatusOverridden,
)

// NewClearanceStatus creates a ClearanceStatus from a raw string.
func NewClearanceStatus(s string) (ClearanceStatus, error) {
	return clearanceStatuses.parse(s)
}

// String returns the string representation of the status.
func (s ClearanceStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s ClearanceStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s ClearanceStatus) Equal(other ClearanceStatus) bool { return s.value == other.value }

// IsBlocking reports whether the submission may not proceed to review.
func (s ClearanceStatus) IsBlocking() bool { return s == ClearanceStatusFailed }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var ErrEmptyValue = errors.New("value is required")

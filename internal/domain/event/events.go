package event

import (
	"time"

	"github.com/bibbank/underwriting/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateSubmission = "Submission"
	aggregateGuideline  = "UnderwritingGuideline"
)

// Event type names as published on the wire.
const (
	TypeSubmissionCreated       = "underwriting.submission.created"
	TypeSubmissionStatusChanged = "underwriting.submission.status_changed"
	TypeUnderwriterAssigned     = "underwriting.submission.underwriter_assigned"
	TypeClearanceCompleted      = "underwriting.submission.clearance_completed"
	TypeClearanceOverridden     = "underwriting.submission.clearance_overridden"
	TypeScoresRecorded          = "underwriting.submission.scores_recorded"
	TypeGuidelineCreated        = "underwriting.guideline.created"
	TypeGuidelineActivated      = "underwriting.guideline.activated"
	TypeGuidelineDeactivated    = "underwriting.guideline.deactivated"
	TypeGuidelineArchived       = "underwriting.guideline.archived"
)

// ---------------------------------------------------------------------------
// Submission events
// ---------------------------------------------------------------------------

// SubmissionCreated is raised when a submission enters the system.
type SubmissionCreated struct {
	events.BaseEvent
	SubmissionNumber string `json:"submission_number"`
	InsuredName      string `json:"insured_name"`
}

func NewSubmissionCreated(submissionID, tenantID, number, insuredName string, now time.Time) SubmissionCreated {
	return SubmissionCreated{
		BaseEvent:        events.NewBaseEventAt(TypeSubmissionCreated, submissionID, aggregateSubmission, tenantID, now),
		SubmissionNumber: number,
		InsuredName:      insuredName,
	}
}

// SubmissionStatusChanged is raised exactly once per status change.
type SubmissionStatusChanged struct {
	events.BaseEvent
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

func NewSubmissionStatusChanged(submissionID, tenantID, oldStatus, newStatus, reason string, now time.Time) SubmissionStatusChanged {
	return SubmissionStatusChanged{
		BaseEvent: events.NewBaseEventAt(TypeSubmissionStatusChanged, submissionID, aggregateSubmission, tenantID, now),
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Reason:    reason,
	}
}

// UnderwriterAssigned is raised when an underwriter takes the submission.
type UnderwriterAssigned struct {
	events.BaseEvent
	UnderwriterID   string `json:"underwriter_id"`
	UnderwriterName string `json:"underwriter_name"`
}

func NewUnderwriterAssigned(submissionID, tenantID, underwriterID, underwriterName string, now time.Time) UnderwriterAssigned {
	return UnderwriterAssigned{
		BaseEvent:       events.NewBaseEventAt(TypeUnderwriterAssigned, submissionID, aggregateSubmission, tenantID, now),
		UnderwriterID:   underwriterID,
		UnderwriterName: underwriterName,
	}
}

// ClearanceCompleted is raised when the duplicate check result is recorded.
type ClearanceCompleted struct {
	events.BaseEvent
	Status     string `json:"status"`
	MatchCount int    `json:"match_count"`
}

func NewClearanceCompleted(submissionID, tenantID, status string, matchCount int, now time.Time) ClearanceCompleted {
	return ClearanceCompleted{
		BaseEvent:  events.NewBaseEventAt(TypeClearanceCompleted, submissionID, aggregateSubmission, tenantID, now),
		Status:     status,
		MatchCount: matchCount,
	}
}

// ClearanceOverridden is raised when a failed clearance is overridden.
type ClearanceOverridden struct {
	events.BaseEvent
	Reason       string `json:"reason"`
	OverriddenBy string `json:"overridden_by"`
}

func NewClearanceOverridden(submissionID, tenantID, reason, userID string, now time.Time) ClearanceOverridden {
	return ClearanceOverridden{
		BaseEvent:    events.NewBaseEventAt(TypeClearanceOverridden, submissionID, aggregateSubmission, tenantID, now),
		Reason:       reason,
		OverriddenBy: userID,
	}
}

// ScoresRecorded is raised when scoring results are stored on the submission.
type ScoresRecorded struct {
	events.BaseEvent
	AppetiteScore    int `json:"appetite_score"`
	WinnabilityScore int `json:"winnability_score"`
	DataQualityScore int `json:"data_quality_score"`
}

func NewScoresRecorded(submissionID, tenantID string, appetite, winnability, dataQuality int, now time.Time) ScoresRecorded {
	return ScoresRecorded{
		BaseEvent:        events.NewBaseEventAt(TypeScoresRecorded, submissionID, aggregateSubmission, tenantID, now),
		AppetiteScore:    appetite,
		WinnabilityScore: winnability,
		DataQualityScore: dataQuality,
	}
}

// ---------------------------------------------------------------------------
// Guideline events
// ---------------------------------------------------------------------------

// GuidelineLifecycle carries the guideline name and version for every
// guideline lifecycle event.
type GuidelineLifecycle struct {
	events.BaseEvent
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func newGuidelineLifecycle(eventType, guidelineID, tenantID, name string, version int, now time.Time) GuidelineLifecycle {
	return GuidelineLifecycle{
		BaseEvent: events.NewBaseEventAt(eventType, guidelineID, aggregateGuideline, tenantID, now),
		Name:      name,
		Version:   version,
	}
}

func NewGuidelineCreated(guidelineID, tenantID, name string, version int, now time.Time) GuidelineLifecycle {
	return newGuidelineLifecycle(TypeGuidelineCreated, guidelineID, tenantID, name, version, now)
}

func NewGuidelineActivated(guidelineID, tenantID, name string, version int, now time.Time) GuidelineLifecycle {
	return newGuidelineLifecycle(TypeGuidelineActivated, guidelineID, tenantID, name, version, now)
}

func NewGuidelineDeactivated(guidelineID, tenantID, name string, version int, now time.Time) GuidelineLifecycle {
	return newGuidelineLifecycle(TypeGuidelineDeactivated, guidelineID, tenantID, name, version, now)
}

func NewGuidelineArchived(guidelineID, tenantID, name string, version int, now time.Time) GuidelineLifecycle {
	return newGuidelineLifecycle(TypeGuidelineArchived, guidelineID, tenantID, name, version, now)
}

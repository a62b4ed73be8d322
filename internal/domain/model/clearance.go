package model

import (
	"time"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// ClearanceMatch is an existing submission that conflicts with this one.
type ClearanceMatch struct {
	SubmissionID     string `json:"submission_id"`
	SubmissionNumber string `json:"submission_number"`
	InsuredName      string `json:"insured_name"`
	Reason           string `json:"reason"`
}

// Clearance is the recorded outcome of the duplicate/conflict check.
type Clearance struct {
	status         valueobject.ClearanceStatus
	matches        []ClearanceMatch
	checkedAt      *time.Time
	overrideReason string
	overriddenBy   string
}

func (c Clearance) Status() valueobject.ClearanceStatus { return c.status }
func (c Clearance) OverrideReason() string { return c.overrideReason }
func (c Clearance) OverriddenBy() string { return c.overriddenBy }
func (c Clearance) CheckedAt() (time.Time, bool) { return optTime(c.checkedAt) }

// Matches returns a copy of the conflicting submissions.
func (c Clearance) Matches() []ClearanceMatch {
	out := make([]ClearanceMatch, len(c.matches))
	copy(out, c.matches)
	return out
}

package model

import (
	"strings"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// SubmissionPredicate selects submissions. Combinators build new predicates
// and leave their operands untouched.
type SubmissionPredicate func(*Submission) bool

// And holds when both p and other hold.
func (p SubmissionPredicate) And(other SubmissionPredicate) SubmissionPredicate {
	return func(s *Submission) bool { return p(s) && other(s) }
}

// Or holds when either p or other holds.
func (p SubmissionPredicate) Or(other SubmissionPredicate) SubmissionPredicate {
	return func(s *Submission) bool { return p(s) || other(s) }
}

// Not negates p.
func (p SubmissionPredicate) Not() SubmissionPredicate {
	return func(s *Submission) bool { return !p(s) }
}

// Filter returns the submissions p selects, preserving order.
func (p SubmissionPredicate) Filter(subs []*Submission) []*Submission {
	var out []*Submission
	for _, s := range subs {
		if p(s) {
			out = append(out, s)
		}
	}
	return out
}

// IsOpen selects submissions that are not in a terminal status.
func IsOpen() SubmissionPredicate {
	return func(s *Submission) bool { return !s.status.IsTerminal() }
}

// HasStatus selects submissions in any of statuses.
func HasStatus(statuses ...valueobject.SubmissionStatus) SubmissionPredicate {
	return func(s *Submission) bool { return s.status.In(statuses...) }
}

// HasID selects the submission with the given id.
func HasID(id string) SubmissionPredicate {
	return func(s *Submission) bool { return s.id == id }
}

// AssignedTo selects submissions assigned to the underwriter.
func AssignedTo(underwriterID string) SubmissionPredicate {
	return func(s *Submission) bool { return s.assignedUnderwriterID == underwriterID }
}

// InsuredNameEquals compares insured names ignoring case, surrounding space
// and repeated inner whitespace.
func InsuredNameEquals(name string) SubmissionPredicate {
	want := normalizeName(name)
	return func(s *Submission) bool { return normalizeName(s.insured.Name()) == want }
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

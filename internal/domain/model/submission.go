package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/events"
	"github.com/bibbank/underwriting/pkg/money"
)

// ---------------------------------------------------------------------------
// Submission aggregate root
// ---------------------------------------------------------------------------

// Submission is a request for commercial insurance moving from intake to a
// bind or decline decision. It is the only mutator of its coverages,
// locations and losses, and every status change goes through one of the
// transition methods below.
type Submission struct {
	id               string
	tenantID         string
	submissionNumber string
	status           valueobject.SubmissionStatus
	statusReason     string

	insured   Insured
	coverages children[*Coverage]
	locations children[*ExposureLocation]
	losses    children[*Loss]
	// nextLocationNumber only grows so removed numbers are never reissued.
	nextLocationNumber int

	assignedUnderwriterID   string
	assignedUnderwriterName string
	producerID              string
	producerName            string

	quotedPremium *money.Money
	declineReason string

	appetiteScore    *int
	winnabilityScore *int
	dataQualityScore *int

	clearance Clearance

	version   int
	createdAt time.Time
	updatedAt time.Time

	events events.EventCollector
}

// NewSubmission creates a submission in Draft status.
func NewSubmission(tenantID, submissionNumber string, insured Insured, now time.Time) (*Submission, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}
	if strings.TrimSpace(submissionNumber) == "" {
		return nil, ErrInvalidSubmission.WithDescription("submission number is required")
	}
	if insured.Name() == "" {
		return nil, ErrInsuredNameRequired
	}

	s := &Submission{
		id:                 uuid.New().String(),
		tenantID:           tenantID,
		submissionNumber:   strings.TrimSpace(submissionNumber),
		status:             valueobject.SubmissionStatusDraft,
		insured:            insured,
		nextLocationNumber: 1,
		clearance:          Clearance{status: valueobject.ClearanceStatusNotStarted},
		createdAt:          now,
		updatedAt:          now,
	}
	s.events.Record(event.NewSubmissionCreated(s.id, tenantID, s.submissionNumber, insured.Name(), now))
	return s, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s *Submission) ID() string { return s.id }
func (s *Submission) TenantID() string { return s.tenantID }
func (s *Submission) SubmissionNumber() string { return s.submissionNumber }
func (s *Submission) Status() valueobject.SubmissionStatus { return s.status }
func (s *Submission) StatusReason() string { return s.statusReason }
func (s *Submission) Insured() Insured { return s.insured }
func (s *Submission) AssignedUnderwriterID() string { return s.assignedUnderwriterID }
func (s *Submission) AssignedUnderwriterName() string { return s.assignedUnderwriterName }
func (s *Submission) ProducerID() string { return s.producerID }
func (s *Submission) ProducerName() string { return s.producerName }
func (s *Submission) DeclineReason() string { return s.declineReason }
func (s *Submission) QuotedPremium() (money.Money, bool) { return optMoney(s.quotedPremium) }
func (s *Submission) Clearance() Clearance { return s.clearance }
func (s *Submission) Version() int { return s.version }
func (s *Submission) CreatedAt() time.Time { return s.createdAt }
func (s *Submission) UpdatedAt() time.Time { return s.updatedAt }
func (s *Submission) IsClosed() bool { return s.status.IsTerminal() }

// AppetiteScore returns the recorded appetite score, if any.
func (s *Submission) AppetiteScore() (int, bool) { return optInt(s.appetiteScore) }

// WinnabilityScore returns the recorded winnability score, if any.
func (s *Submission) WinnabilityScore() (int, bool) { return optInt(s.winnabilityScore) }

// DataQualityScore returns the recorded data-quality score, if any.
func (s *Submission) DataQualityScore() (int, bool) { return optInt(s.dataQualityScore) }

// Coverages returns the requested coverages in the order they were added.
func (s *Submission) Coverages() []*Coverage { return s.coverages.values() }

// Coverage looks up a coverage by id.
func (s *Submission) Coverage(id string) (*Coverage, bool) { return s.coverages.get(id) }

// Locations returns the scheduled locations in the order they were added.
func (s *Submission) Locations() []*ExposureLocation { return s.locations.values() }

// Location looks up a location by id.
func (s *Submission) Location(id string) (*ExposureLocation, bool) { return s.locations.get(id) }

// LossHistory returns the recorded losses in the order they were added.
func (s *Submission) LossHistory() []*Loss { return s.losses.values() }

// Loss looks up a loss by id.
func (s *Submission) Loss(id string) (*Loss, bool) { return s.losses.get(id) }

// DomainEvents returns the events recorded since the last ClearEvents.
func (s *Submission) DomainEvents() []event.DomainEvent { return s.events.Events() }

// ClearEvents drains the recorded events.
func (s *Submission) ClearEvents() []event.DomainEvent { return s.events.ClearEvents() }

// EarliestEffectiveDate is the soonest requested effective date across coverages.
func (s *Submission) EarliestEffectiveDate() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, c := range s.coverages.values() {
		if d, ok := c.EffectiveDate(); ok && (!found || d.Before(earliest)) {
			earliest, found = d, true
		}
	}
	return earliest, found
}

// ---------------------------------------------------------------------------
// Derived values
// ---------------------------------------------------------------------------

// TotalInsuredValue sums building, contents and business-income values over
// all locations. Mixed currencies are an error.
func (s *Submission) TotalInsuredValue() (money.Money, error) {
	values := make([]*money.Money, 0, s.locations.len()*3)
	for _, l := range s.locations.values() {
		values = append(values, l.buildingValue, l.contentsValue, l.businessIncomeValue)
	}
	return sumMoney(values...)
}

// TotalIncurredLosses sums each loss's incurred amount.
func (s *Submission) TotalIncurredLosses() (money.Money, error) {
	values := make([]*money.Money, 0, s.losses.len())
	for _, l := range s.losses.values() {
		incurred, err := l.Incurred()
		if err != nil {
			return money.Money{}, err
		}
		values = append(values, &incurred)
	}
	return sumMoney(values...)
}

// HasOpenClaims reports whether any loss is Open or Reopened.
func (s *Submission) HasOpenClaims() bool {
	for _, l := range s.losses.values() {
		if l.IsOpen() {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Risk data
// ---------------------------------------------------------------------------

// UpdateInsured replaces the insured profile.
func (s *Submission) UpdateInsured(insured Insured, now time.Time) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if insured.Name() == "" {
		return ErrInsuredNameRequired
	}
	s.insured = insured
	s.updatedAt = now
	return nil
}

// SetProducer records the broker or agent who sent the submission.
func (s *Submission) SetProducer(producerID, producerName string, now time.Time) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.producerID = strings.TrimSpace(producerID)
	s.producerName = strings.TrimSpace(producerName)
	s.updatedAt = now
	return nil
}

// AddCoverage requests a new line of coverage. Each coverage type may be
// requested once.
func (s *Submission) AddCoverage(coverageType valueobject.CoverageType) (*Coverage, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if coverageType.IsZero() {
		return nil, ErrInvalidSubmission.WithDescription("coverage type is required")
	}
	for _, c := range s.coverages.values() {
		if c.coverageType == coverageType {
			return nil, ErrDuplicateCoverage.WithDescription("coverage %s already requested", coverageType)
		}
	}
	c := &Coverage{id: uuid.New().String(), coverageType: coverageType, owner: s}
	s.coverages.add(c.id, c)
	return c, nil
}

// RemoveCoverage deletes a coverage; unknown ids are ignored.
func (s *Submission) RemoveCoverage(id string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.coverages.remove(id)
	return nil
}

// AddLocation schedules a location and assigns it the next location number.
func (s *Submission) AddLocation(address valueobject.Address) (*ExposureLocation, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if address.IsZero() {
		return nil, ErrInvalidSubmission.WithDescription("location address is required")
	}
	l := &ExposureLocation{
		id:             uuid.New().String(),
		locationNumber: s.nextLocationNumber,
		address:        address,
		owner:          s,
	}
	s.nextLocationNumber++
	s.locations.add(l.id, l)
	return l, nil
}

// RemoveLocation deletes a location; unknown ids are ignored. Its number is
// not reused.
func (s *Submission) RemoveLocation(id string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.locations.remove(id)
	return nil
}

// AddLoss records a historical loss. New losses are Closed until told otherwise.
func (s *Submission) AddLoss(date time.Time, description string) (*Loss, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, ErrInvalidSubmission.WithDescription("loss date is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrInvalidSubmission.WithDescription("loss description is required")
	}
	l := &Loss{
		id:          uuid.New().String(),
		date:        date,
		description: description,
		status:      valueobject.LossStatusClosed,
		owner:       s,
	}
	s.losses.add(l.id, l)
	return l, nil
}

// RemoveLoss deletes a loss; unknown ids are ignored.
func (s *Submission) RemoveLoss(id string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.losses.remove(id)
	return nil
}

// RecordScores stores the latest scoring results.
func (s *Submission) RecordScores(appetite, winnability, dataQuality int, now time.Time) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	for _, v := range []int{appetite, winnability, dataQuality} {
		if v < 0 || v > 100 {
			return ErrInvalidScore
		}
	}
	s.appetiteScore = &appetite
	s.winnabilityScore = &winnability
	s.dataQualityScore = &dataQuality
	s.updatedAt = now
	s.events.Record(event.NewScoresRecorded(s.id, s.tenantID, appetite, winnability, dataQuality, now))
	return nil
}

// ---------------------------------------------------------------------------
// Clearance
// ---------------------------------------------------------------------------

// CompleteClearance records the duplicate-check result. No matches passes.
func (s *Submission) CompleteClearance(matches []ClearanceMatch, now time.Time) error {
	if s.status.IsTerminal() {
		return ErrInvalidStatusTransition.WithDescription("cannot run clearance on a %s submission", s.status)
	}
	s.clearance = Clearance{
		status:    valueobject.ClearanceStatusPassed,
		matches:   append([]ClearanceMatch(nil), matches...),
		checkedAt: &now,
	}
	if len(matches) > 0 {
		s.clearance.status = valueobject.ClearanceStatusFailed
	}
	s.updatedAt = now
	s.events.Record(event.NewClearanceCompleted(s.id, s.tenantID, s.clearance.status.String(), len(matches), now))
	return nil
}

// OverrideClearance lets an underwriter proceed despite a failed clearance.
func (s *Submission) OverrideClearance(reason, userID string, now time.Time) error {
	if !s.status.In(valueobject.SubmissionStatusReceived, valueobject.SubmissionStatusInReview) {
		return ErrInvalidStatusTransition.WithDescription("clearance can only be overridden while received or in review, not %s", s.status)
	}
	if s.clearance.status != valueobject.ClearanceStatusFailed {
		return ErrClearanceNotFailed
	}
	reason, userID = strings.TrimSpace(reason), strings.TrimSpace(userID)
	if reason == "" || userID == "" {
		return ErrReasonRequired.WithDescription("an override needs a reason and the overriding user")
	}
	s.clearance.status = valueobject.ClearanceStatusOverridden
	s.clearance.overrideReason = reason
	s.clearance.overriddenBy = userID
	s.updatedAt = now
	s.events.Record(event.NewClearanceOverridden(s.id, s.tenantID, reason, userID, now))
	return nil
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

// MarkAsReceived moves a draft to Received. It does nothing once the
// submission is past Draft.
func (s *Submission) MarkAsReceived(now time.Time) error {
	if s.status != valueobject.SubmissionStatusDraft {
		return nil
	}
	s.transition(valueobject.SubmissionStatusReceived, "", now)
	return nil
}

// AssignToUnderwriter assigns the submission. Received and PendingInformation
// submissions move to InReview; Draft, InReview and Quoted keep their status.
func (s *Submission) AssignToUnderwriter(underwriterID, underwriterName string, now time.Time) error {
	if s.status.IsTerminal() {
		return ErrCannotAssignClosed.WithDescription("cannot assign a %s submission", s.status)
	}
	underwriterID = strings.TrimSpace(underwriterID)
	if underwriterID == "" {
		return ErrUnderwriterRequired
	}
	if s.clearance.status.IsBlocking() {
		return ErrClearanceFailed
	}

	s.assignedUnderwriterID = underwriterID
	s.assignedUnderwriterName = strings.TrimSpace(underwriterName)
	s.updatedAt = now
	s.events.Record(event.NewUnderwriterAssigned(s.id, s.tenantID, underwriterID, s.assignedUnderwriterName, now))

	if s.status.In(valueobject.SubmissionStatusReceived, valueobject.SubmissionStatusPendingInformation) {
		s.transition(valueobject.SubmissionStatusInReview, "", now)
	}
	return nil
}

// RequestInformation parks an in-review submission until the producer responds.
func (s *Submission) RequestInformation(reason string, now time.Time) error {
	if s.status != valueobject.SubmissionStatusInReview {
		return s.invalidTransition(valueobject.SubmissionStatusPendingInformation)
	}
	s.transition(valueobject.SubmissionStatusPendingInformation, strings.TrimSpace(reason), now)
	return nil
}

// Quote offers terms at the given premium.
func (s *Submission) Quote(premium money.Money, now time.Time) error {
	if !s.status.In(valueobject.SubmissionStatusInReview, valueobject.SubmissionStatusPendingInformation) {
		return s.invalidTransition(valueobject.SubmissionStatusQuoted)
	}
	if !premium.IsPositive() {
		return ErrInvalidPremium
	}
	s.quotedPremium = &premium
	s.transition(valueobject.SubmissionStatusQuoted, "", now)
	return nil
}

// Bind accepts a quoted submission.
func (s *Submission) Bind(now time.Time) error {
	if s.status != valueobject.SubmissionStatusQuoted {
		return ErrMustBeQuotedToBind.WithDescription("cannot bind a %s submission", s.status)
	}
	s.transition(valueobject.SubmissionStatusBound, "", now)
	return nil
}

// Decline rejects the risk. A reason is required.
func (s *Submission) Decline(reason string, now time.Time) error {
	if !s.status.In(
		valueobject.SubmissionStatusReceived,
		valueobject.SubmissionStatusInReview,
		valueobject.SubmissionStatusPendingInformation,
	) {
		return s.invalidTransition(valueobject.SubmissionStatusDeclined)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired.WithDescription("a decline reason is required")
	}
	s.declineReason = reason
	s.transition(valueobject.SubmissionStatusDeclined, reason, now)
	return nil
}

// Withdraw records that the producer or insured pulled the submission.
func (s *Submission) Withdraw(reason string, now time.Time) error {
	if !s.status.In(
		valueobject.SubmissionStatusReceived,
		valueobject.SubmissionStatusInReview,
		valueobject.SubmissionStatusPendingInformation,
		valueobject.SubmissionStatusQuoted,
	) {
		return s.invalidTransition(valueobject.SubmissionStatusWithdrawn)
	}
	s.transition(valueobject.SubmissionStatusWithdrawn, strings.TrimSpace(reason), now)
	return nil
}

// Expire closes a submission that ran out of time.
func (s *Submission) Expire(reason string, now time.Time) error {
	if s.status.IsTerminal() {
		return s.invalidTransition(valueobject.SubmissionStatusExpired)
	}
	s.transition(valueobject.SubmissionStatusExpired, strings.TrimSpace(reason), now)
	return nil
}

func (s *Submission) transition(to valueobject.SubmissionStatus, reason string, now time.Time) {
	from := s.status
	s.status = to
	s.statusReason = reason
	s.updatedAt = now
	s.events.Record(event.NewSubmissionStatusChanged(s.id, s.tenantID, from.String(), to.String(), reason, now))
}

func (s *Submission) invalidTransition(to valueobject.SubmissionStatus) error {
	return ErrInvalidStatusTransition.WithDescription("cannot move from %s to %s", s.status, to)
}

func (s *Submission) ensureOpen() error {
	if s.status.IsTerminal() {
		return ErrSubmissionClosed.WithDescription("submission is %s", s.status)
	}
	return nil
}

func optInt(v *int) (int, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

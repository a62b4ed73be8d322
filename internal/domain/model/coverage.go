package model

import (
	"time"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// Coverage is a line of insurance requested on a submission. It is created
// only through Submission.AddCoverage and refuses changes once the owning
// submission is closed.
type Coverage struct {
	id             string
	coverageType   valueobject.CoverageType
	requestedLimit *money.Money
	deductible     *money.Money
	effectiveDate  *time.Time
	expirationDate *time.Time
	currentCarrier string
	currentPremium *money.Money

	owner *Submission
}

func (c *Coverage) ID() string { return c.id }
func (c *Coverage) Type() valueobject.CoverageType { return c.coverageType }
func (c *Coverage) RequestedLimit() (money.Money, bool) { return optMoney(c.requestedLimit) }
func (c *Coverage) Deductible() (money.Money, bool) { return optMoney(c.deductible) }
func (c *Coverage) CurrentPremium() (money.Money, bool) { return optMoney(c.currentPremium) }
func (c *Coverage) CurrentCarrier() string { return c.currentCarrier }
func (c *Coverage) EffectiveDate() (time.Time, bool) { return optTime(c.effectiveDate) }
func (c *Coverage) ExpirationDate() (time.Time, bool) { return optTime(c.expirationDate) }
func (c *Coverage) HasRequestedLimit() bool { return c.requestedLimit != nil }

// SetRequestedLimit sets the limit of insurance. It must be positive.
func (c *Coverage) SetRequestedLimit(limit money.Money) error {
	if err := c.owner.ensureOpen(); err != nil {
		return err
	}
	if !limit.IsPositive() {
		return ErrInvalidSubmission.WithDescription("requested limit must be positive")
	}
	c.requestedLimit = &limit
	return nil
}

// SetDeductible sets the deductible. It may be zero but not negative.
func (c *Coverage) SetDeductible(deductible money.Money) error {
	if err := c.owner.ensureOpen(); err != nil {
		return err
	}
	if deductible.IsNegative() {
		return ErrInvalidSubmission.WithDescription("deductible cannot be negative")
	}
	c.deductible = &deductible
	return nil
}

// SetPolicyPeriod sets the requested effective and expiration dates.
func (c *Coverage) SetPolicyPeriod(effective, expiration time.Time) error {
	if err := c.owner.ensureOpen(); err != nil {
		return err
	}
	if effective.IsZero() {
		return ErrInvalidSubmission.WithDescription("effective date is required")
	}
	if !expiration.IsZero() && !expiration.After(effective) {
		return ErrInvalidSubmission.WithDescription("expiration date must be after the effective date")
	}
	c.effectiveDate = &effective
	c.expirationDate = nil
	if !expiration.IsZero() {
		c.expirationDate = &expiration
	}
	return nil
}

// SetCurrentInsurance records the incumbent carrier and expiring premium.
func (c *Coverage) SetCurrentInsurance(carrier string, premium *money.Money) error {
	if err := c.owner.ensureOpen(); err != nil {
		return err
	}
	if premium != nil && premium.IsNegative() {
		return ErrInvalidSubmission.WithDescription("current premium cannot be negative")
	}
	c.currentCarrier = carrier
	c.currentPremium = cloneMoney(premium)
	return nil
}

func optMoney(m *money.Money) (money.Money, bool) {
	if m == nil {
		return money.Money{}, false
	}
	return *m, true
}

func cloneMoney(m *money.Money) *money.Money {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}

func optTime(t *time.Time) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

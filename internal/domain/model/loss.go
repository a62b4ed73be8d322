package model

import (
	"strings"
	"time"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// Loss is one entry of the insured's loss history.
type Loss struct {
	id          string
	date        time.Time
	description string
	claimNumber string
	paid        *money.Money
	reserved    *money.Money
	incurred    *money.Money
	status      valueobject.LossStatus
	subrogation bool

	owner *Submission
}

func (l *Loss) ID() string { return l.id }
func (l *Loss) Date() time.Time { return l.date }
func (l *Loss) Description() string { return l.description }
func (l *Loss) ClaimNumber() string { return l.claimNumber }
func (l *Loss) Paid() (money.Money, bool) { return optMoney(l.paid) }
func (l *Loss) Reserved() (money.Money, bool) { return optMoney(l.reserved) }
func (l *Loss) Status() valueobject.LossStatus { return l.status }
func (l *Loss) HasSubrogation() bool { return l.subrogation }
func (l *Loss) IsOpen() bool { return l.status.IsOpen() }

// Incurred is the explicit incurred amount when recorded, otherwise paid + reserved.
func (l *Loss) Incurred() (money.Money, error) {
	if l.incurred != nil {
		return *l.incurred, nil
	}
	return sumMoney(l.paid, l.reserved)
}

// SetClaimNumber records the carrier's claim reference.
func (l *Loss) SetClaimNumber(claimNumber string) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	l.claimNumber = strings.TrimSpace(claimNumber)
	return nil
}

// SetAmounts records paid and reserved amounts; nil leaves a figure unset.
func (l *Loss) SetAmounts(paid, reserved *money.Money) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	if (paid != nil && paid.IsNegative()) || (reserved != nil && reserved.IsNegative()) {
		return ErrInvalidSubmission.WithDescription("loss amounts cannot be negative")
	}
	if paid != nil && reserved != nil && paid.Currency() != reserved.Currency() {
		return ErrInvalidSubmission.WithDescription("paid and reserved must share one currency")
	}
	l.paid = cloneMoney(paid)
	l.reserved = cloneMoney(reserved)
	return nil
}

// SetIncurred records an explicit incurred figure that takes precedence over
// paid + reserved. Nil clears it.
func (l *Loss) SetIncurred(incurred *money.Money) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	if incurred != nil && incurred.IsNegative() {
		return ErrInvalidSubmission.WithDescription("incurred amount cannot be negative")
	}
	l.incurred = cloneMoney(incurred)
	return nil
}

// SetStatus updates the claim state.
func (l *Loss) SetStatus(status valueobject.LossStatus) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	if status.IsZero() {
		return ErrInvalidSubmission.WithDescription("loss status is required")
	}
	l.status = status
	return nil
}

// SetSubrogation flags whether recovery from a third party is pursued.
func (l *Loss) SetSubrogation(subrogation bool) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	l.subrogation = subrogation
	return nil
}

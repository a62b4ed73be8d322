package model

import (
	"strings"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// ExposureLocation is a scheduled location on the statement of values.
type ExposureLocation struct {
	id               string
	locationNumber   int
	address          valueobject.Address
	constructionType valueobject.ConstructionType
	yearBuilt        int
	stories          int
	squareFootage    int
	occupancy        string

	buildingValue       *money.Money
	contentsValue       *money.Money
	businessIncomeValue *money.Money

	hasSprinklers   bool
	hasAlarm        bool
	protectionClass int

	owner *Submission
}

func (l *ExposureLocation) ID() string { return l.id }
func (l *ExposureLocation) LocationNumber() int { return l.locationNumber }
func (l *ExposureLocation) Address() valueobject.Address { return l.address }
func (l *ExposureLocation) ConstructionType() valueobject.ConstructionType { return l.constructionType }
func (l *ExposureLocation) YearBuilt() int { return l.yearBuilt }
func (l *ExposureLocation) Stories() int { return l.stories }
func (l *ExposureLocation) SquareFootage() int { return l.squareFootage }
func (l *ExposureLocation) Occupancy() string { return l.occupancy }
func (l *ExposureLocation) BuildingValue() (money.Money, bool) { return optMoney(l.buildingValue) }
func (l *ExposureLocation) ContentsValue() (money.Money, bool) { return optMoney(l.contentsValue) }
func (l *ExposureLocation) BusinessIncomeValue() (money.Money, bool) { return optMoney(l.businessIncomeValue) }
func (l *ExposureLocation) HasSprinklers() bool { return l.hasSprinklers }
func (l *ExposureLocation) HasAlarm() bool { return l.hasAlarm }
func (l *ExposureLocation) ProtectionClass() int { return l.protectionClass }

// SetConstruction records the building characteristics. Zero values mean unknown.
func (l *ExposureLocation) SetConstruction(ct valueobject.ConstructionType, yearBuilt, stories, squareFootage int) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	if yearBuilt < 0 || stories < 0 || squareFootage < 0 {
		return ErrInvalidSubmission.WithDescription("construction figures cannot be negative")
	}
	if yearBuilt != 0 && yearBuilt < 1700 {
		return ErrInvalidSubmission.WithDescription("year built %d is not plausible", yearBuilt)
	}
	l.constructionType = ct
	l.yearBuilt = yearBuilt
	l.stories = stories
	l.squareFootage = squareFootage
	return nil
}

// SetValues records the insurable values. Nil leaves a value unset; all set
// values must share one currency and be non-negative.
func (l *ExposureLocation) SetValues(building, contents, businessIncome *money.Money) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	var currency money.Currency
	for _, v := range []*money.Money{building, contents, businessIncome} {
		if v == nil {
			continue
		}
		if v.IsNegative() {
			return ErrInvalidSubmission.WithDescription("location values cannot be negative")
		}
		if !currency.IsZero() && v.Currency() != currency {
			return ErrInvalidSubmission.WithDescription("location values must share one currency")
		}
		currency = v.Currency()
	}
	l.buildingValue = cloneMoney(building)
	l.contentsValue = cloneMoney(contents)
	l.businessIncomeValue = cloneMoney(businessIncome)
	return nil
}

// SetOccupancy describes how the building is used.
func (l *ExposureLocation) SetOccupancy(occupancy string) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	l.occupancy = strings.TrimSpace(occupancy)
	return nil
}

// SetProtection records protective features. Protection class is the ISO
// public protection class, 1 to 10, or 0 when unknown.
func (l *ExposureLocation) SetProtection(sprinklers, alarm bool, protectionClass int) error {
	if err := l.owner.ensureOpen(); err != nil {
		return err
	}
	if protectionClass < 0 || protectionClass > 10 {
		return ErrInvalidSubmission.WithDescription("protection class must be between 1 and 10")
	}
	l.hasSprinklers = sprinklers
	l.hasAlarm = alarm
	l.protectionClass = protectionClass
	return nil
}

// TotalInsuredValue is building + contents + business income.
func (l *ExposureLocation) TotalInsuredValue() (money.Money, error) {
	return sumMoney(l.buildingValue, l.contentsValue, l.businessIncomeValue)
}

// sumMoney adds the non-nil values. With none set it returns zero USD.
func sumMoney(values ...*money.Money) (money.Money, error) {
	var total *money.Money
	for _, v := range values {
		if v == nil {
			continue
		}
		if total == nil {
			t := *v
			total = &t
			continue
		}
		sum, err := total.Add(*v)
		if err != nil {
			return money.Money{}, err
		}
		total = &sum
	}
	if total == nil {
		return money.Zero(money.USD), nil
	}
	return *total, nil
}

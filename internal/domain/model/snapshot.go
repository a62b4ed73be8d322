package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// ---------------------------------------------------------------------------
// Persistence snapshots
//
// Snapshots are plain, JSON-serialisable copies of an aggregate. Repositories
// write them and rebuild aggregates with the Reconstruct functions, which
// never record events.
// ---------------------------------------------------------------------------

type AddressSnapshot struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type InsuredSnapshot struct {
	Name                string           `json:"name"`
	DBAName             string           `json:"dba_name,omitempty"`
	Address             *AddressSnapshot `json:"address,omitempty"`
	NaicsCode           string           `json:"naics_code,omitempty"`
	SicCode             string           `json:"sic_code,omitempty"`
	IndustryDescription string           `json:"industry_description,omitempty"`
	AnnualRevenue       *money.Money     `json:"annual_revenue,omitempty"`
	YearsInBusiness     *int             `json:"years_in_business,omitempty"`
	EmployeeCount       *int             `json:"employee_count,omitempty"`
}

type CoverageSnapshot struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	RequestedLimit *money.Money `json:"requested_limit,omitempty"`
	Deductible     *money.Money `json:"deductible,omitempty"`
	EffectiveDate  *time.Time   `json:"effective_date,omitempty"`
	ExpirationDate *time.Time   `json:"expiration_date,omitempty"`
	CurrentCarrier string       `json:"current_carrier,omitempty"`
	CurrentPremium *money.Money `json:"current_premium,omitempty"`
}

type LocationSnapshot struct {
	ID                  string          `json:"id"`
	LocationNumber      int             `json:"location_number"`
	Address             AddressSnapshot `json:"address"`
	ConstructionType    string          `json:"construction_type,omitempty"`
	YearBuilt           int             `json:"year_built,omitempty"`
	Stories             int             `json:"stories,omitempty"`
	SquareFootage       int             `json:"square_footage,omitempty"`
	Occupancy           string          `json:"occupancy,omitempty"`
	BuildingValue       *money.Money    `json:"building_value,omitempty"`
	ContentsValue       *money.Money    `json:"contents_value,omitempty"`
	BusinessIncomeValue *money.Money    `json:"business_income_value,omitempty"`
	HasSprinklers       bool            `json:"has_sprinklers"`
	HasAlarm            bool            `json:"has_alarm"`
	ProtectionClass     int             `json:"protection_class,omitempty"`
}

type LossSnapshot struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
	ClaimNumber string       `json:"claim_number,omitempty"`
	Paid        *money.Money `json:"paid,omitempty"`
	Reserved    *money.Money `json:"reserved,omitempty"`
	Incurred    *money.Money `json:"incurred,omitempty"`
	Status      string       `json:"status"`
	Subrogation bool         `json:"subrogation"`
}

type ClearanceSnapshot struct {
	Status         string           `json:"status"`
	Matches        []ClearanceMatch `json:"matches,omitempty"`
	CheckedAt      *time.Time       `json:"checked_at,omitempty"`
	OverrideReason string           `json:"override_reason,omitempty"`
	OverriddenBy   string           `json:"overridden_by,omitempty"`
}

// SubmissionSnapshot is the persisted form of a Submission.
type SubmissionSnapshot struct {
	ID                      string
	TenantID                string
	SubmissionNumber        string
	Status                  string
	StatusReason            string
	Insured                 InsuredSnapshot
	Coverages               []CoverageSnapshot
	Locations               []LocationSnapshot
	Losses                  []LossSnapshot
	NextLocationNumber      int
	AssignedUnderwriterID   string
	AssignedUnderwriterName string
	ProducerID              string
	ProducerName            string
	QuotedPremium           *money.Money
	DeclineReason           string
	AppetiteScore           *int
	WinnabilityScore        *int
	DataQualityScore        *int
	Clearance               ClearanceSnapshot
	Version                 int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Snapshot copies the submission into its persisted form.
func (s *Submission) Snapshot() SubmissionSnapshot {
	snap := SubmissionSnapshot{
		ID:                      s.id,
		TenantID:                s.tenantID,
		SubmissionNumber:        s.submissionNumber,
		Status:                  s.status.String(),
		StatusReason:            s.statusReason,
		Insured:                 snapshotInsured(s.insured),
		NextLocationNumber:      s.nextLocationNumber,
		AssignedUnderwriterID:   s.assignedUnderwriterID,
		AssignedUnderwriterName: s.assignedUnderwriterName,
		ProducerID:              s.producerID,
		ProducerName:            s.producerName,
		QuotedPremium:           cloneMoney(s.quotedPremium),
		DeclineReason:           s.declineReason,
		AppetiteScore:           cloneInt(s.appetiteScore),
		WinnabilityScore:        cloneInt(s.winnabilityScore),
		DataQualityScore:        cloneInt(s.dataQualityScore),
		Clearance: ClearanceSnapshot{
			Status:         s.clearance.status.String(),
			Matches:        s.clearance.Matches(),
			CheckedAt:      cloneTime(s.clearance.checkedAt),
			OverrideReason: s.clearance.overrideReason,
			OverriddenBy:   s.clearance.overriddenBy,
		},
		Version:   s.version,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	for _, c := range s.coverages.values() {
		snap.Coverages = append(snap.Coverages, CoverageSnapshot{
			ID:             c.id,
			Type:           c.coverageType.String(),
			RequestedLimit: cloneMoney(c.requestedLimit),
			Deductible:     cloneMoney(c.deductible),
			EffectiveDate:  cloneTime(c.effectiveDate),
			ExpirationDate: cloneTime(c.expirationDate),
			CurrentCarrier: c.currentCarrier,
			CurrentPremium: cloneMoney(c.currentPremium),
		})
	}
	for _, l := range s.locations.values() {
		snap.Locations = append(snap.Locations, LocationSnapshot{
			ID:                  l.id,
			LocationNumber:      l.locationNumber,
			Address:             snapshotAddress(l.address),
			ConstructionType:    l.constructionType.String(),
			YearBuilt:           l.yearBuilt,
			Stories:             l.stories,
			SquareFootage:       l.squareFootage,
			Occupancy:           l.occupancy,
			BuildingValue:       cloneMoney(l.buildingValue),
			ContentsValue:       cloneMoney(l.contentsValue),
			BusinessIncomeValue: cloneMoney(l.businessIncomeValue),
			HasSprinklers:       l.hasSprinklers,
			HasAlarm:            l.hasAlarm,
			ProtectionClass:     l.protectionClass,
		})
	}
	for _, l := range s.losses.values() {
		snap.Losses = append(snap.Losses, LossSnapshot{
			ID:          l.id,
			Date:        l.date,
			Description: l.description,
			ClaimNumber: l.claimNumber,
			Paid:        cloneMoney(l.paid),
			Reserved:    cloneMoney(l.reserved),
			Incurred:    cloneMoney(l.incurred),
			Status:      l.status.String(),
			Subrogation: l.subrogation,
		})
	}
	return snap
}

// ReconstructSubmission rebuilds a Submission from persistence without side-effects.
func ReconstructSubmission(snap SubmissionSnapshot) (*Submission, error) {
	status, err := valueobject.NewSubmissionStatus(snap.Status)
	if err != nil {
		return nil, err
	}
	clearanceStatus, err := valueobject.NewClearanceStatus(snap.Clearance.Status)
	if err != nil {
		return nil, err
	}
	insured, err := reconstructInsured(snap.Insured)
	if err != nil {
		return nil, err
	}

	s := &Submission{
		id:                      snap.ID,
		tenantID:                snap.TenantID,
		submissionNumber:        snap.SubmissionNumber,
		status:                  status,
		statusReason:            snap.StatusReason,
		insured:                 insured,
		nextLocationNumber:      snap.NextLocationNumber,
		assignedUnderwriterID:   snap.AssignedUnderwriterID,
		assignedUnderwriterName: snap.AssignedUnderwriterName,
		producerID:              snap.ProducerID,
		producerName:            snap.ProducerName,
		quotedPremium:           cloneMoney(snap.QuotedPremium),
		declineReason:           snap.DeclineReason,
		appetiteScore:           cloneInt(snap.AppetiteScore),
		winnabilityScore:        cloneInt(snap.WinnabilityScore),
		dataQualityScore:        cloneInt(snap.DataQualityScore),
		clearance: Clearance{
			status:         clearanceStatus,
			matches:        append([]ClearanceMatch(nil), snap.Clearance.Matches...),
			checkedAt:      cloneTime(snap.Clearance.CheckedAt),
			overrideReason: snap.Clearance.OverrideReason,
			overriddenBy:   snap.Clearance.OverriddenBy,
		},
		version:   snap.Version,
		createdAt: snap.CreatedAt,
		updatedAt: snap.UpdatedAt,
	}

	for _, cs := range snap.Coverages {
		ct, err := valueobject.NewCoverageType(cs.Type)
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", cs.ID, err)
		}
		s.coverages.add(cs.ID, &Coverage{
			id:             cs.ID,
			coverageType:   ct,
			requestedLimit: cloneMoney(cs.RequestedLimit),
			deductible:     cloneMoney(cs.Deductible),
			effectiveDate:  cloneTime(cs.EffectiveDate),
			expirationDate: cloneTime(cs.ExpirationDate),
			currentCarrier: cs.CurrentCarrier,
			currentPremium: cloneMoney(cs.CurrentPremium),
			owner:          s,
		})
	}
	for _, ls := range snap.Locations {
		addr, err := reconstructAddress(ls.Address)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", ls.ID, err)
		}
		var ct valueobject.ConstructionType
		if ls.ConstructionType != "" {
			if ct, err = valueobject.NewConstructionType(ls.ConstructionType); err != nil {
				return nil, fmt.Errorf("location %s: %w", ls.ID, err)
			}
		}
		s.locations.add(ls.ID, &ExposureLocation{
			id:                  ls.ID,
			locationNumber:      ls.LocationNumber,
			address:             addr,
			constructionType:    ct,
			yearBuilt:           ls.YearBuilt,
			stories:             ls.Stories,
			squareFootage:       ls.SquareFootage,
			occupancy:           ls.Occupancy,
			buildingValue:       cloneMoney(ls.BuildingValue),
			contentsValue:       cloneMoney(ls.ContentsValue),
			businessIncomeValue: cloneMoney(ls.BusinessIncomeValue),
			hasSprinklers:       ls.HasSprinklers,
			hasAlarm:            ls.HasAlarm,
			protectionClass:     ls.ProtectionClass,
			owner:               s,
		})
		if ls.LocationNumber >= s.nextLocationNumber {
			s.nextLocationNumber = ls.LocationNumber + 1
		}
	}
	if s.nextLocationNumber < 1 {
		s.nextLocationNumber = 1
	}
	for _, ls := range snap.Losses {
		st, err := valueobject.NewLossStatus(ls.Status)
		if err != nil {
			return nil, fmt.Errorf("loss %s: %w", ls.ID, err)
		}
		s.losses.add(ls.ID, &Loss{
			id:          ls.ID,
			date:        ls.Date,
			description: ls.Description,
			claimNumber: ls.ClaimNumber,
			paid:        cloneMoney(ls.Paid),
			reserved:    cloneMoney(ls.Reserved),
			incurred:    cloneMoney(ls.Incurred),
			status:      st,
			subrogation: ls.Subrogation,
			owner:       s,
		})
	}
	return s, nil
}

// AdvanceVersion is called by persistence after a successful save.
func (s *Submission) AdvanceVersion() { s.version++ }

func snapshotInsured(i Insured) InsuredSnapshot {
	snap := InsuredSnapshot{
		Name:                i.name,
		DBAName:             i.dbaName,
		NaicsCode:           i.industry.NaicsCode(),
		SicCode:             i.industry.SicCode(),
		IndustryDescription: i.industry.Description(),
		AnnualRevenue:       cloneMoney(i.annualRevenue),
		YearsInBusiness:     cloneInt(i.yearsInBusiness),
		EmployeeCount:       cloneInt(i.employeeCount),
	}
	if !i.address.IsZero() {
		a := snapshotAddress(i.address)
		snap.Address = &a
	}
	return snap
}

func reconstructInsured(snap InsuredSnapshot) (Insured, error) {
	i, err := NewInsured(snap.Name)
	if err != nil {
		return Insured{}, err
	}
	i.dbaName = snap.DBAName
	if snap.Address != nil {
		if i.address, err = reconstructAddress(*snap.Address); err != nil {
			return Insured{}, err
		}
	}
	if snap.NaicsCode != "" || snap.SicCode != "" {
		if i.industry, err = valueobject.NewIndustryClassification(snap.NaicsCode, snap.SicCode, snap.IndustryDescription); err != nil {
			return Insured{}, err
		}
	}
	i.annualRevenue = cloneMoney(snap.AnnualRevenue)
	i.yearsInBusiness = cloneInt(snap.YearsInBusiness)
	i.employeeCount = cloneInt(snap.EmployeeCount)
	return i, nil
}

func snapshotAddress(a valueobject.Address) AddressSnapshot {
	return AddressSnapshot{
		Street1:    a.Street1(),
		Street2:    a.Street2(),
		City:       a.City(),
		State:      a.State(),
		PostalCode: a.PostalCode(),
		Country:    a.Country(),
	}
}

func reconstructAddress(a AddressSnapshot) (valueobject.Address, error) {
	return valueobject.NewAddress(a.Street1, a.Street2, a.City, a.State, a.PostalCode, a.Country)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ---------------------------------------------------------------------------
// Guideline snapshots
// ---------------------------------------------------------------------------

type ConditionSnapshot struct {
	Field          string `json:"field"`
	Operator       string `json:"operator"`
	Value          string `json:"value,omitempty"`
	SecondaryValue string `json:"secondary_value,omitempty"`
}

type RuleSnapshot struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Type            string              `json:"type"`
	Action          string              `json:"action"`
	Priority        int                 `json:"priority"`
	IsActive        bool                `json:"is_active"`
	Conditions      []ConditionSnapshot `json:"conditions,omitempty"`
	ScoreAdjustment *int                `json:"score_adjustment,omitempty"`
	PricingModifier *decimal.Decimal    `json:"pricing_modifier,omitempty"`
	Message         string              `json:"message,omitempty"`
}

// GuidelineSnapshot is the persisted form of a Guideline.
type GuidelineSnapshot struct {
	ID            string
	TenantID      string
	Name          string
	Description   string
	Status        string
	Version       int
	CoverageTypes string
	States        string
	NaicsCodes    string
	Rules         []RuleSnapshot
	Revision      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot copies the guideline into its persisted form.
func (g *Guideline) Snapshot() GuidelineSnapshot {
	snap := GuidelineSnapshot{
		ID:            g.id,
		TenantID:      g.tenantID,
		Name:          g.name,
		Description:   g.description,
		Status:        g.status.String(),
		Version:       g.version,
		CoverageTypes: g.CoverageTypeFilter(),
		States:        g.StateFilter(),
		NaicsCodes:    g.NaicsFilter(),
		Revision:      g.revision,
		CreatedAt:     g.createdAt,
		UpdatedAt:     g.updatedAt,
	}
	for _, r := range g.rules.values() {
		rs := RuleSnapshot{
			ID:              r.id,
			Name:            r.name,
			Type:            r.ruleType.String(),
			Action:          r.action.String(),
			Priority:        r.priority,
			IsActive:        r.isActive,
			ScoreAdjustment: cloneInt(r.scoreAdjustment),
			Message:         r.message,
		}
		if r.pricingModifier != nil {
			m := *r.pricingModifier
			rs.PricingModifier = &m
		}
		for _, c := range r.conditions {
			rs.Conditions = append(rs.Conditions, ConditionSnapshot{
				Field:          c.field.String(),
				Operator:       c.operator.String(),
				Value:          c.value,
				SecondaryValue: c.secondaryValue,
			})
		}
		snap.Rules = append(snap.Rules, rs)
	}
	return snap
}

// ReconstructGuideline rebuilds a Guideline from persistence without side-effects.
func ReconstructGuideline(snap GuidelineSnapshot) (*Guideline, error) {
	status, err := valueobject.NewGuidelineStatus(snap.Status)
	if err != nil {
		return nil, err
	}
	g := &Guideline{
		id:            snap.ID,
		tenantID:      snap.TenantID,
		name:          snap.Name,
		description:   snap.Description,
		status:        status,
		version:       snap.Version,
		coverageTypes: splitList(snap.CoverageTypes),
		states:        splitList(snap.States),
		naicsCodes:    splitList(snap.NaicsCodes),
		revision:      snap.Revision,
		createdAt:     snap.CreatedAt,
		updatedAt:     snap.UpdatedAt,
	}
	for _, rs := range snap.Rules {
		r, err := reconstructRule(rs, g)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rs.ID, err)
		}
		g.rules.add(r.id, r)
	}
	return g, nil
}

// AdvanceRevision is called by persistence after a successful save.
func (g *Guideline) AdvanceRevision() { g.revision++ }

func reconstructRule(rs RuleSnapshot, owner *Guideline) (*UnderwritingRule, error) {
	ruleType, err := valueobject.NewRuleType(rs.Type)
	if err != nil {
		return nil, err
	}
	action, err := valueobject.NewRuleAction(rs.Action)
	if err != nil {
		return nil, err
	}
	r := &UnderwritingRule{
		id:              rs.ID,
		name:            rs.Name,
		ruleType:        ruleType,
		action:          action,
		priority:        rs.Priority,
		isActive:        rs.IsActive,
		scoreAdjustment: cloneInt(rs.ScoreAdjustment),
		message:         rs.Message,
		owner:           owner,
	}
	if rs.PricingModifier != nil {
		m := *rs.PricingModifier
		r.pricingModifier = &m
	}
	for _, cs := range rs.Conditions {
		field, err := valueobject.NewRuleField(cs.Field)
		if err != nil {
			return nil, err
		}
		op, err := valueobject.NewConditionOperator(cs.Operator)
		if err != nil {
			return nil, err
		}
		r.conditions = append(r.conditions, RuleCondition{
			field:          field,
			operator:       op,
			value:          cs.Value,
			secondaryValue: cs.SecondaryValue,
		})
	}
	return r, nil
}

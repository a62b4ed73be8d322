package model

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/events"
)

var (
	filterStateRe = regexp.MustCompile(`^[A-Z]{2}$`)
	filterNaicsRe = regexp.MustCompile(`^\d{2,6}$`)
)

// ---------------------------------------------------------------------------
// Guideline aggregate root
// ---------------------------------------------------------------------------

// Guideline is a named, versioned rule set scoped to a tenant. Version is
// bumped on every change to the rules or applicability filters.
type Guideline struct {
	id          string
	tenantID    string
	name        string
	description string
	status      valueobject.GuidelineStatus
	version     int

	coverageTypes []string
	states        []string
	naicsCodes    []string

	rules children[*UnderwritingRule]

	// revision is the optimistic-locking token maintained by persistence.
	revision  int
	createdAt time.Time
	updatedAt time.Time

	events events.EventCollector
}

// NewGuideline creates a Draft guideline at version 1.
func NewGuideline(tenantID, name, description string, now time.Time) (*Guideline, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGuidelineNameRequired
	}
	g := &Guideline{
		id:          uuid.New().String(),
		tenantID:    tenantID,
		name:        name,
		description: strings.TrimSpace(description),
		status:      valueobject.GuidelineStatusDraft,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}
	g.events.Record(event.NewGuidelineCreated(g.id, tenantID, name, g.version, now))
	return g, nil
}

func (g *Guideline) ID() string { return g.id }
func (g *Guideline) TenantID() string { return g.tenantID }
func (g *Guideline) Name() string { return g.name }
func (g *Guideline) Description() string { return g.description }
func (g *Guideline) Status() valueobject.GuidelineStatus { return g.status }
func (g *Guideline) Version() int { return g.version }
func (g *Guideline) Revision() int { return g.revision }
func (g *Guideline) CreatedAt() time.Time { return g.createdAt }
func (g *Guideline) UpdatedAt() time.Time { return g.updatedAt }
func (g *Guideline) IsActive() bool { return g.status == valueobject.GuidelineStatusActive }

// CoverageTypeFilter returns the comma-delimited coverage filter.
func (g *Guideline) CoverageTypeFilter() string { return strings.Join(g.coverageTypes, ",") }

// StateFilter returns the comma-delimited state filter.
func (g *Guideline) StateFilter() string { return strings.Join(g.states, ",") }

// NaicsFilter returns the comma-delimited NAICS prefix filter.
func (g *Guideline) NaicsFilter() string { return strings.Join(g.naicsCodes, ",") }

// Rules returns the rules in the order they were added.
func (g *Guideline) Rules() []*UnderwritingRule { return g.rules.values() }

// Rule looks up a rule by id.
func (g *Guideline) Rule(id string) (*UnderwritingRule, bool) { return g.rules.get(id) }

// ActiveRules returns the active rules by ascending priority; ties keep
// insertion order.
func (g *Guideline) ActiveRules() []*UnderwritingRule {
	var out []*UnderwritingRule
	for _, r := range g.rules.values() {
		if r.isActive {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].priority < out[j].priority })
	return out
}

// DomainEvents returns the events recorded since the last ClearEvents.
func (g *Guideline) DomainEvents() []event.DomainEvent { return g.events.Events() }

// ClearEvents drains the recorded events.
func (g *Guideline) ClearEvents() []event.DomainEvent { return g.events.ClearEvents() }

// IsApplicable reports whether the guideline is active and its filters admit
// the coverage type, state and NAICS code. An empty filter admits anything;
// NAICS entries match by prefix.
func (g *Guideline) IsApplicable(coverageType, state, naicsCode string) bool {
	if !g.IsActive() {
		return false
	}
	if len(g.coverageTypes) > 0 && !containsFold(g.coverageTypes, canonicalCoverage(coverageType)) {
		return false
	}
	if len(g.states) > 0 && !containsFold(g.states, strings.TrimSpace(state)) {
		return false
	}
	if len(g.naicsCodes) > 0 {
		naicsCode = strings.TrimSpace(naicsCode)
		for _, prefix := range g.naicsCodes {
			if naicsCode != "" && strings.HasPrefix(naicsCode, prefix) {
				return true
			}
		}
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// Describe updates the free-text description.
func (g *Guideline) Describe(description string, now time.Time) error {
	if err := g.ensureMutable(); err != nil {
		return err
	}
	g.description = strings.TrimSpace(description)
	g.updatedAt = now
	return nil
}

// SetApplicability replaces the comma-delimited filters. Coverage types are
// canonicalised, states must be 2-letter codes and NAICS entries 2 to 6 digits.
func (g *Guideline) SetApplicability(coverageTypes, states, naicsCodes string, now time.Time) error {
	if err := g.ensureMutable(); err != nil {
		return err
	}

	var cov []string
	for _, v := range splitList(coverageTypes) {
		ct, err := valueobject.NewCoverageType(v)
		if err != nil {
			return ErrGuidelineInvalidFilter.WithDescription("%v", err)
		}
		cov = append(cov, ct.String())
	}
	var st []string
	for _, v := range splitList(states) {
		v = strings.ToUpper(v)
		if !filterStateRe.MatchString(v) {
			return ErrGuidelineInvalidFilter.WithDescription("invalid state %q", v)
		}
		st = append(st, v)
	}
	var naics []string
	for _, v := range splitList(naicsCodes) {
		if !filterNaicsRe.MatchString(v) {
			return ErrGuidelineInvalidFilter.WithDescription("invalid NAICS prefix %q", v)
		}
		naics = append(naics, v)
	}

	g.coverageTypes, g.states, g.naicsCodes = cov, st, naics
	g.version++
	g.updatedAt = now
	return nil
}

// AddRule appends an active rule with no conditions.
func (g *Guideline) AddRule(name string, ruleType valueobject.RuleType, action valueobject.RuleAction, priority int, now time.Time) (*UnderwritingRule, error) {
	if err := g.ensureMutable(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRuleNameRequired
	}
	if ruleType.IsZero() || action.IsZero() {
		return nil, ErrRuleInvalid.WithDescription("rule type and action are required")
	}
	r := &UnderwritingRule{
		id:       uuid.New().String(),
		name:     name,
		ruleType: ruleType,
		action:   action,
		priority: priority,
		isActive: true,
		owner:    g,
	}
	g.rules.add(r.id, r)
	g.rulesChanged()
	g.updatedAt = now
	return r, nil
}

// RemoveRule deletes a rule; unknown ids are ignored.
func (g *Guideline) RemoveRule(id string, now time.Time) error {
	if err := g.ensureMutable(); err != nil {
		return err
	}
	if g.rules.remove(id) {
		g.rulesChanged()
		g.updatedAt = now
	}
	return nil
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

// Activate puts the guideline into use. It needs at least one rule.
func (g *Guideline) Activate(now time.Time) error {
	switch g.status {
	case valueobject.GuidelineStatusArchived:
		return ErrGuidelineArchived
	case valueobject.GuidelineStatusActive:
		return nil
	}
	if g.rules.len() == 0 {
		return ErrGuidelineNoRules
	}
	g.status = valueobject.GuidelineStatusActive
	g.updatedAt = now
	g.events.Record(event.NewGuidelineActivated(g.id, g.tenantID, g.name, g.version, now))
	return nil
}

// Deactivate takes an active guideline out of use.
func (g *Guideline) Deactivate(now time.Time) error {
	if g.status != valueobject.GuidelineStatusActive {
		return ErrGuidelineInvalidTransition.WithDescription("only active guidelines can be deactivated, status is %s", g.status)
	}
	g.status = valueobject.GuidelineStatusInactive
	g.updatedAt = now
	g.events.Record(event.NewGuidelineDeactivated(g.id, g.tenantID, g.name, g.version, now))
	return nil
}

// Archive retires the guideline permanently. Archiving twice is a no-op.
func (g *Guideline) Archive(now time.Time) error {
	if g.status == valueobject.GuidelineStatusArchived {
		return nil
	}
	g.status = valueobject.GuidelineStatusArchived
	g.updatedAt = now
	g.events.Record(event.NewGuidelineArchived(g.id, g.tenantID, g.name, g.version, now))
	return nil
}

func (g *Guideline) ensureMutable() error {
	if g.status == valueobject.GuidelineStatusArchived {
		return ErrGuidelineArchived
	}
	return nil
}

func (g *Guideline) rulesChanged() { g.version++ }

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func canonicalCoverage(v string) string {
	if ct, err := valueobject.NewCoverageType(v); err == nil {
		return ct.String()
	}
	return strings.TrimSpace(v)
}

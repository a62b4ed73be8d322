package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/pkg/money"
)

// ---------------------------------------------------------------------------
// Shared request parts
// ---------------------------------------------------------------------------

// AddressDTO is a postal address as sent by clients.
type AddressDTO struct {
	Street1    string `json:"street1" validate:"required"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required,len=2"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// InsuredDTO describes the business applying for coverage.
type InsuredDTO struct {
	Name                string           `json:"name" validate:"required"`
	DBAName             string           `json:"dba_name,omitempty"`
	Address             *AddressDTO      `json:"address,omitempty" validate:"omitempty"`
	NaicsCode           string           `json:"naics_code,omitempty" validate:"omitempty,numeric,max=6"`
	SicCode             string           `json:"sic_code,omitempty"`
	IndustryDescription string           `json:"industry_description,omitempty"`
	AnnualRevenue       *decimal.Decimal `json:"annual_revenue,omitempty"`
	YearsInBusiness     *int             `json:"years_in_business,omitempty" validate:"omitempty,gte=0"`
	EmployeeCount       *int             `json:"employee_count,omitempty" validate:"omitempty,gte=0"`
}

// CoverageDTO is one requested line of coverage.
type CoverageDTO struct {
	Type           string           `json:"type" validate:"required"`
	RequestedLimit *decimal.Decimal `json:"requested_limit,omitempty"`
	Deductible     *decimal.Decimal `json:"deductible,omitempty"`
	EffectiveDate  *time.Time       `json:"effective_date,omitempty"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
	CurrentCarrier string           `json:"current_carrier,omitempty"`
	CurrentPremium *decimal.Decimal `json:"current_premium,omitempty"`
}

// LocationDTO is one exposure location.
type LocationDTO struct {
	Address             AddressDTO       `json:"address"`
	ConstructionType    string           `json:"construction_type,omitempty"`
	YearBuilt           int              `json:"year_built,omitempty" validate:"gte=0"`
	Stories             int              `json:"stories,omitempty" validate:"gte=0"`
	SquareFootage       int              `json:"square_footage,omitempty" validate:"gte=0"`
	Occupancy           string           `json:"occupancy,omitempty"`
	BuildingValue       *decimal.Decimal `json:"building_value,omitempty"`
	ContentsValue       *decimal.Decimal `json:"contents_value,omitempty"`
	BusinessIncomeValue *decimal.Decimal `json:"business_income_value,omitempty"`
	HasSprinklers       bool             `json:"has_sprinklers,omitempty"`
	HasAlarm            bool             `json:"has_alarm,omitempty"`
	ProtectionClass     int              `json:"protection_class,omitempty" validate:"gte=0,lte=10"`
}

// LossDTO is one historical loss.
type LossDTO struct {
	Date        time.Time        `json:"date" validate:"required"`
	Description string           `json:"description" validate:"required"`
	ClaimNumber string           `json:"claim_number,omitempty"`
	Paid        *decimal.Decimal `json:"paid,omitempty"`
	Reserved    *decimal.Decimal `json:"reserved,omitempty"`
	Status      string           `json:"status,omitempty"`
	Subrogation bool             `json:"subrogation,omitempty"`
}

// ConditionDTO is one rule condition.
type ConditionDTO struct {
	Field          string `json:"field" validate:"required"`
	Operator       string `json:"operator" validate:"required"`
	Value          string `json:"value,omitempty"`
	SecondaryValue string `json:"secondary_value,omitempty"`
}

// RuleDTO is one underwriting rule with its conditions.
type RuleDTO struct {
	Name            string           `json:"name" validate:"required"`
	Type            string           `json:"type" validate:"required"`
	Action          string           `json:"action" validate:"required"`
	Priority        int              `json:"priority"`
	Message         string           `json:"message,omitempty"`
	ScoreAdjustment *int             `json:"score_adjustment,omitempty"`
	PricingModifier *decimal.Decimal `json:"pricing_modifier,omitempty"`
	Conditions      []ConditionDTO   `json:"conditions" validate:"dive"`
}

// ExtractedFieldDTO is one field read from a document.
type ExtractedFieldDTO struct {
	Name       string  `json:"name" validate:"required"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// DocumentDTO is one document of a processing job.
type DocumentDTO struct {
	ID       string              `json:"id"`
	FileName string              `json:"file_name"`
	Type     string              `json:"type" validate:"required"`
	Status   string              `json:"status" validate:"required"`
	Fields   []ExtractedFieldDTO `json:"fields" validate:"dive"`
}

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateSubmissionRequest carries everything needed to open a submission.
type CreateSubmissionRequest struct {
	TenantID     string        `json:"tenant_id" validate:"required"`
	Currency     string        `json:"currency,omitempty" validate:"omitempty,len=3"`
	Insured      InsuredDTO    `json:"insured"`
	ProducerID   string        `json:"producer_id,omitempty"`
	ProducerName string        `json:"producer_name,omitempty"`
	Coverages    []CoverageDTO `json:"coverages" validate:"dive"`
	Locations    []LocationDTO `json:"locations" validate:"dive"`
	Losses       []LossDTO     `json:"losses" validate:"dive"`
	MarkReceived bool          `json:"mark_received,omitempty"`
}

// GetSubmissionRequest identifies a submission.
type GetSubmissionRequest struct {
	TenantID     string `json:"tenant_id" validate:"required"`
	SubmissionID string `json:"submission_id" validate:"required"`
}

// ListSubmissionsRequest filters the tenant's submissions.
type ListSubmissionsRequest struct {
	TenantID    string   `json:"tenant_id" validate:"required"`
	Statuses    []string `json:"statuses,omitempty"`
	AssignedTo  string   `json:"assigned_to,omitempty"`
	InsuredName string   `json:"insured_name,omitempty"`
	OpenOnly    bool     `json:"open_only,omitempty"`
	Limit       int      `json:"limit,omitempty" validate:"gte=0,lte=500"`
	Offset      int      `json:"offset,omitempty" validate:"gte=0"`
}

// Submission lifecycle commands accepted by TransitionSubmission.
const (
	CommandReceive            = "receive"
	CommandAssign             = "assign"
	CommandRequestInformation = "request_information"
	CommandQuote              = "quote"
	CommandBind               = "bind"
	CommandDecline            = "decline"
	CommandWithdraw           = "withdraw"
	CommandExpire             = "expire"
	CommandOverrideClearance  = "override_clearance"
)

// TransitionSubmissionRequest applies one lifecycle command to a submission.
type TransitionSubmissionRequest struct {
	TenantID        string           `json:"tenant_id" validate:"required"`
	SubmissionID    string           `json:"submission_id" validate:"required"`
	Command         string           `json:"command" validate:"required,oneof=receive assign request_information quote bind decline withdraw expire override_clearance"`
	Reason          string           `json:"reason,omitempty"`
	UnderwriterID   string           `json:"underwriter_id,omitempty" validate:"required_if=Command assign"`
	UnderwriterName string           `json:"underwriter_name,omitempty"`
	Premium         *decimal.Decimal `json:"premium,omitempty" validate:"required_if=Command quote"`
	Currency        string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	UserID          string           `json:"user_id,omitempty" validate:"required_if=Command override_clearance"`
}

// RunClearanceRequest asks for a clearance check on a submission.
type RunClearanceRequest struct {
	TenantID     string `json:"tenant_id" validate:"required"`
	SubmissionID string `json:"submission_id" validate:"required"`
}

// ScoreSubmissionRequest asks for appetite, winnability and data-quality
// scores. AsOf defaults to the current time.
type ScoreSubmissionRequest struct {
	TenantID     string     `json:"tenant_id" validate:"required"`
	SubmissionID string     `json:"submission_id" validate:"required"`
	AsOf         *time.Time `json:"as_of,omitempty"`
}

// AssessExtractionQualityRequest grades the output of a document processing job.
type AssessExtractionQualityRequest struct {
	TenantID     string        `json:"tenant_id" validate:"required"`
	JobID        string        `json:"job_id" validate:"required"`
	SubmissionID string        `json:"submission_id,omitempty"`
	Documents    []DocumentDTO `json:"documents" validate:"dive"`
}

// CreateGuidelineRequest defines a guideline with its rules.
type CreateGuidelineRequest struct {
	TenantID      string    `json:"tenant_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description,omitempty"`
	CoverageTypes string    `json:"coverage_types,omitempty"`
	States        string    `json:"states,omitempty"`
	NaicsCodes    string    `json:"naics_codes,omitempty"`
	Rules         []RuleDTO `json:"rules" validate:"dive"`
	Activate      bool      `json:"activate,omitempty"`
}

// Guideline lifecycle commands accepted by ChangeGuidelineStatus.
const (
	GuidelineActivate   = "activate"
	GuidelineDeactivate = "deactivate"
	GuidelineArchive    = "archive"
)

// ChangeGuidelineStatusRequest moves a guideline through its lifecycle.
type ChangeGuidelineStatusRequest struct {
	TenantID    string `json:"tenant_id" validate:"required"`
	GuidelineID string `json:"guideline_id" validate:"required"`
	Command     string `json:"command" validate:"required,oneof=activate deactivate archive"`
}

// PriceSubmissionRequest applies guideline modifiers to a base premium.
type PriceSubmissionRequest struct {
	TenantID     string          `json:"tenant_id" validate:"required"`
	SubmissionID string          `json:"submission_id" validate:"required"`
	BasePremium  decimal.Decimal `json:"base_premium"`
	Currency     string          `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// DispatchOutboxRequest bounds one outbox dispatch pass.
type DispatchOutboxRequest struct {
	BatchSize int `json:"batch_size" validate:"gte=0,lte=1000"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// CoverageResponse is the external representation of a requested coverage.
type CoverageResponse struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	RequestedLimit *money.Money `json:"requested_limit,omitempty"`
	Deductible     *money.Money `json:"deductible,omitempty"`
	EffectiveDate  *time.Time   `json:"effective_date,omitempty"`
	ExpirationDate *time.Time   `json:"expiration_date,omitempty"`
}

// ScoresResponse holds the last recorded scores of a submission.
type ScoresResponse struct {
	Appetite    *int `json:"appetite,omitempty"`
	Winnability *int `json:"winnability,omitempty"`
	DataQuality *int `json:"data_quality,omitempty"`
}

// ClearanceResponse is the external representation of a clearance check.
type ClearanceResponse struct {
	Status         string     `json:"status"`
	MatchCount     int        `json:"match_count"`
	CheckedAt      *time.Time `json:"checked_at,omitempty"`
	OverrideReason string     `json:"override_reason,omitempty"`
	OverriddenBy   string     `json:"overridden_by,omitempty"`
}

// SubmissionResponse is the external representation of a submission.
type SubmissionResponse struct {
	ID                      string             `json:"id"`
	TenantID                string             `json:"tenant_id"`
	SubmissionNumber        string             `json:"submission_number"`
	Status                  string             `json:"status"`
	StatusReason            string             `json:"status_reason,omitempty"`
	InsuredName             string             `json:"insured_name"`
	ProducerName            string             `json:"producer_name,omitempty"`
	AssignedUnderwriterID   string             `json:"assigned_underwriter_id,omitempty"`
	AssignedUnderwriterName string             `json:"assigned_underwriter_name,omitempty"`
	QuotedPremium           *money.Money       `json:"quoted_premium,omitempty"`
	DeclineReason           string             `json:"decline_reason,omitempty"`
	Coverages               []CoverageResponse `json:"coverages"`
	LocationCount           int                `json:"location_count"`
	LossCount               int                `json:"loss_count"`
	TotalInsuredValue       *money.Money       `json:"total_insured_value,omitempty"`
	Clearance               ClearanceResponse  `json:"clearance"`
	Scores                  ScoresResponse     `json:"scores"`
	Version                 int                `json:"version"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// ListSubmissionsResponse is one page of submissions.
type ListSubmissionsResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

// ScoreSubmissionResponse carries all three scoring results.
type ScoreSubmissionResponse struct {
	SubmissionID string                         `json:"submission_id"`
	Appetite     service.AppetiteScoreResult    `json:"appetite"`
	Winnability  service.WinnabilityScoreResult `json:"winnability"`
	DataQuality  service.DataQualityScoreResult `json:"data_quality"`
}

// ExtractionQualityResponse is the data-quality grade of a processing job.
type ExtractionQualityResponse struct {
	JobID   string                         `json:"job_id"`
	Quality service.DataQualityScoreResult `json:"quality"`
}

// RuleResponse is the external representation of a rule.
type RuleResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            string           `json:"type"`
	Action          string           `json:"action"`
	Priority        int              `json:"priority"`
	IsActive        bool             `json:"is_active"`
	ConditionCount  int              `json:"condition_count"`
	ScoreAdjustment *int             `json:"score_adjustment,omitempty"`
	PricingModifier *decimal.Decimal `json:"pricing_modifier,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// GuidelineResponse is the external representation of a guideline.
type GuidelineResponse struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	Version       int            `json:"version"`
	CoverageTypes string         `json:"coverage_types,omitempty"`
	States        string         `json:"states,omitempty"`
	NaicsCodes    string         `json:"naics_codes,omitempty"`
	Rules         []RuleResponse `json:"rules"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PriceSubmissionResponse is the premium after guideline modifiers.
type PriceSubmissionResponse struct {
	SubmissionID string                `json:"submission_id"`
	Pricing      service.PricingResult `json:"pricing"`
}

// DispatchOutboxResponse reports one dispatch pass.
type DispatchOutboxResponse struct {
	Published int `json:"published"`
}

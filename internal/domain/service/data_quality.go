package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// DataQualityIssue is one finding of a data-quality assessment.
type DataQualityIssue struct {
	Type        valueobject.IssueType `json:"type"`
	FieldName   string                `json:"field_name,omitempty"`
	Description string                `json:"description"`
	Severity    valueobject.Severity  `json:"severity"`
}

// DataQualityScoreResult grades extracted or entered submission data.
type DataQualityScoreResult struct {
	OverallScore      int                `json:"overall_score"`
	CompletenessScore int                `json:"completeness_score"`
	ConfidenceScore   int                `json:"confidence_score"`
	ValidationScore   int                `json:"validation_score"`
	CoverageScore     int                `json:"coverage_score"`
	IsHighQuality     bool               `json:"is_high_quality"`
	RequiresReview    bool               `json:"requires_review"`
	Issues            []DataQualityIssue `json:"issues"`
}

// requiredFields lists the fields extraction must find per document type.
var requiredFields = map[valueobject.DocumentType][]string{
	valueobject.DocumentTypeACORD125: {"InsuredName", "InsuredAddress", "InsuredCity", "InsuredState", "InsuredZip", "EffectiveDate"},
	valueobject.DocumentTypeACORD126: {"InsuredName", "EffectiveDate", "GeneralAggregateLimit", "EachOccurrenceLimit"},
	valueobject.DocumentTypeACORD130: {"InsuredName", "EffectiveDate", "FEIN", "EstimatedPayroll"},
	valueobject.DocumentTypeACORD140: {"InsuredName", "EffectiveDate", "LocationAddress", "BuildingValue", "ConstructionType"},
	valueobject.DocumentTypeLossRun:  {"InsuredName", "CarrierName", "PolicyNumber", "ValuationDate"},

	valueobject.DocumentTypeExposureSchedule:   {"LocationAddress", "BuildingValue"},
	valueobject.DocumentTypeFinancialStatement: {"InsuredName", "AnnualRevenue"},
}

// criticalFields are the fields whose absence blocks underwriting.
var criticalFields = map[string]bool{"InsuredName": true, "EffectiveDate": true}

// DataQualityScorer grades processing jobs, single documents and
// structured submissions against one issue taxonomy.
type DataQualityScorer struct {
	cfg DataQualityConfig
}

// NewDataQualityScorer returns a scorer using cfg.
func NewDataQualityScorer(cfg DataQualityConfig) *DataQualityScorer {
	return &DataQualityScorer{cfg: cfg}
}

// ---------------------------------------------------------------------------
// Job level
// ---------------------------------------------------------------------------

// ScoreJob grades all documents extracted for a submission. Completeness
// and confidence average the document-level scores; each failed document
// costs validation points; coverage is the share of the required document
// kinds (an ACORD form, a loss run, an exposure schedule) present.
func (s *DataQualityScorer) ScoreJob(job model.ProcessingJob) DataQualityScoreResult {
	res := DataQualityScoreResult{ValidationScore: 100}

	if len(job.Documents) == 0 {
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueMissingDocument,
			Description: "No documents were provided for extraction",
			Severity:    valueobject.SeverityCritical,
		})
	}

	var completeness, confidence int
	for _, doc := range job.Documents {
		docRes := s.ScoreDocument(doc)
		completeness += docRes.CompletenessScore
		confidence += docRes.ConfidenceScore
		res.Issues = append(res.Issues, docRes.Issues...)
		if doc.Status == valueobject.DocumentStatusFailed {
			res.ValidationScore -= s.cfg.FailedDocumentPenalty
		}
	}
	if n := len(job.Documents); n > 0 {
		res.CompletenessScore = completeness / n
		res.ConfidenceScore = confidence / n
	}
	res.ValidationScore = clamp(res.ValidationScore)

	required := []struct {
		name  string
		match func(valueobject.DocumentType) bool
	}{
		{"ACORD application", valueobject.DocumentType.IsACORD},
		{"Loss run", func(d valueobject.DocumentType) bool { return d == valueobject.DocumentTypeLossRun }},
		{"Exposure schedule", func(d valueobject.DocumentType) bool { return d == valueobject.DocumentTypeExposureSchedule }},
	}
	present := 0
	for _, r := range required {
		if job.HasDocumentOf(r.match) {
			present++
			continue
		}
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueMissingDocument,
			FieldName:   r.name,
			Description: r.name + " document is missing",
			Severity:    valueobject.SeverityMedium,
		})
	}
	res.CoverageScore = present * 100 / len(required)

	s.finish(&res)
	return res
}

// ---------------------------------------------------------------------------
// Document level
// ---------------------------------------------------------------------------

// ScoreDocument grades one document against its type's required fields.
// Unknown types are graded by how many fields were extracted.
func (s *DataQualityScorer) ScoreDocument(doc model.Document) DataQualityScoreResult {
	res := DataQualityScoreResult{ValidationScore: 100, CoverageScore: 100}
	label := doc.FileName
	if label == "" {
		label = doc.ID
	}

	if doc.Status == valueobject.DocumentStatusFailed {
		res.ValidationScore = 0
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueValidationError,
			Description: fmt.Sprintf("Extraction failed for %s", label),
			Severity:    valueobject.SeverityMedium,
		})
	}

	if fields, known := requiredFields[doc.Type]; known {
		found := 0
		for _, name := range fields {
			if doc.HasField(name) {
				found++
				continue
			}
			severity := valueobject.SeverityMedium
			if criticalFields[name] {
				severity = valueobject.SeverityCritical
			}
			res.Issues = append(res.Issues, DataQualityIssue{
				Type:        valueobject.IssueMissingRequiredField,
				FieldName:   name,
				Description: fmt.Sprintf("%s is missing from %s", name, label),
				Severity:    severity,
			})
		}
		res.CompletenessScore = found * 100 / len(fields)
	} else {
		res.CoverageScore = 50
		target := max(s.cfg.UnknownTypeFieldTarget, 1)
		res.CompletenessScore = min(len(doc.Fields)*100/target, 100)
	}

	if len(doc.Fields) > 0 {
		sum := 0.0
		for _, f := range doc.Fields {
			sum += f.Confidence
			if f.Confidence < s.cfg.LowConfidenceThreshold {
				res.Issues = append(res.Issues, DataQualityIssue{
					Type:        valueobject.IssueLowConfidence,
					FieldName:   f.Name,
					Description: fmt.Sprintf("%s extracted from %s with %.0f%% confidence", f.Name, label, f.Confidence*100),
					Severity:    valueobject.SeverityLow,
				})
			}
		}
		res.ConfidenceScore = clamp(int(decimal.NewFromFloat(sum / float64(len(doc.Fields)) * 100).Round(0).IntPart()))
	}

	s.finish(&res)
	return res
}

// ---------------------------------------------------------------------------
// Submission level
// ---------------------------------------------------------------------------

// ScoreSubmission grades the structured data held on a submission. A
// submission without coverages is capped at the configured ceiling.
func (s *DataQualityScorer) ScoreSubmission(sub *model.Submission) DataQualityScoreResult {
	if sub == nil {
		panic("data quality: nil submission")
	}
	res := DataQualityScoreResult{ConfidenceScore: 100, ValidationScore: 100}
	ins := sub.Insured()
	_, hasRevenue := ins.AnnualRevenue()
	_, hasYears := ins.YearsInBusiness()
	_, hasEffectiveDate := sub.EarliestEffectiveDate()

	checks := []struct {
		name string
		ok   bool
	}{
		{"InsuredAddress", !ins.Address().IsZero()},
		{"IndustryClassification", !ins.Industry().IsZero()},
		{"AnnualRevenue", hasRevenue},
		{"YearsInBusiness", hasYears},
		{"Coverages", len(sub.Coverages()) > 0},
		{"EffectiveDate", hasEffectiveDate},
		{"LossHistory", len(sub.LossHistory()) > 0},
	}
	present := 0
	for _, c := range checks {
		if c.ok {
			present++
		}
	}
	res.CompletenessScore = present * 100 / len(checks)

	coverages := sub.Coverages()
	if len(coverages) == 0 {
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueMissingRequiredField,
			FieldName:   "Coverages",
			Description: "No coverages requested",
			Severity:    valueobject.SeverityCritical,
		})
	} else {
		res.CoverageScore = 100
	}

	needsLocations := false
	for _, c := range coverages {
		if !c.HasRequestedLimit() {
			res.Issues = append(res.Issues, DataQualityIssue{
				Type:        valueobject.IssueMissingRequiredField,
				FieldName:   "RequestedLimit",
				Description: fmt.Sprintf("No requested limit for %s", c.Type()),
				Severity:    valueobject.SeverityMedium,
			})
			res.ValidationScore -= 10
		}
		if c.Type().IsPropertyType() {
			needsLocations = true
		}
	}
	if needsLocations && len(sub.Locations()) == 0 {
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueMissingRequiredField,
			FieldName:   "Locations",
			Description: "Property coverage requested without any scheduled locations",
			Severity:    valueobject.SeverityMedium,
		})
		res.ValidationScore -= 10
	}
	if len(sub.LossHistory()) == 0 {
		res.Issues = append(res.Issues, DataQualityIssue{
			Type:        valueobject.IssueMissingRequiredField,
			FieldName:   "LossHistory",
			Description: "No loss history provided",
			Severity:    valueobject.SeverityLow,
		})
	}
	res.ValidationScore = clamp(res.ValidationScore)

	s.finish(&res)
	if len(coverages) == 0 && res.OverallScore > s.cfg.EmptySubmissionCap {
		res.OverallScore = s.cfg.EmptySubmissionCap
		res.IsHighQuality = false
		res.RequiresReview = res.OverallScore < s.cfg.ReviewThreshold
	}
	return res
}

// finish combines the four sub-scores and sets the verdict flags.
func (s *DataQualityScorer) finish(res *DataQualityScoreResult) {
	res.OverallScore = weighted(
		[]int{res.CompletenessScore, res.ConfidenceScore, res.ValidationScore, res.CoverageScore},
		[]decimal.Decimal{s.cfg.CompletenessWeight, s.cfg.ConfidenceWeight, s.cfg.ValidationWeight, s.cfg.CoverageWeight},
	)
	res.IsHighQuality = res.OverallScore >= s.cfg.HighQualityThreshold
	res.RequiresReview = res.OverallScore < s.cfg.ReviewThreshold
}

package valueobject

// ---------------------------------------------------------------------------
// DocumentType
// ---------------------------------------------------------------------------

// DocumentType classifies a document attached to a submission.
type DocumentType struct {
	value string
}

var (
	DocumentTypeACORD125           = DocumentType{value: "ACORD_125"}
	DocumentTypeACORD126           = DocumentType{value: "ACORD_126"}
	DocumentTypeACORD130           = DocumentType{value: "ACORD_130"}
	DocumentTypeACORD140           = DocumentType{value: "ACORD_140"}
	DocumentTypeLossRun            = DocumentType{value: "LOSS_RUN"}
	DocumentTypeExposureSchedule   = DocumentType{value: "EXPOSURE_SCHEDULE"}
	DocumentTypeFinancialStatement = DocumentType{value: "FINANCIAL_STATEMENT"}
	DocumentTypeOther              = DocumentType{value: "OTHER"}
)

var documentTypes = newLookup("document type",
	DocumentTypeACORD125,
	DocumentTypeACORD126,
	DocumentTypeACORD130,
	DocumentTypeACORD140,
	DocumentTypeLossRun,
	DocumentTypeExposureSchedule,
	DocumentTypeFinancialStatement,
	DocumentTypeOther,
)

// NewDocumentType resolves a DocumentType by value or name.
func NewDocumentType(s string) (DocumentType, error) { return documentTypes.parse(s) }

func (d DocumentType) String() string { return d.value }

// IsZero returns true if the type has not been initialised.
func (d DocumentType) IsZero() bool { return d.value == "" }

// IsACORD reports whether the document is one of the ACORD application forms.
func (d DocumentType) IsACORD() bool {
	switch d {
	case DocumentTypeACORD125, DocumentTypeACORD126, DocumentTypeACORD130, DocumentTypeACORD140:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// DocumentStatus
// ---------------------------------------------------------------------------

// DocumentStatus is the extraction state of a document.
type DocumentStatus struct {
	value string
}

var (
	DocumentStatusPending   = DocumentStatus{value: "PENDING"}
	DocumentStatusProcessed = DocumentStatus{value: "PROCESSED"}
	DocumentStatusFailed    = DocumentStatus{value: "FAILED"}
)

var documentStatuses = newLookup("document status",
	DocumentStatusPending, DocumentStatusProcessed, DocumentStatusFailed)

// NewDocumentStatus resolves a DocumentStatus by value or name.
func NewDocumentStatus(s string) (DocumentStatus, error) { return documentStatuses.parse(s) }

func (d DocumentStatus) String() string { return d.value }

// ---------------------------------------------------------------------------
// Data-quality issue taxonomy
// ---------------------------------------------------------------------------

// IssueType classifies a data-quality finding.
type IssueType struct {
	value string
}

var (
	IssueMissingDocument      = IssueType{value: "MISSING_DOCUMENT"}
	IssueMissingRequiredField = IssueType{value: "MISSING_REQUIRED_FIELD"}
	IssueLowConfidence        = IssueType{value: "LOW_CONFIDENCE"}
	IssueValidationError      = IssueType{value: "VALIDATION_ERROR"}
)

func (i IssueType) String() string { return i.value }

// MarshalText encodes the canonical value.
func (i IssueType) MarshalText() ([]byte, error) { return []byte(i.value), nil }

// Severity ranks a data-quality finding.
type Severity struct {
	value string
}

var (
	SeverityCritical = Severity{value: "CRITICAL"}
	SeverityMedium   = Severity{value: "MEDIUM"}
	SeverityLow      = Severity{value: "LOW"}
)

func (s Severity) String() string { return s.value }

// MarshalText encodes the canonical value.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.value), nil }

package model

import (
	"strings"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Extraction output (produced upstream, consumed by data-quality scoring)
// ---------------------------------------------------------------------------

// ExtractedField is a single value read from a document.
type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64 // 0..1
}

// Document is one file of a processing job together with its extracted fields.
type Document struct {
	ID       string
	FileName string
	Type     valueobject.DocumentType
	Status   valueobject.DocumentStatus
	Fields   []ExtractedField
}

// ProcessingJob groups the documents extracted for one submission.
type ProcessingJob struct {
	ID           string
	SubmissionID string
	Documents    []Document
}

// HasField reports whether the document carries a non-blank value for name.
// Field names compare case-insensitively.
func (d Document) HasField(name string) bool {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Name, name) && strings.TrimSpace(f.Value) != "" {
			return true
		}
	}
	return false
}

// HasDocumentOf reports whether any document in the job satisfies match.
func (j ProcessingJob) HasDocumentOf(match func(valueobject.DocumentType) bool) bool {
	for _, d := range j.Documents {
		if match(d.Type) {
			return true
		}
	}
	return false
}

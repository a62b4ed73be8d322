package adapter

import (
	"context"

	"github.com/bibbank/underwriting/internal/domain/model"
)

// StubClearanceChecker is a development adapter that clears every submission.
// It implements port.ClearanceChecker.
type StubClearanceChecker struct{}

// NewStubClearanceChecker creates a new stub adapter.
func NewStubClearanceChecker() *StubClearanceChecker {
	return &StubClearanceChecker{}
}

// Check always reports no conflicts.
func (StubClearanceChecker) Check(context.Context, *model.Submission) ([]model.ClearanceMatch, error) {
	return nil, nil
}

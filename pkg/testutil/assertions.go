package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertErrorIs checks that err matches target with errors.Is, printing both
// when it does not.
func AssertErrorIs(t *testing.T, err, target error) bool {
	t.Helper()
	return assert.True(t, errors.Is(err, target), "expected %v, got %v", target, err)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

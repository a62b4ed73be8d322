package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
)

func TestNewRepositories(t *testing.T) {
	t.Run("constructors accept a nil pool", func(t *testing.T) {
		assert.Nil(t, NewSubmissionRepository(nil).pool)
		assert.Nil(t, NewGuidelineRepository(nil).pool)
		assert.Nil(t, NewOutboxRepository(nil).pool)
	})
}

func TestEncodeSubmission(t *testing.T) {
	t.Run("empty collections encode as JSON arrays", func(t *testing.T) {
		row, err := encodeSubmission(model.SubmissionSnapshot{Insured: model.InsuredSnapshot{Name: "Acme"}})

		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(row.coverages))
		assert.JSONEq(t, `[]`, string(row.locations))
		assert.JSONEq(t, `[]`, string(row.losses))
		assert.JSONEq(t, `{"name":"Acme"}`, string(row.insured))
		assert.Nil(t, row.quotedPremium)
	})
}

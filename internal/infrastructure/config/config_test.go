package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/pkg/testutil"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":9095", cfg.GRPCAddr())
	assert.Equal(t, ":8095", cfg.HTTPAddr())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "underwriting.events", cfg.Kafka.Topic)
	assert.Equal(t, 5*time.Minute, cfg.Redis.GuidelineTTL)
	assert.Equal(t, 70, cfg.Scoring.Appetite.BaseScore)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.False(t, cfg.UseStubClearance)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GRPC_PORT", "7000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("GUIDELINE_CACHE_TTL", "30s")
	t.Setenv("APPETITE_BASE_SCORE", "65")
	t.Setenv("APPETITE_BORDERLINE_LOW", "35")
	t.Setenv("WINNABILITY_PRICING_WEIGHT", "0.4")
	t.Setenv("DATA_QUALITY_LOW_CONFIDENCE", "0.6")
	t.Setenv("CLEARANCE_STUB", "true")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":7000", cfg.GRPCAddr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.GuidelineTTL)
	assert.Equal(t, 65, cfg.Scoring.Appetite.BaseScore)
	assert.Equal(t, 35, cfg.Scoring.Appetite.BorderlineLow)
	assert.Equal(t, "0.4", cfg.Scoring.Winnability.PricingWeight.String())
	assert.InDelta(t, 0.6, cfg.Scoring.DataQuality.LowConfidenceThreshold, 1e-9)
	assert.True(t, cfg.UseStubClearance)
	assert.Equal(t, 25, cfg.DB.MaxConns, "unparsable values fall back to the default")
}

func TestLoad_ScoringThresholdOverrides(t *testing.T) {
	t.Setenv("APPETITE_ACCEPT_FACTOR_IMPACT", "12")
	t.Setenv("WINNABILITY_RUSH_DAYS", "5")
	t.Setenv("WINNABILITY_LEAD_TIME_DAYS", "45")
	t.Setenv("WINNABILITY_ESTABLISHED_YEARS", "15")
	t.Setenv("WINNABILITY_NEW_VENTURE_YEARS", "2")
	t.Setenv("WINNABILITY_LARGE_ACCOUNT_REVENUE", "25000000")
	t.Setenv("WINNABILITY_MID_ACCOUNT_REVENUE", "2500000")
	t.Setenv("DATA_QUALITY_FAILED_DOCUMENT_PENALTY", "30")
	t.Setenv("DATA_QUALITY_UNKNOWN_TYPE_FIELD_TARGET", "8")
	t.Setenv("DATA_QUALITY_EMPTY_SUBMISSION_CAP", "40")

	s := Load().Scoring

	assert.Equal(t, 12, s.Appetite.AcceptFactorImpact)
	assert.Equal(t, 5, s.Winnability.RushDays)
	assert.Equal(t, 45, s.Winnability.LeadTimeDays)
	assert.Equal(t, 15, s.Winnability.EstablishedYears)
	assert.Equal(t, 2, s.Winnability.NewVentureYears)
	assert.Equal(t, "25000000", s.Winnability.LargeAccountRevenue.String())
	assert.Equal(t, "2500000", s.Winnability.MidAccountRevenue.String())
	assert.Equal(t, 30, s.DataQuality.FailedDocumentPenalty)
	assert.Equal(t, 8, s.DataQuality.UnknownTypeFieldTarget)
	assert.Equal(t, 40, s.DataQuality.EmptySubmissionCap)
}

func TestConfig_Validate(t *testing.T) {
	valid := func(t *testing.T) Config {
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("JWT_SECRET", "signing-key")
		return Load()
	}

	t.Run("accepts a complete configuration", func(t *testing.T) {
		require.NoError(t, valid(t).Validate())
	})

	t.Run("requires a database password", func(t *testing.T) {
		cfg := valid(t)
		cfg.DB.Password = ""
		testutil.AssertErrorContains(t, cfg.Validate(), "DB_PASSWORD")
	})

	t.Run("requires a JWT key", func(t *testing.T) {
		cfg := valid(t)
		cfg.JWT.Secret = ""
		testutil.AssertErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("requires a positive outbox interval", func(t *testing.T) {
		for _, interval := range []time.Duration{0, -time.Second} {
			cfg := valid(t)
			cfg.Outbox.Interval = interval
			testutil.AssertErrorContains(t, cfg.Validate(), "OUTBOX_INTERVAL")
		}
	})

	t.Run("rejects weights that do not sum to one", func(t *testing.T) {
		t.Setenv("WINNABILITY_PRICING_WEIGHT", "0.5")
		cfg := valid(t)
		testutil.AssertErrorContains(t, cfg.Validate(), "winnability weights")
	})
}

func TestConfig_Postgres(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "p@ss")

	pg := Load().Postgres()

	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, "bib_underwriting", pg.Database)
	assert.Equal(t, int32(25), pg.MaxConns)
	assert.Contains(t, pg.DSN(), "db.internal:5432/bib_underwriting")
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/pkg/auth"
	"github.com/bibbank/underwriting/pkg/kafka"
	"github.com/bibbank/underwriting/pkg/observability"
	"github.com/bibbank/underwriting/pkg/postgres"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
	// Migrate applies the embedded migrations at startup.
	Migrate bool
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	TLS           bool
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// GuidelineTTL bounds how long a tenant's active guidelines stay cached.
	// Zero disables the cache.
	GuidelineTTL time.Duration
}

type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

type Config struct {
	GRPCPort    int
	HTTPPort    int
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Outbox      OutboxConfig
	JWT         auth.JWTConfig
	TLS         tlsutil.ServerConfig
	Log         observability.LogConfig
	Tracing     observability.TracingConfig
	Scoring     service.ScoringConfig
	ServiceName string
	// GRPCReflection registers the gRPC reflection service.
	GRPCReflection bool
	// UseStubClearance replaces the duplicate-insured check with a checker
	// that always passes.
	UseStubClearance bool
}

// Validate reports configuration that the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.JWT.Secret == "" && c.JWT.PublicKeyPEM == "" && c.JWT.PrivateKeyPEM == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PUBLIC_KEY or JWT_PRIVATE_KEY is required"))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.Outbox.BatchSize))
	}
	if c.Outbox.Interval <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_INTERVAL must be positive, got %s", c.Outbox.Interval))
	}
	w := c.Scoring.Winnability
	if sum := w.CompetitiveWeight.Add(w.RelationshipWeight).Add(w.PricingWeight).Add(w.TimingWeight); !sum.Equal(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("winnability weights must sum to 1, got %s", sum))
	}
	q := c.Scoring.DataQuality
	if sum := q.CompletenessWeight.Add(q.ConfidenceWeight).Add(q.ValidationWeight).Add(q.CoverageWeight); !sum.Equal(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("data quality weights must sum to 1, got %s", sum))
	}
	return errors.Join(errs...)
}

func Load() Config {
	const serviceName = "underwriting-service"
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9095),
		HTTPPort: getEnvInt("HTTP_PORT", 8095),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_underwriting"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
			Migrate:  getEnvBool("DB_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC", "underwriting.events"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			GuidelineTTL: getEnvDuration("GUIDELINE_CACHE_TTL", 5*time.Minute),
		},
		Outbox: OutboxConfig{
			Interval:  getEnvDuration("OUTBOX_INTERVAL", 2*time.Second),
			BatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		JWT: auth.JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PrivateKeyPEM: getEnv("JWT_PRIVATE_KEY", ""),
			PublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
			Issuer:        getEnv("JWT_ISSUER", "bib-identity"),
			Expiration:    getEnvDuration("JWT_EXPIRATION", time.Hour),
		},
		TLS: tlsutil.ServerConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		Log: observability.LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			ServiceName: serviceName,
		},
		Tracing: observability.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:       getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		Scoring:          loadScoring(),
		ServiceName:      serviceName,
		GRPCReflection:   getEnvBool("GRPC_REFLECTION", false),
		UseStubClearance: getEnvBool("CLEARANCE_STUB", false),
	}
}

// loadScoring overlays environment overrides on the production defaults.
func loadScoring() service.ScoringConfig {
	cfg := service.DefaultScoringConfig()

	a := &cfg.Appetite
	a.BaseScore = getEnvInt("APPETITE_BASE_SCORE", a.BaseScore)
	a.NoGuidelineScore = getEnvInt("APPETITE_NO_GUIDELINE_SCORE", a.NoGuidelineScore)
	a.AcceptanceThreshold = getEnvInt("APPETITE_ACCEPTANCE_THRESHOLD", a.AcceptanceThreshold)
	a.BorderlineLow = getEnvInt("APPETITE_BORDERLINE_LOW", a.BorderlineLow)
	a.BorderlineHigh = getEnvInt("APPETITE_BORDERLINE_HIGH", a.BorderlineHigh)
	a.AcceptFactorImpact = getEnvInt("APPETITE_ACCEPT_FACTOR_IMPACT", a.AcceptFactorImpact)

	w := &cfg.Winnability
	w.BaseSubScore = getEnvInt("WINNABILITY_BASE_SUB_SCORE", w.BaseSubScore)
	w.CompetitiveWeight = getEnvDecimal("WINNABILITY_COMPETITIVE_WEIGHT", w.CompetitiveWeight)
	w.RelationshipWeight = getEnvDecimal("WINNABILITY_RELATIONSHIP_WEIGHT", w.RelationshipWeight)
	w.PricingWeight = getEnvDecimal("WINNABILITY_PRICING_WEIGHT", w.PricingWeight)
	w.TimingWeight = getEnvDecimal("WINNABILITY_TIMING_WEIGHT", w.TimingWeight)
	w.HighThreshold = getEnvInt("WINNABILITY_HIGH_THRESHOLD", w.HighThreshold)
	w.AttentionThreshold = getEnvInt("WINNABILITY_ATTENTION_THRESHOLD", w.AttentionThreshold)
	w.RushDays = getEnvInt("WINNABILITY_RUSH_DAYS", w.RushDays)
	w.LeadTimeDays = getEnvInt("WINNABILITY_LEAD_TIME_DAYS", w.LeadTimeDays)
	w.EstablishedYears = getEnvInt("WINNABILITY_ESTABLISHED_YEARS", w.EstablishedYears)
	w.NewVentureYears = getEnvInt("WINNABILITY_NEW_VENTURE_YEARS", w.NewVentureYears)
	w.LargeAccountRevenue = getEnvDecimal("WINNABILITY_LARGE_ACCOUNT_REVENUE", w.LargeAccountRevenue)
	w.MidAccountRevenue = getEnvDecimal("WINNABILITY_MID_ACCOUNT_REVENUE", w.MidAccountRevenue)

	q := &cfg.DataQuality
	q.CompletenessWeight = getEnvDecimal("DATA_QUALITY_COMPLETENESS_WEIGHT", q.CompletenessWeight)
	q.ConfidenceWeight = getEnvDecimal("DATA_QUALITY_CONFIDENCE_WEIGHT", q.ConfidenceWeight)
	q.ValidationWeight = getEnvDecimal("DATA_QUALITY_VALIDATION_WEIGHT", q.ValidationWeight)
	q.CoverageWeight = getEnvDecimal("DATA_QUALITY_COVERAGE_WEIGHT", q.CoverageWeight)
	q.HighQualityThreshold = getEnvInt("DATA_QUALITY_HIGH_THRESHOLD", q.HighQualityThreshold)
	q.ReviewThreshold = getEnvInt("DATA_QUALITY_REVIEW_THRESHOLD", q.ReviewThreshold)
	q.LowConfidenceThreshold = getEnvFloat("DATA_QUALITY_LOW_CONFIDENCE", q.LowConfidenceThreshold)
	q.FailedDocumentPenalty = getEnvInt("DATA_QUALITY_FAILED_DOCUMENT_PENALTY", q.FailedDocumentPenalty)
	q.UnknownTypeFieldTarget = getEnvInt("DATA_QUALITY_UNKNOWN_TYPE_FIELD_TARGET", q.UnknownTypeFieldTarget)
	q.EmptySubmissionCap = getEnvInt("DATA_QUALITY_EMPTY_SUBMISSION_CAP", q.EmptySubmissionCap)

	return cfg
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Postgres converts the database settings for pkg/postgres.
func (c Config) Postgres() postgres.Config {
	return postgres.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Database: c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		MaxConns: int32(c.DB.MaxConns),
		MinConns: int32(c.DB.MinConns),
	}
}

// KafkaClient converts the broker settings for pkg/kafka.
func (c Config) KafkaClient() kafka.Config {
	return kafka.Config{
		Brokers:       c.Kafka.Brokers,
		ClientID:      c.ServiceName,
		TLS:           c.Kafka.TLS,
		SASLEnabled:   c.Kafka.SASLEnabled,
		SASLMechanism: c.Kafka.SASLMechanism,
		SASLUsername:  c.Kafka.SASLUsername,
		SASLPassword:  c.Kafka.SASLPassword,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

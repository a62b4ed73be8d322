package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/pkg/events"
	"github.com/bibbank/underwriting/pkg/money"
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

const submissionNumberConstraint = "submissions_tenant_number_key"

// SubmissionRepository implements port.SubmissionRepository using PostgreSQL.
// Child collections and the insured are stored as JSONB on the submission row.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

var _ port.SubmissionRepository = (*SubmissionRepository)(nil)

// Save inserts a new submission (version 0) or updates an existing one under
// optimistic locking, and writes pending domain events to the outbox in the
// same transaction.
func (r *SubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	snap := sub.Snapshot()
	row, err := encodeSubmission(snap)
	if err != nil {
		return err
	}
	entries, err := events.NewOutboxEntries(sub.DomainEvents())
	if err != nil {
		return fmt.Errorf("build outbox entries: %w", err)
	}

	err = pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if snap.Version == 0 {
			if err := insertSubmission(ctx, tx, snap, row); err != nil {
				return err
			}
		} else if err := updateSubmission(ctx, tx, snap, row); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, entries)
	})
	if err != nil {
		return err
	}

	sub.ClearEvents()
	sub.AdvanceVersion()
	return nil
}

func insertSubmission(ctx context.Context, tx pgx.Tx, snap model.SubmissionSnapshot, row submissionRow) error {
	const insertSQL = `
		INSERT INTO submissions (
			id, tenant_id, submission_number, status, status_reason,
			insured_name, insured, coverages, locations, losses, next_location_number,
			assigned_underwriter_id, assigned_underwriter_name, producer_id, producer_name,
			quoted_premium, decline_reason, appetite_score, winnability_score, data_quality_score,
			clearance, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,1,$22,$23)
	`
	_, err := tx.Exec(ctx, insertSQL,
		snap.ID, snap.TenantID, snap.SubmissionNumber, snap.Status, snap.StatusReason,
		snap.Insured.Name, row.insured, row.coverages, row.locations, row.losses, snap.NextLocationNumber,
		snap.AssignedUnderwriterID, snap.AssignedUnderwriterName, snap.ProducerID, snap.ProducerName,
		row.quotedPremium, snap.DeclineReason, snap.AppetiteScore, snap.WinnabilityScore, snap.DataQualityScore,
		row.clearance, snap.CreatedAt, snap.UpdatedAt,
	)
	switch {
	case pgutil.IsUniqueViolation(err, submissionNumberConstraint):
		return model.ErrInvalidSubmission.WithDescription("submission number %s is already taken", snap.SubmissionNumber)
	case pgutil.IsUniqueViolation(err, ""):
		return model.ErrConcurrencyConflict.WithDescription("submission %s already exists", snap.ID)
	case err != nil:
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func updateSubmission(ctx context.Context, tx pgx.Tx, snap model.SubmissionSnapshot, row submissionRow) error {
	const updateSQL = `
		UPDATE submissions SET
			status = $3, status_reason = $4,
			insured_name = $5, insured = $6, coverages = $7, locations = $8, losses = $9,
			next_location_number = $10,
			assigned_underwriter_id = $11, assigned_underwriter_name = $12,
			producer_id = $13, producer_name = $14,
			quoted_premium = $15, decline_reason = $16,
			appetite_score = $17, winnability_score = $18, data_quality_score = $19,
			clearance = $20, updated_at = $21,
			version = version + 1
		WHERE tenant_id = $1 AND id = $2 AND version = $22
	`
	tag, err := tx.Exec(ctx, updateSQL,
		snap.TenantID, snap.ID, snap.Status, snap.StatusReason,
		snap.Insured.Name, row.insured, row.coverages, row.locations, row.losses,
		snap.NextLocationNumber,
		snap.AssignedUnderwriterID, snap.AssignedUnderwriterName,
		snap.ProducerID, snap.ProducerName,
		row.quotedPremium, snap.DeclineReason,
		snap.AppetiteScore, snap.WinnabilityScore, snap.DataQualityScore,
		row.clearance, snap.UpdatedAt,
		snap.Version,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConcurrencyConflict.WithDescription("submission %s has been modified or removed", snap.ID)
	}
	return nil
}

const selectSubmissionSQL = `
	SELECT id, tenant_id, submission_number, status, status_reason,
	       insured, coverages, locations, losses, next_location_number,
	       assigned_underwriter_id, assigned_underwriter_name, producer_id, producer_name,
	       quoted_premium, decline_reason, appetite_score, winnability_score, data_quality_score,
	       clearance, version, created_at, updated_at
	FROM submissions
`

// FindByID retrieves a submission within a tenant.
func (r *SubmissionRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx, selectSubmissionSQL+` WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSubmissionNotFound
	}
	return sub, err
}

// List returns the tenant's submissions matching filter, newest first.
func (r *SubmissionRepository) List(ctx context.Context, tenantID string, filter port.SubmissionFilter) ([]*model.Submission, error) {
	var (
		where = []string{"tenant_id = $1"}
		args  = []any{tenantID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if filter.AssignedTo != "" {
		where = append(where, "assigned_underwriter_id = "+arg(filter.AssignedTo))
	}
	if filter.InsuredName != "" {
		where = append(where, `lower(regexp_replace(btrim(insured_name), '\s+', ' ', 'g')) = `+arg(strings.ToLower(strings.Join(strings.Fields(filter.InsuredName), " "))))
	}
	if filter.OpenOnly {
		where = append(where, "status NOT IN ('BOUND', 'DECLINED', 'WITHDRAWN', 'EXPIRED')")
	}

	query := selectSubmissionSQL + " WHERE " + strings.Join(where, " AND ") + " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var result []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

// NextSubmissionNumber allocates the next number of the tenant's yearly
// sequence, formatted SUB-<year>-<6 digits>.
func (r *SubmissionRepository) NextSubmissionNumber(ctx context.Context, tenantID string, year int) (string, error) {
	const query = `
		INSERT INTO submission_sequences (tenant_id, year, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year) DO UPDATE SET last_seq = submission_sequences.last_seq + 1
		RETURNING last_seq
	`
	var seq int
	if err := r.pool.QueryRow(ctx, query, tenantID, year).Scan(&seq); err != nil {
		return "", fmt.Errorf("allocate submission number: %w", err)
	}
	return fmt.Sprintf("SUB-%d-%06d", year, seq), nil
}

// ---------------------------------------------------------------------------
// encoding helpers
// ---------------------------------------------------------------------------

type submissionRow struct {
	insured       []byte
	coverages     []byte
	locations     []byte
	losses        []byte
	quotedPremium []byte
	clearance     []byte
}

func encodeSubmission(snap model.SubmissionSnapshot) (submissionRow, error) {
	var (
		row submissionRow
		err error
	)
	fields := []struct {
		dst  *[]byte
		v    any
		name string
	}{
		{&row.insured, snap.Insured, "insured"},
		{&row.coverages, nonNil(snap.Coverages), "coverages"},
		{&row.locations, nonNil(snap.Locations), "locations"},
		{&row.losses, nonNil(snap.Losses), "losses"},
		{&row.clearance, snap.Clearance, "clearance"},
	}
	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return submissionRow{}, fmt.Errorf("marshal %s: %w", f.name, err)
		}
	}
	if snap.QuotedPremium != nil {
		if row.quotedPremium, err = json.Marshal(snap.QuotedPremium); err != nil {
			return submissionRow{}, fmt.Errorf("marshal quoted premium: %w", err)
		}
	}
	return row, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubmission(s scannable) (*model.Submission, error) {
	var (
		snap                                         model.SubmissionSnapshot
		insured, coverages, locations, losses, clear []byte
		quotedPremium                                []byte
		createdAt, updatedAt                         time.Time
	)
	err := s.Scan(
		&snap.ID, &snap.TenantID, &snap.SubmissionNumber, &snap.Status, &snap.StatusReason,
		&insured, &coverages, &locations, &losses, &snap.NextLocationNumber,
		&snap.AssignedUnderwriterID, &snap.AssignedUnderwriterName, &snap.ProducerID, &snap.ProducerName,
		&quotedPremium, &snap.DeclineReason, &snap.AppetiteScore, &snap.WinnabilityScore, &snap.DataQualityScore,
		&clear, &snap.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	snap.CreatedAt, snap.UpdatedAt = createdAt.UTC(), updatedAt.UTC()

	for _, f := range []struct {
		src  []byte
		dst  any
		name string
	}{
		{insured, &snap.Insured, "insured"},
		{coverages, &snap.Coverages, "coverages"},
		{locations, &snap.Locations, "locations"},
		{losses, &snap.Losses, "losses"},
		{clear, &snap.Clearance, "clearance"},
	} {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", f.name, err)
		}
	}
	if len(quotedPremium) > 0 {
		var premium money.Money
		if err := json.Unmarshal(quotedPremium, &premium); err != nil {
			return nil, fmt.Errorf("decode quoted premium: %w", err)
		}
		snap.QuotedPremium = &premium
	}

	sub, err := model.ReconstructSubmission(snap)
	if err != nil {
		return nil, fmt.Errorf("reconstruct submission %s: %w", snap.ID, err)
	}
	return sub, nil
}
